package domain

import (
	"fmt"
	"sort"
)

// DecodeSeatFields rebuilds a seat's sequence from a {colors} or {frames}
// payload.
func DecodeSeatFields(coord SeatCoordinate, fields map[string]any) (FrameSequence, error) {
	if raw, ok := fields["colors"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return FrameSequence{}, fmt.Errorf("%w: %s colors is %T", ErrMalformedDocument, coord, raw)
		}

		frames := make([]Frame, len(list))
		for i, v := range list {
			c, err := ColorFromFields(v)
			if err != nil {
				return FrameSequence{}, fmt.Errorf("%s frame %d: %w", coord, i, err)
			}
			frames[i] = Frame{Color: c}
		}

		return FrameSequence{Coord: coord, Frames: frames}, nil
	}

	if raw, ok := fields["frames"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return FrameSequence{}, fmt.Errorf("%w: %s frames is %T", ErrMalformedDocument, coord, raw)
		}

		frames := make([]Frame, len(list))
		for i, v := range list {
			ref, ok := v.(string)
			if !ok {
				return FrameSequence{}, fmt.Errorf("%w: %s frame %d is %T", ErrMalformedDocument, coord, i, v)
			}

			f, err := ParseStoredRef(ref)
			if err != nil {
				return FrameSequence{}, fmt.Errorf("%s frame %d: %w", coord, i, err)
			}
			frames[i] = f
		}

		return FrameSequence{Coord: coord, Frames: frames}, nil
	}

	return FrameSequence{}, fmt.Errorf("%w: %s has neither colors nor frames", ErrMalformedDocument, coord)
}

// DecodeFlatMap reads the users map of a flat-map parent document.
func DecodeFlatMap(parent Fields) ([]FrameSequence, error) {
	raw, ok := parent["users"]
	if !ok {
		return nil, fmt.Errorf("%w: parent has no users map", ErrMalformedDocument)
	}

	users, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: users is %T", ErrMalformedDocument, raw)
	}

	seqs := make([]FrameSequence, 0, len(users))
	for id, v := range users {
		coord, err := ParseSeatID(id)
		if err != nil {
			return nil, err
		}

		fields, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: user %s is %T", ErrMalformedDocument, id, v)
		}

		seq, err := DecodeSeatFields(coord, fields)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}

	SortSequences(seqs)
	return seqs, nil
}

// DecodeSeatDocuments reads per-seat documents (subcollection children or
// packages) keyed by seat id.
func DecodeSeatDocuments(docs []Document) ([]FrameSequence, error) {
	seqs := make([]FrameSequence, 0, len(docs))
	for _, doc := range docs {
		coord, err := ParseSeatID(doc.ID)
		if err != nil {
			return nil, err
		}

		seq, err := DecodeSeatFields(coord, doc.Fields)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}

	SortSequences(seqs)
	return seqs, nil
}

// DecodeWriteSet reconstructs the sequences a write set encodes, reading only
// the document payloads.
func DecodeWriteSet(ws DeploymentWriteSet) ([]FrameSequence, error) {
	switch w := ws.(type) {
	case *FlatMapWriteSet:
		return DecodeFlatMap(w.Parent.Fields)
	case *SubcollectionWriteSet:
		return DecodeSeatDocuments(toDocuments(w.Children))
	case *PackageWriteSet:
		return DecodeSeatDocuments(toDocuments(w.Packages))
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedShape, ws)
}

func toDocuments(writes []DocumentWrite) []Document {
	docs := make([]Document, len(writes))
	for i, w := range writes {
		docs[i] = Document{ID: w.ID, Fields: w.Fields}
	}

	return docs
}

// SortSequences orders sequences row-major.
func SortSequences(seqs []FrameSequence) {
	sort.Slice(seqs, func(i, j int) bool {
		a, b := seqs[i].Coord, seqs[j].Coord
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Seat < b.Seat
	})
}
