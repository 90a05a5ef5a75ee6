package domain

import (
	"fmt"
	"time"
)

type PersistenceShape string

const (
	ShapeFlatMap        PersistenceShape = "flat-map"
	ShapeSubcollection  PersistenceShape = "subcollection"
	ShapePackagePerSeat PersistenceShape = "package-per-seat"
)

func ParsePersistenceShape(s string) (PersistenceShape, error) {
	shape := PersistenceShape(s)
	if err := shape.Validate(); err != nil {
		return "", err
	}

	return shape, nil
}

func (s PersistenceShape) Validate() error {
	switch s {
	case ShapeFlatMap, ShapeSubcollection, ShapePackagePerSeat:
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnsupportedShape, string(s))
}

const (
	CollectionAnimations      = "animations"
	CollectionUserPackages    = "userAnimationPackages"
	CollectionAnimationConfig = "animation_configs"
	CollectionTriggers        = "animation_triggers"
)

// SeatCollection is the subcollection holding one document per seat.
func SeatCollection(animationID string) string {
	return CollectionAnimations + "/" + animationID + "/users"
}

// Fields is a document payload. Values are limited to string, int64,
// float64, bool, nil, []any and map[string]any.
type Fields map[string]any

// Document is a stored document with its id.
type Document struct {
	ID     string
	Fields Fields
}

// DocumentWrite is one document the caller must persist.
type DocumentWrite struct {
	Collection string
	ID         string
	Fields     Fields
}

func (w DocumentWrite) Path() string {
	return w.Collection + "/" + w.ID
}

// DeploymentWriteSet is the assembled output of a deployment. The concrete
// types are FlatMapWriteSet, SubcollectionWriteSet and PackageWriteSet.
type DeploymentWriteSet interface {
	Shape() PersistenceShape
	Spec() AnimationSpec
	StartTime() time.Time
	Writes() []DocumentWrite
	Sequences() []FrameSequence
	writeSet()
}

type writeSetBase struct {
	spec      AnimationSpec
	startTime time.Time
	sequences []FrameSequence
}

func (b writeSetBase) Spec() AnimationSpec        { return b.spec }
func (b writeSetBase) StartTime() time.Time       { return b.startTime }
func (b writeSetBase) Sequences() []FrameSequence { return b.sequences }
func (writeSetBase) writeSet()                    {}

// FlatMapWriteSet embeds every seat in the parent document's users map.
type FlatMapWriteSet struct {
	writeSetBase
	Parent DocumentWrite
}

func NewFlatMapWriteSet(spec AnimationSpec, start time.Time, seqs []FrameSequence) *FlatMapWriteSet {
	users := make(map[string]any, len(seqs))
	for _, seq := range seqs {
		users[seq.Coord.ID()] = map[string]any(frameFields(seq))
	}

	fields := animationHeader(spec, start)
	fields["users"] = users

	return &FlatMapWriteSet{
		writeSetBase: writeSetBase{spec: spec, startTime: start, sequences: seqs},
		Parent:       DocumentWrite{Collection: CollectionAnimations, ID: spec.ID, Fields: fields},
	}
}

func (*FlatMapWriteSet) Shape() PersistenceShape { return ShapeFlatMap }

func (w *FlatMapWriteSet) Writes() []DocumentWrite {
	return []DocumentWrite{w.Parent}
}

// SubcollectionWriteSet holds a metadata-only parent and one child per seat.
type SubcollectionWriteSet struct {
	writeSetBase
	Parent   DocumentWrite
	Children []DocumentWrite
}

func NewSubcollectionWriteSet(spec AnimationSpec, start time.Time, seqs []FrameSequence) *SubcollectionWriteSet {
	collection := SeatCollection(spec.ID)
	children := make([]DocumentWrite, 0, len(seqs))
	for _, seq := range seqs {
		fields := frameFields(seq)
		fields["userId"] = seq.Coord.ID()
		fields["startTime"] = FormatTimestamp(start)
		fields["frameCount"] = int64(seq.Len())

		children = append(children, DocumentWrite{Collection: collection, ID: seq.Coord.ID(), Fields: fields})
	}

	return &SubcollectionWriteSet{
		writeSetBase: writeSetBase{spec: spec, startTime: start, sequences: seqs},
		Parent:       DocumentWrite{Collection: CollectionAnimations, ID: spec.ID, Fields: animationHeader(spec, start)},
		Children:     children,
	}
}

func (*SubcollectionWriteSet) Shape() PersistenceShape { return ShapeSubcollection }

// Writes lists the parent first so readers never see children without metadata.
func (w *SubcollectionWriteSet) Writes() []DocumentWrite {
	out := make([]DocumentWrite, 0, len(w.Children)+1)
	out = append(out, w.Parent)
	return append(out, w.Children...)
}

// SubcollectionFromFlatMap re-encodes a stored flat-map parent as a
// subcollection write set. Seats keep their stored frames and the parent
// keeps its metadata without the users map.
func SubcollectionFromFlatMap(animationID string, parent Fields) (*SubcollectionWriteSet, error) {
	seqs, err := DecodeFlatMap(parent)
	if err != nil {
		return nil, err
	}

	raw, _ := parent["startTime"].(string)
	start, err := ParseTimestamp(raw)
	if err != nil {
		return nil, err
	}

	spec := AnimationSpec{ID: animationID, Kind: KindCheckerboard}
	if t, _ := parent["type"].(string); t == frameAnimationType {
		spec.Kind = KindProcedural
	}
	if n, ok := AsInt64(parent["frameCount"]); ok {
		spec.FrameCount = int(n)
	}
	if f, ok := AsFloat64(parent["frameRate"]); ok {
		spec.FrameRateHz = f
	}

	ws := NewSubcollectionWriteSet(spec, start, seqs)

	header := make(Fields, len(parent))
	for k, v := range parent {
		if k != "users" {
			header[k] = v
		}
	}
	ws.Parent.Fields = header

	return ws, nil
}

// PackageWriteSet holds one self-describing top-level document per seat.
type PackageWriteSet struct {
	writeSetBase
	Packages []DocumentWrite
}

func NewPackageWriteSet(spec AnimationSpec, start time.Time, seqs []FrameSequence) *PackageWriteSet {
	end := EndTime(spec, start)
	packages := make([]DocumentWrite, 0, len(seqs))
	for _, seq := range seqs {
		refs := seq.Refs()
		frames := make([]any, len(refs))
		for i, r := range refs {
			frames[i] = r
		}

		fields := Fields{
			"userId":        seq.Coord.ID(),
			"animationId":   spec.ID,
			"animationType": spec.ID,
			"eventType":     spec.EventTypeOrDefault(),
			"startTime":     FormatTimestamp(start),
			"endTime":       FormatTimestamp(end),
			"frames":        frames,
			"frameRate":     rateValue(spec.FrameRateHz),
			"frameCount":    int64(spec.FrameCount),
			"duration":      spec.Duration().Seconds(),
			"isActive":      true,
			"isExpired":     false,
			"pattern":       spec.PatternName(),
		}

		packages = append(packages, DocumentWrite{Collection: CollectionUserPackages, ID: seq.Coord.ID(), Fields: fields})
	}

	return &PackageWriteSet{
		writeSetBase: writeSetBase{spec: spec, startTime: start, sequences: seqs},
		Packages:     packages,
	}
}

func (*PackageWriteSet) Shape() PersistenceShape { return ShapePackagePerSeat }

func (w *PackageWriteSet) Writes() []DocumentWrite {
	return w.Packages
}

// EndTime is StartTime plus FrameCount/FrameRateHz seconds.
func EndTime(spec AnimationSpec, start time.Time) time.Time {
	return start.Add(spec.Duration())
}

func animationHeader(spec AnimationSpec, start time.Time) Fields {
	return Fields{
		"animationId": spec.ID,
		"frameRate":   rateValue(spec.FrameRateHz),
		"frameCount":  int64(spec.FrameCount),
		"type":        spec.DocumentType(),
		"startTime":   FormatTimestamp(start),
		"duration":    spec.Duration().Seconds(),
	}
}

// frameFields encodes a sequence as {colors: [...]} or, for ref frames, {frames: [...]}.
func frameFields(seq FrameSequence) Fields {
	if !seq.HasColors() {
		refs := seq.Refs()
		frames := make([]any, len(refs))
		for i, r := range refs {
			frames[i] = r
		}
		return Fields{"frames": frames}
	}

	colors := make([]any, len(seq.Frames))
	for i, f := range seq.Frames {
		colors[i] = f.Color.Fields()
	}

	return Fields{"colors": colors}
}

// rateValue keeps whole frame rates integral, the type the app reads.
func rateValue(hz float64) any {
	if hz == float64(int64(hz)) {
		return int64(hz)
	}

	return hz
}
