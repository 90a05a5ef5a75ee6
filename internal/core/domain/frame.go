package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const frameRefPrefix = "frame_"

// Frame is one time step for one seat. Color kinds carry a Color; procedural
// kinds carry only a Ref naming an externally rendered frame.
type Frame struct {
	Color Color
	Ref   string
}

func (f Frame) IsRef() bool {
	return f.Ref != ""
}

// StoredRef is the string written to a package's frames list.
func (f Frame) StoredRef() string {
	if f.IsRef() {
		return f.Ref
	}

	return f.Color.FrameRef()
}

// FrameRefFor returns the procedural placeholder for a frame index, e.g. "frame_007".
func FrameRefFor(index int) string {
	return fmt.Sprintf("%s%03d", frameRefPrefix, index)
}

// ParseStoredRef decodes either a "color_r_g_b" or a "frame_NNN" reference.
func ParseStoredRef(ref string) (Frame, error) {
	if strings.HasPrefix(ref, colorRefPrefix) {
		c, err := ParseColorRef(ref)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Color: c}, nil
	}

	if rest, ok := strings.CutPrefix(ref, frameRefPrefix); ok {
		if _, err := strconv.Atoi(rest); err != nil || len(rest) < 3 {
			return Frame{}, fmt.Errorf("%w: frame ref %q", ErrMalformedDocument, ref)
		}
		return Frame{Ref: ref}, nil
	}

	return Frame{}, fmt.Errorf("%w: unknown frame ref %q", ErrMalformedDocument, ref)
}

// FrameSequence is the ordered list of frames for one seat. It is never
// mutated after creation.
type FrameSequence struct {
	Coord  SeatCoordinate
	Frames []Frame
}

func (s FrameSequence) Len() int {
	return len(s.Frames)
}

func (s FrameSequence) Equal(o FrameSequence) bool {
	if s.Coord != o.Coord || len(s.Frames) != len(o.Frames) {
		return false
	}

	for i := range s.Frames {
		if s.Frames[i] != o.Frames[i] {
			return false
		}
	}

	return true
}

// HasColors reports whether the sequence holds raw colors rather than refs.
func (s FrameSequence) HasColors() bool {
	return len(s.Frames) > 0 && !s.Frames[0].IsRef()
}

func (s FrameSequence) Colors() []Color {
	out := make([]Color, len(s.Frames))
	for i, f := range s.Frames {
		out[i] = f.Color
	}

	return out
}

func (s FrameSequence) Refs() []string {
	out := make([]string, len(s.Frames))
	for i, f := range s.Frames {
		out[i] = f.StoredRef()
	}

	return out
}
