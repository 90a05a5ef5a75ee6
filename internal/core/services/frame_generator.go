package services

import (
	"fmt"

	"github.com/srgjo27/seat_animation/internal/core/domain"
)

// GenerateFrames computes one seat's frame sequence. It is a pure function of
// its arguments.
func GenerateFrames(spec domain.AnimationSpec, coord domain.SeatCoordinate) (domain.FrameSequence, error) {
	if err := spec.Validate(); err != nil {
		return domain.FrameSequence{}, err
	}

	if err := coord.Validate(); err != nil {
		return domain.FrameSequence{}, err
	}

	frames := make([]domain.Frame, spec.FrameCount)

	switch spec.Kind {
	case domain.KindCheckerboard:
		// Only seat parity picks the base color; the row is ignored.
		base := spec.Secondary
		if coord.Seat%2 == 1 {
			base = spec.Primary
		}
		flash(frames, base)

	case domain.KindUniformFlash:
		flash(frames, spec.Flash)

	case domain.KindProcedural:
		for i := range frames {
			frames[i] = domain.Frame{Ref: domain.FrameRefFor(i)}
		}

	default:
		return domain.FrameSequence{}, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidSpec, spec.Kind)
	}

	return domain.FrameSequence{Coord: coord, Frames: frames}, nil
}

// flash alternates base on even frame indices with black on odd ones.
func flash(frames []domain.Frame, base domain.Color) {
	for i := range frames {
		if i%2 == 0 {
			frames[i] = domain.Frame{Color: base}
		} else {
			frames[i] = domain.Frame{Color: domain.Black}
		}
	}
}
