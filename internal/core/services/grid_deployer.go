package services

import (
	"fmt"
	"time"

	"github.com/srgjo27/seat_animation/internal/core/domain"
)

// BuildDeployment fans GenerateFrames out over every seat of grid and
// assembles the documents for shape. It performs no I/O and returns either a
// write set covering the whole grid or an error.
func BuildDeployment(spec domain.AnimationSpec, grid domain.SeatGrid, shape domain.PersistenceShape, startTime time.Time) (domain.DeploymentWriteSet, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	if err := spec.ValidateForDeployment(); err != nil {
		return nil, err
	}

	if err := grid.Validate(); err != nil {
		return nil, err
	}

	seqs := make([]domain.FrameSequence, 0, grid.Size())
	for _, coord := range grid.Coordinates() {
		seq, err := GenerateFrames(spec, coord)
		if err != nil {
			return nil, fmt.Errorf("seat %s: %w", coord, err)
		}
		seqs = append(seqs, seq)
	}

	switch shape {
	case domain.ShapeFlatMap:
		return domain.NewFlatMapWriteSet(spec, startTime, seqs), nil
	case domain.ShapeSubcollection:
		return domain.NewSubcollectionWriteSet(spec, startTime, seqs), nil
	case domain.ShapePackagePerSeat:
		return domain.NewPackageWriteSet(spec, startTime, seqs), nil
	}

	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedShape, string(shape))
}
