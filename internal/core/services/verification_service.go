package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/srgjo27/seat_animation/internal/core/ports"
)

type VerificationReport struct {
	AnimationID string
	Shape       domain.PersistenceShape
	Expected    int
	Present     []string
	Missing     []string
	Mismatched  []string
	Unexpected  []string
	ParentFound bool
}

// Complete reports whether every expected seat was found with the expected
// frames.
func (r *VerificationReport) Complete() bool {
	parentOK := r.ParentFound || r.Shape == domain.ShapePackagePerSeat
	return parentOK && len(r.Missing) == 0 && len(r.Mismatched) == 0 && len(r.Present) == r.Expected
}

type AnimationStatus struct {
	ID         string
	StartTime  time.Time
	EndTime    time.Time
	FrameCount int
	FrameRate  float64
	Seats      int
	State      domain.PlaybackState
}

type ConfigStatus struct {
	Config domain.AnimationConfig
	State  domain.PlaybackState
}

type StatusReport struct {
	Now        time.Time
	Configs    []ConfigStatus
	Animations []AnimationStatus
	Packages   int
	Active     *domain.AnimationConfig
}

type VerificationService struct {
	store ports.DocumentStore
}

func NewVerificationService(store ports.DocumentStore) *VerificationService {
	return &VerificationService{store: store}
}

// Verify reads a deployment back in the given shape and compares every seat
// with a freshly generated sequence.
func (s *VerificationService) Verify(ctx context.Context, spec domain.AnimationSpec, grid domain.SeatGrid, shape domain.PersistenceShape) (*VerificationReport, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	if err := spec.ValidateForDeployment(); err != nil {
		return nil, err
	}

	if err := grid.Validate(); err != nil {
		return nil, err
	}

	stored, parentFound, err := s.readBack(ctx, spec.ID, shape)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		AnimationID: spec.ID,
		Shape:       shape,
		Expected:    grid.Size(),
		ParentFound: parentFound,
	}

	byCoord := make(map[domain.SeatCoordinate]domain.FrameSequence, len(stored))
	for _, seq := range stored {
		if !grid.Contains(seq.Coord) {
			report.Unexpected = append(report.Unexpected, seq.Coord.ID())
			continue
		}
		byCoord[seq.Coord] = seq
	}

	for _, coord := range grid.Coordinates() {
		got, ok := byCoord[coord]
		if !ok {
			report.Missing = append(report.Missing, coord.ID())
			continue
		}

		want, err := GenerateFrames(spec, coord)
		if err != nil {
			return nil, err
		}

		if !want.Equal(got) {
			report.Mismatched = append(report.Mismatched, coord.ID())
			continue
		}
		report.Present = append(report.Present, coord.ID())
	}

	sort.Strings(report.Unexpected)
	return report, nil
}

func (s *VerificationService) readBack(ctx context.Context, animationID string, shape domain.PersistenceShape) ([]domain.FrameSequence, bool, error) {
	switch shape {
	case domain.ShapeFlatMap:
		parent, found, err := s.store.Get(ctx, domain.CollectionAnimations, animationID)
		if err != nil || !found {
			return nil, false, err
		}

		seqs, err := domain.DecodeFlatMap(parent.Fields)
		return seqs, true, err

	case domain.ShapeSubcollection:
		_, found, err := s.store.Get(ctx, domain.CollectionAnimations, animationID)
		if err != nil {
			return nil, false, err
		}

		children, err := s.store.List(ctx, domain.SeatCollection(animationID))
		if err != nil {
			return nil, found, err
		}

		seqs, err := domain.DecodeSeatDocuments(children)
		return seqs, found, err

	case domain.ShapePackagePerSeat:
		docs, err := s.store.List(ctx, domain.CollectionUserPackages)
		if err != nil {
			return nil, false, err
		}

		var mine []domain.Document
		for _, doc := range docs {
			if id, _ := doc.Fields["animationId"].(string); id == animationID {
				mine = append(mine, doc)
			}
		}

		seqs, err := domain.DecodeSeatDocuments(mine)
		return seqs, false, err
	}

	return nil, false, fmt.Errorf("%w: %q", domain.ErrUnsupportedShape, string(shape))
}

// LookupSeat returns the seat's package, if one exists.
func (s *VerificationService) LookupSeat(ctx context.Context, coord domain.SeatCoordinate) (domain.Document, bool, error) {
	if err := coord.Validate(); err != nil {
		return domain.Document{}, false, err
	}

	return s.store.Get(ctx, domain.CollectionUserPackages, coord.ID())
}

// Status summarises configs and animations relative to now.
func (s *VerificationService) Status(ctx context.Context, now time.Time) (*StatusReport, error) {
	report := &StatusReport{Now: now.UTC()}

	configs, err := s.store.List(ctx, domain.CollectionAnimationConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to list animation configs: %w", err)
	}

	for _, doc := range configs {
		cfg := domain.AnimationConfigFromDocument(doc)
		report.Configs = append(report.Configs, ConfigStatus{
			Config: cfg,
			State:  domain.Playback(now, cfg.StartTime, cfg.EndTime()),
		})

		if cfg.IsActive() && (report.Active == nil || cfg.CreatedAt.After(report.Active.CreatedAt)) {
			active := cfg
			report.Active = &active
		}
	}

	sort.Slice(report.Configs, func(i, j int) bool {
		return report.Configs[i].Config.CreatedAt.Before(report.Configs[j].Config.CreatedAt)
	})

	animations, err := s.store.List(ctx, domain.CollectionAnimations)
	if err != nil {
		return nil, fmt.Errorf("failed to list animations: %w", err)
	}

	for _, doc := range animations {
		report.Animations = append(report.Animations, animationStatus(doc, now))
	}

	packages, err := s.store.List(ctx, domain.CollectionUserPackages)
	if err != nil {
		return nil, fmt.Errorf("failed to list seat packages: %w", err)
	}
	report.Packages = len(packages)

	return report, nil
}

func animationStatus(doc domain.Document, now time.Time) AnimationStatus {
	st := AnimationStatus{ID: doc.ID}

	if n, ok := domain.AsInt64(doc.Fields["frameCount"]); ok {
		st.FrameCount = int(n)
	}

	if f, ok := domain.AsFloat64(doc.Fields["frameRate"]); ok {
		st.FrameRate = f
	}

	if users, ok := doc.Fields["users"].(map[string]any); ok {
		st.Seats = len(users)
	}

	if raw, ok := doc.Fields["startTime"].(string); ok {
		if t, err := domain.ParseTimestamp(raw); err == nil {
			st.StartTime = t
			st.EndTime = t
			if st.FrameRate > 0 {
				st.EndTime = t.Add(time.Duration(float64(st.FrameCount) / st.FrameRate * float64(time.Second)))
			}
			st.State = domain.Playback(now, st.StartTime, st.EndTime)
		}
	}

	return st
}
