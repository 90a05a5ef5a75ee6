package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/srgjo27/seat_animation/internal/core/ports"
)

const DefaultBatchSize = 500

type DeployRequest struct {
	Spec      domain.AnimationSpec
	Grid      domain.SeatGrid
	Shape     domain.PersistenceShape
	StartTime time.Time
	DryRun    bool
}

type DeployResult struct {
	WriteSet    domain.DeploymentWriteSet
	ConfigID    string
	Deactivated []string
	Cleared     int
	Written     int
	StartTime   string
	EndTime     string
}

type DeploymentService struct {
	store      ports.DocumentStore
	cache      ports.AnimationCache
	publisher  ports.EventPublisher
	batchSize  int
	batchPause time.Duration
	now        func() time.Time
}

// NewDeploymentService wires a deployer. cache and publisher may be nil.
func NewDeploymentService(store ports.DocumentStore, cache ports.AnimationCache, publisher ports.EventPublisher) *DeploymentService {
	return &DeploymentService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
}

// WithBatching sets how many documents are written between progress reports
// and how long to pause after each batch.
func (s *DeploymentService) WithBatching(size int, pause time.Duration) *DeploymentService {
	if size > 0 {
		s.batchSize = size
	}
	s.batchPause = pause

	return s
}

func (s *DeploymentService) WithClock(now func() time.Time) *DeploymentService {
	s.now = now
	return s
}

// Deploy builds the write set, retires the currently active animation, writes
// every document and records a new active config. Validation failures abort
// before any write.
func (s *DeploymentService) Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error) {
	ws, err := BuildDeployment(req.Spec, req.Grid, req.Shape, req.StartTime)
	if err != nil {
		return nil, err
	}

	result := &DeployResult{
		WriteSet:  ws,
		StartTime: domain.FormatTimestamp(ws.StartTime()),
		EndTime:   domain.FormatTimestamp(domain.EndTime(ws.Spec(), ws.StartTime())),
	}

	if req.DryRun {
		log.Printf("Dry run: %d documents for %s (%s), nothing written", len(ws.Writes()), req.Spec.ID, req.Shape)
		return result, nil
	}

	deactivated, err := s.deactivateActiveConfigs(ctx)
	if err != nil {
		return nil, err
	}
	result.Deactivated = deactivated

	switch ws.Shape() {
	case domain.ShapePackagePerSeat:
		result.Cleared, err = s.clearPackages(ctx, req.Spec.ID)
	case domain.ShapeSubcollection:
		result.Cleared, err = clearSeatDocuments(ctx, s.store, req.Spec.ID)
	}
	if err != nil {
		return nil, err
	}

	written, err := s.writeDocuments(ctx, ws.Writes())
	result.Written = written
	if err != nil {
		return nil, fmt.Errorf("deployment %s incomplete after %d documents: %w", req.Spec.ID, written, err)
	}

	cfg := domain.NewAnimationConfig(ws, s.now())
	configID, err := s.store.Add(ctx, domain.CollectionAnimationConfig, cfg.Fields())
	if err != nil {
		return nil, fmt.Errorf("failed to add animation config: %w", err)
	}
	result.ConfigID = configID

	log.Printf("Animation %s deployed: config=%s shape=%s seats=%d start=%s", req.Spec.ID, configID, ws.Shape(), len(ws.Sequences()), result.StartTime)

	s.invalidateCache(ctx, req.Spec.ID)
	s.publishActivated(ctx, configID, ws, result)

	return result, nil
}

func (s *DeploymentService) deactivateActiveConfigs(ctx context.Context) ([]string, error) {
	configs, err := s.store.List(ctx, domain.CollectionAnimationConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to list animation configs: %w", err)
	}

	var ids []string
	for _, doc := range configs {
		if domain.AnimationConfigFromDocument(doc).IsActive() {
			if err := s.store.Update(ctx, domain.CollectionAnimationConfig, doc.ID, domain.Fields{"status": string(domain.ConfigInactive)}); err != nil {
				return ids, fmt.Errorf("failed to deactivate config %s: %w", doc.ID, err)
			}
			log.Printf("Deactivated config: %s", doc.ID)
			ids = append(ids, doc.ID)
		}
	}

	return ids, nil
}

func (s *DeploymentService) clearPackages(ctx context.Context, animationID string) (int, error) {
	packages, err := s.store.List(ctx, domain.CollectionUserPackages)
	if err != nil {
		return 0, fmt.Errorf("failed to list seat packages: %w", err)
	}

	cleared := 0
	for _, doc := range packages {
		if id, _ := doc.Fields["animationId"].(string); id != animationID {
			continue
		}

		if err := s.store.Delete(ctx, domain.CollectionUserPackages, doc.ID); err != nil {
			return cleared, fmt.Errorf("failed to delete package %s: %w", doc.ID, err)
		}
		cleared++
	}

	if cleared > 0 {
		log.Printf("Cleared %d existing %s packages", cleared, animationID)
	}

	return cleared, nil
}

// clearSeatDocuments removes every child of animations/{id}/users so a
// smaller redeploy leaves no seats behind.
func clearSeatDocuments(ctx context.Context, store ports.DocumentStore, animationID string) (int, error) {
	collection := domain.SeatCollection(animationID)

	children, err := store.List(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	for i, doc := range children {
		if err := store.Delete(ctx, collection, doc.ID); err != nil {
			return i, fmt.Errorf("failed to delete %s/%s: %w", collection, doc.ID, err)
		}
	}

	if len(children) > 0 {
		log.Printf("Cleared %d existing %s seat documents", len(children), animationID)
	}

	return len(children), nil
}

func (s *DeploymentService) writeDocuments(ctx context.Context, writes []domain.DocumentWrite) (int, error) {
	written := 0
	for start := 0; start < len(writes); start += s.batchSize {
		end := min(start+s.batchSize, len(writes))

		for _, w := range writes[start:end] {
			if err := s.store.Set(ctx, w.Collection, w.ID, w.Fields); err != nil {
				return written, fmt.Errorf("failed to write %s: %w", w.Path(), err)
			}
			written++
		}

		log.Printf("Written %d/%d documents", written, len(writes))

		if s.batchPause > 0 && end < len(writes) {
			select {
			case <-ctx.Done():
				return written, ctx.Err()
			case <-time.After(s.batchPause):
			}
		}
	}

	return written, nil
}

func (s *DeploymentService) invalidateCache(ctx context.Context, animationID string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Invalidate(ctx, animationCacheKey(animationID), allAnimationsCacheKey); err != nil {
		log.Printf("Failed to invalidate animation cache: %v", err)
	}
}

func (s *DeploymentService) publishActivated(ctx context.Context, configID string, ws domain.DeploymentWriteSet, result *DeployResult) {
	if s.publisher == nil {
		return
	}

	event := domain.AnimationActivatedEvent{
		ConfigID:    configID,
		AnimationID: ws.Spec().ID,
		EventType:   ws.Spec().EventTypeOrDefault(),
		Shape:       string(ws.Shape()),
		StartTime:   result.StartTime,
		EndTime:     result.EndTime,
		Seats:       len(ws.Sequences()),
		ActivatedAt: s.now().UTC(),
	}

	if err := s.publisher.PublishActivated(ctx, event); err != nil {
		log.Printf("Failed to publish activation of %s: %v", ws.Spec().ID, err)
	}
}
