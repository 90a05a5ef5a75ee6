package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/srgjo27/seat_animation/internal/core/ports"
)

const allAnimationsCacheKey = "animations:all"

func animationCacheKey(id string) string {
	return "animation:" + id
}

var ErrNotFound = errors.New("not found")

type TriggerRequest struct {
	AnimationType string `json:"animationType"`
	UserID        string `json:"userId"`
	StartTime     string `json:"startTime"`
}

type TriggerResponse struct {
	Success       bool           `json:"success"`
	TriggerID     string         `json:"triggerId"`
	AnimationData map[string]any `json:"animationData"`
}

// AnimationService answers the read side used by the mobile app.
type AnimationService struct {
	store    ports.DocumentStore
	cache    ports.AnimationCache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewAnimationService(store ports.DocumentStore, cache ports.AnimationCache, cacheTTL time.Duration) *AnimationService {
	return &AnimationService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

func (s *AnimationService) WithClock(now func() time.Time) *AnimationService {
	s.now = now
	return s
}

func (s *AnimationService) GetAnimation(ctx context.Context, id string) (map[string]any, error) {
	var cached map[string]any
	if s.readCache(ctx, animationCacheKey(id), &cached) {
		return cached, nil
	}

	doc, found, err := s.store.Get(ctx, domain.CollectionAnimations, id)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("animation %s: %w", id, ErrNotFound)
	}

	s.writeCache(ctx, animationCacheKey(id), doc.Fields)
	return doc.Fields, nil
}

func (s *AnimationService) ListAnimations(ctx context.Context) (map[string]any, error) {
	var cached map[string]any
	if s.readCache(ctx, allAnimationsCacheKey, &cached) {
		return cached, nil
	}

	docs, err := s.store.List(ctx, domain.CollectionAnimations)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(docs))
	for _, doc := range docs {
		out[doc.ID] = map[string]any(doc.Fields)
	}

	s.writeCache(ctx, allAnimationsCacheKey, out)
	return out, nil
}

// ActiveConfig returns the newest active scheduling entry.
func (s *AnimationService) ActiveConfig(ctx context.Context) (domain.Document, error) {
	docs, err := s.store.List(ctx, domain.CollectionAnimationConfig)
	if err != nil {
		return domain.Document{}, err
	}

	var active []domain.Document
	for _, doc := range docs {
		if domain.AnimationConfigFromDocument(doc).IsActive() {
			active = append(active, doc)
		}
	}

	if len(active) == 0 {
		log.Printf("No active config among %d animation configs", len(docs))
		return domain.Document{}, fmt.Errorf("active config: %w", ErrNotFound)
	}

	sort.SliceStable(active, func(i, j int) bool {
		a := domain.AnimationConfigFromDocument(active[i]).CreatedAt
		b := domain.AnimationConfigFromDocument(active[j]).CreatedAt
		return a.After(b)
	})

	return active[0], nil
}

func (s *AnimationService) SeatPackage(ctx context.Context, seatID string) (domain.Document, error) {
	if _, err := domain.ParseSeatID(seatID); err != nil {
		return domain.Document{}, err
	}

	doc, found, err := s.store.Get(ctx, domain.CollectionUserPackages, seatID)
	if err != nil {
		return domain.Document{}, err
	}

	if !found {
		return domain.Document{}, fmt.Errorf("package %s: %w", seatID, ErrNotFound)
	}

	return doc, nil
}

// Trigger records a one-off request to play an animation for one seat.
func (s *AnimationService) Trigger(ctx context.Context, req TriggerRequest) (*TriggerResponse, error) {
	if req.AnimationType == "" || req.UserID == "" {
		return nil, errors.New("invalid trigger: animation type and user id are required")
	}

	data, err := s.GetAnimation(ctx, req.AnimationType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start := now
	if req.StartTime != "" {
		start, err = domain.ParseTimestamp(req.StartTime)
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
	}

	trigger := domain.Trigger{
		AnimationType: req.AnimationType,
		UserID:        req.UserID,
		AnimationData: data,
		StartTime:     start,
		CreatedAt:     now,
	}

	id, err := s.store.Add(ctx, domain.CollectionTriggers, trigger.Fields())
	if err != nil {
		return nil, fmt.Errorf("failed to record trigger: %w", err)
	}

	return &TriggerResponse{Success: true, TriggerID: id, AnimationData: data}, nil
}

func (s *AnimationService) readCache(ctx context.Context, key string, into any) bool {
	if s.cache == nil {
		return false
	}

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("Animation cache read %s failed: %v", key, err)
		return false
	}

	if !ok {
		return false
	}

	return json.Unmarshal(raw, into) == nil
}

func (s *AnimationService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		log.Printf("Animation cache write %s failed: %v", key, err)
	}
}
