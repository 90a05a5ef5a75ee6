package services

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/srgjo27/seat_animation/internal/core/ports"
)

type CleanupRequest struct {
	// KeepAnimations are animation ids left untouched; every other animation
	// and its seat subcollection is deleted.
	KeepAnimations []string
	// Packages deletes seat packages. PackageAnimationID limits deletion to
	// one animation when set.
	Packages           bool
	PackageAnimationID string
	// Configs deletes inactive animation_configs entries.
	Configs bool
	DryRun  bool
}

type CleanupResult struct {
	Animations []string
	SeatDocs   int
	Packages   int
	Configs    int
}

type CleanupService struct {
	store ports.DocumentStore
	cache ports.AnimationCache
}

func NewCleanupService(store ports.DocumentStore, cache ports.AnimationCache) *CleanupService {
	return &CleanupService{store: store, cache: cache}
}

func (s *CleanupService) Cleanup(ctx context.Context, req CleanupRequest) (*CleanupResult, error) {
	result := &CleanupResult{}

	animations, err := s.store.List(ctx, domain.CollectionAnimations)
	if err != nil {
		return nil, fmt.Errorf("failed to list animations: %w", err)
	}

	for _, doc := range animations {
		if slices.Contains(req.KeepAnimations, doc.ID) {
			log.Printf("Keeping animation: %s", doc.ID)
			continue
		}

		seats, err := s.deleteAll(ctx, domain.SeatCollection(doc.ID), req.DryRun, nil)
		if err != nil {
			return result, err
		}
		result.SeatDocs += seats

		if req.DryRun {
			log.Printf("Would delete animation: %s (%d seat documents)", doc.ID, seats)
		} else {
			if err := s.store.Delete(ctx, domain.CollectionAnimations, doc.ID); err != nil {
				return result, fmt.Errorf("failed to delete animation %s: %w", doc.ID, err)
			}
			log.Printf("Deleted animation: %s (%d seat documents)", doc.ID, seats)
		}
		result.Animations = append(result.Animations, doc.ID)
	}

	if req.Packages {
		var match func(domain.Document) bool
		if req.PackageAnimationID != "" {
			match = func(doc domain.Document) bool {
				id, _ := doc.Fields["animationId"].(string)
				return id == req.PackageAnimationID
			}
		}

		n, err := s.deleteAll(ctx, domain.CollectionUserPackages, req.DryRun, match)
		if err != nil {
			return result, err
		}
		result.Packages = n
	}

	if req.Configs {
		n, err := s.deleteAll(ctx, domain.CollectionAnimationConfig, req.DryRun, func(doc domain.Document) bool {
			return !domain.AnimationConfigFromDocument(doc).IsActive()
		})
		if err != nil {
			return result, err
		}
		result.Configs = n
	}

	if s.cache != nil && !req.DryRun {
		keys := []string{allAnimationsCacheKey}
		for _, id := range result.Animations {
			keys = append(keys, animationCacheKey(id))
		}
		if err := s.cache.Invalidate(ctx, keys...); err != nil {
			log.Printf("Failed to invalidate animation cache: %v", err)
		}
	}

	return result, nil
}

// deleteAll removes every document of collection accepted by match (all when
// match is nil) and returns how many were, or would be, deleted.
func (s *CleanupService) deleteAll(ctx context.Context, collection string, dryRun bool, match func(domain.Document) bool) (int, error) {
	docs, err := s.store.List(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	n := 0
	for _, doc := range docs {
		if match != nil && !match(doc) {
			continue
		}

		if !dryRun {
			if err := s.store.Delete(ctx, collection, doc.ID); err != nil {
				return n, fmt.Errorf("failed to delete %s/%s: %w", collection, doc.ID, err)
			}
		}
		n++
	}

	if n > 0 {
		log.Printf("Cleared %d documents from %s", n, collection)
	}

	return n, nil
}
