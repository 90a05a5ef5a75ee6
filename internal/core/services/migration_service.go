package services

import (
	"context"
	"fmt"
	"log"

	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/srgjo27/seat_animation/internal/core/ports"
)

type MigrationResult struct {
	WriteSet *domain.SubcollectionWriteSet
	Cleared  int
	Written  int
	DryRun   bool
}

// MigrationService moves existing deployments between persistence shapes.
type MigrationService struct {
	store ports.DocumentStore
	cache ports.AnimationCache
}

// NewMigrationService wires a migrator. cache may be nil.
func NewMigrationService(store ports.DocumentStore, cache ports.AnimationCache) *MigrationService {
	return &MigrationService{store: store, cache: cache}
}

// FlatMapToSubcollection rewrites every seat of animations/{id}.users as
// animations/{id}/users/{seatID}, then replaces the parent with its metadata
// only. Children go first so a failed run leaves the users map in place and
// can be repeated.
func (s *MigrationService) FlatMapToSubcollection(ctx context.Context, animationID string, dryRun bool) (*MigrationResult, error) {
	parent, found, err := s.store.Get(ctx, domain.CollectionAnimations, animationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read animation %s: %w", animationID, err)
	}

	if !found {
		return nil, fmt.Errorf("animation %s: %w", animationID, ErrNotFound)
	}

	ws, err := domain.SubcollectionFromFlatMap(animationID, parent.Fields)
	if err != nil {
		return nil, fmt.Errorf("animation %s is not a flat-map deployment: %w", animationID, err)
	}

	result := &MigrationResult{WriteSet: ws, DryRun: dryRun}
	if dryRun {
		log.Printf("Dry run: would move %d seats of %s into %s", len(ws.Children), animationID, domain.SeatCollection(animationID))
		return result, nil
	}

	result.Cleared, err = clearSeatDocuments(ctx, s.store, animationID)
	if err != nil {
		return nil, err
	}

	for _, w := range ws.Children {
		if err := s.store.Set(ctx, w.Collection, w.ID, w.Fields); err != nil {
			return result, fmt.Errorf("migration of %s incomplete after %d seats: %w", animationID, result.Written, err)
		}
		result.Written++
	}

	if err := s.store.Set(ctx, ws.Parent.Collection, ws.Parent.ID, ws.Parent.Fields); err != nil {
		return result, fmt.Errorf("failed to rewrite animation %s: %w", animationID, err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, animationCacheKey(animationID), allAnimationsCacheKey); err != nil {
			log.Printf("Failed to invalidate cache for %s: %v", animationID, err)
		}
	}

	log.Printf("Migrated %s: %d seats moved to %s", animationID, result.Written, domain.SeatCollection(animationID))
	return result, nil
}
