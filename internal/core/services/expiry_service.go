package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/srgjo27/seat_animation/internal/core/ports"
)

// ExpiryService flags seat packages whose endTime has passed so clients stop
// scheduling them.
type ExpiryService struct {
	store ports.DocumentStore
	now   func() time.Time
}

func NewExpiryService(store ports.DocumentStore) *ExpiryService {
	return &ExpiryService{store: store, now: time.Now}
}

func (s *ExpiryService) WithClock(now func() time.Time) *ExpiryService {
	s.now = now
	return s
}

func (s *ExpiryService) RunBackgroundSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Background Worker started: Checking expired seat packages every %s...", interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Background Worker stopped.")
			return
		case <-ticker.C:
			if _, err := s.SweepExpired(ctx); err != nil {
				log.Printf("Error sweeping expired packages: %v", err)
			}
		}
	}
}

// SweepExpired marks every active package with endTime at or before now as
// expired and returns how many were updated. Packages without a parsable
// endTime are left alone.
func (s *ExpiryService) SweepExpired(ctx context.Context) (int, error) {
	docs, err := s.store.List(ctx, domain.CollectionUserPackages)
	if err != nil {
		return 0, fmt.Errorf("failed to list seat packages: %w", err)
	}

	now := s.now()
	expired := 0
	for _, doc := range docs {
		if done, _ := doc.Fields["isExpired"].(bool); done {
			continue
		}

		raw, _ := doc.Fields["endTime"].(string)
		end, err := domain.ParseTimestamp(raw)
		if err != nil || end.After(now) {
			continue
		}

		if err := s.store.Update(ctx, domain.CollectionUserPackages, doc.ID, domain.Fields{"isActive": false, "isExpired": true}); err != nil {
			log.Printf("Failed to expire package %s: %v", doc.ID, err)
			continue
		}
		expired++
	}

	if expired > 0 {
		log.Printf("Expired %d seat packages", expired)
	}

	return expired, nil
}
