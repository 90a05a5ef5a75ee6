package ports

import (
	"context"
	"time"

	"github.com/srgjo27/seat_animation/internal/core/domain"
)

// DocumentStore is a document database addressed by collection path and
// document id. Collection paths may be nested, e.g. "animations/x/users".
type DocumentStore interface {
	Set(ctx context.Context, collection, id string, fields domain.Fields) error
	// Get reports found=false, with a nil error, when the document is absent.
	Get(ctx context.Context, collection, id string) (doc domain.Document, found bool, err error)
	List(ctx context.Context, collection string) ([]domain.Document, error)
	// Update merges top-level fields into an existing document.
	Update(ctx context.Context, collection, id string, partial domain.Fields) error
	// Delete succeeds when the document does not exist.
	Delete(ctx context.Context, collection, id string) error
	Add(ctx context.Context, collection string, fields domain.Fields) (string, error)
}

type AnimationCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

type EventPublisher interface {
	PublishActivated(ctx context.Context, event domain.AnimationActivatedEvent) error
	Close() error
}
