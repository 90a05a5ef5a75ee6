// Package redis stores documents as JSON strings with a per-collection id
// set, and provides the animation read cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/srgjo27/seat_animation/internal/adapter/repository/jsondoc"
	"github.com/srgjo27/seat_animation/internal/core/domain"
)

const (
	DefaultPrefix = "seatanim"

	maxUpdateAttempts = 5
)

// Client is satisfied by *redis.Client and *redis.ClusterClient.
type Client interface {
	redis.Cmdable
	Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error
}

type DocumentRepository struct {
	client Client
	prefix string
}

func NewDocumentRepository(client Client, prefix string) *DocumentRepository {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &DocumentRepository{client: client, prefix: prefix}
}

func (r *DocumentRepository) docKey(collection, id string) string {
	return fmt.Sprintf("%s:doc:%s:%s", r.prefix, collection, id)
}

func (r *DocumentRepository) collectionKey(collection string) string {
	return fmt.Sprintf("%s:coll:%s", r.prefix, collection)
}

func (r *DocumentRepository) Set(ctx context.Context, collection, id string, fields domain.Fields) error {
	raw, err := jsondoc.Encode(fields)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.docKey(collection, id), raw, 0)
		pipe.SAdd(ctx, r.collectionKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}

	return nil
}

func (r *DocumentRepository) Get(ctx context.Context, collection, id string) (domain.Document, bool, error) {
	raw, err := r.client.Get(ctx, r.docKey(collection, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Document{}, false, nil
		}

		return domain.Document{}, false, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	fields, err := jsondoc.Decode(raw)
	if err != nil {
		return domain.Document{}, false, fmt.Errorf("%s/%s: %w", collection, id, err)
	}

	return domain.Document{ID: id, Fields: fields}, true, nil
}

// List skips ids whose document key has gone missing.
func (r *DocumentRepository) List(ctx context.Context, collection string) ([]domain.Document, error) {
	ids, err := r.client.SMembers(ctx, r.collectionKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(collection, id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", collection, err)
	}

	docs := make([]domain.Document, 0, len(ids))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}

		fields, err := jsondoc.Decode([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", collection, ids[i], err)
		}

		docs = append(docs, domain.Document{ID: ids[i], Fields: fields})
	}

	return docs, nil
}

// Update merges partial into the stored document under WATCH and retries
// when another writer commits first.
func (r *DocumentRepository) Update(ctx context.Context, collection, id string, partial domain.Fields) error {
	key := r.docKey(collection, id)

	merge := func(tx *redis.Tx) error {
		merged := domain.Fields{}

		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			stored, err := jsondoc.Decode(raw)
			if err != nil {
				return err
			}
			if stored != nil {
				merged = stored
			}
		}

		for k, v := range partial {
			merged[k] = v
		}

		out, err := jsondoc.Encode(merged)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			pipe.SAdd(ctx, r.collectionKey(collection), id)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, merge, key)
		if err == nil {
			return nil
		}

		if !errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
		}
	}

	return fmt.Errorf("failed to update %s/%s after %d attempts: %w", collection, id, maxUpdateAttempts, redis.TxFailedErr)
}

func (r *DocumentRepository) Delete(ctx context.Context, collection, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.docKey(collection, id))
		pipe.SRem(ctx, r.collectionKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}

	return nil
}

func (r *DocumentRepository) Add(ctx context.Context, collection string, fields domain.Fields) (string, error) {
	id := uuid.NewString()
	if err := r.Set(ctx, collection, id, fields); err != nil {
		return "", err
	}

	return id, nil
}
