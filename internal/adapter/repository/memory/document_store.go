// Package memory is an in-process DocumentStore used for dry runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/srgjo27/seat_animation/internal/core/domain"
)

type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]domain.Fields
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]map[string]domain.Fields)}
}

func (s *DocumentStore) Set(_ context.Context, collection, id string, fields domain.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.docs[collection]
	if !ok {
		coll = make(map[string]domain.Fields)
		s.docs[collection] = coll
	}
	coll[id] = copyFields(fields)

	return nil
}

func (s *DocumentStore) Get(_ context.Context, collection, id string) (domain.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.docs[collection][id]
	if !ok {
		return domain.Document{}, false, nil
	}

	return domain.Document{ID: id, Fields: copyFields(fields)}, true, nil
}

// List returns documents ordered by id.
func (s *DocumentStore) List(_ context.Context, collection string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.docs[collection]
	docs := make([]domain.Document, 0, len(coll))
	for id, fields := range coll {
		docs = append(docs, domain.Document{ID: id, Fields: copyFields(fields)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	return docs, nil
}

func (s *DocumentStore) Update(_ context.Context, collection, id string, partial domain.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.docs[collection]
	if !ok {
		coll = make(map[string]domain.Fields)
		s.docs[collection] = coll
	}

	fields, ok := coll[id]
	if !ok {
		fields = domain.Fields{}
		coll[id] = fields
	}

	for k, v := range copyFields(partial) {
		fields[k] = v
	}

	return nil
}

func (s *DocumentStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs[collection], id)
	return nil
}

func (s *DocumentStore) Add(ctx context.Context, collection string, fields domain.Fields) (string, error) {
	id := uuid.NewString()
	return id, s.Set(ctx, collection, id, fields)
}

// Count returns the number of documents in collection.
func (s *DocumentStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.docs[collection])
}

func copyFields(in domain.Fields) domain.Fields {
	out := make(domain.Fields, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}

	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = copyValue(inner)
		}
		return m
	case domain.Fields:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = copyValue(inner)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, inner := range t {
			l[i] = copyValue(inner)
		}
		return l
	default:
		return v
	}
}
