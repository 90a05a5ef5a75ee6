package memory

import (
	"context"
	"testing"

	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStore_IsolatesCallers(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()

	in := domain.Fields{"frames": []any{"frame_000"}, "meta": map[string]any{"k": "v"}}
	require.NoError(t, s.Set(ctx, "c", "a", in))

	in["frames"].([]any)[0] = "changed"
	in["meta"].(map[string]any)["k"] = "changed"

	doc, found, err := s.Get(ctx, "c", "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "frame_000", doc.Fields["frames"].([]any)[0])
	assert.Equal(t, "v", doc.Fields["meta"].(map[string]any)["k"])

	doc.Fields["frames"] = nil
	again, _, _ := s.Get(ctx, "c", "a")
	assert.NotNil(t, again.Fields["frames"])
}

func TestDocumentStore_ListUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()

	require.NoError(t, s.Set(ctx, "c", "b", domain.Fields{"n": int64(2)}))
	require.NoError(t, s.Set(ctx, "c", "a", domain.Fields{"n": int64(1)}))

	docs, err := s.List(ctx, "c")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)

	require.NoError(t, s.Update(ctx, "c", "a", domain.Fields{"m": true}))
	doc, _, _ := s.Get(ctx, "c", "a")
	assert.Equal(t, domain.Fields{"n": int64(1), "m": true}, doc.Fields)

	require.NoError(t, s.Delete(ctx, "c", "a"))
	require.NoError(t, s.Delete(ctx, "c", "a"))
	require.NoError(t, s.Delete(ctx, "nope", "a"))
	assert.Equal(t, 1, s.Count("c"))

	id, err := s.Add(ctx, "c", domain.Fields{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 2, s.Count("c"))

	_, found, err := s.Get(ctx, "empty", "x")
	require.NoError(t, err)
	assert.False(t, found)
}
