package firestore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docsPath = "/projects/stadium/databases/(default)/documents"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{ProjectID: "stadium", APIKey: "k3y", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresProject(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, docsPath+"/userAnimationPackages/user_1_1", r.URL.Path)
		assert.Equal(t, "k3y", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{}`))
	})

	err := c.Set(context.Background(), domain.CollectionUserPackages, "user_1_1", domain.Fields{
		"frameCount": int64(20),
		"frameRate":  2.5,
		"isActive":   true,
		"frames":     []any{"color_255_0_0"},
	})
	require.NoError(t, err)

	fields := body["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"integerValue": "20"}, fields["frameCount"])
	assert.Equal(t, map[string]any{"doubleValue": 2.5}, fields["frameRate"])
	assert.Equal(t, map[string]any{"booleanValue": true}, fields["isActive"])
	assert.Equal(t, map[string]any{
		"arrayValue": map[string]any{"values": []any{map[string]any{"stringValue": "color_255_0_0"}}},
	}, fields["frames"])
}

func TestSet_NestedCollection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, docsPath+"/animations/wave_animation/users/user_2_3", r.URL.Path)
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.Set(context.Background(), domain.SeatCollection("wave_animation"), "user_2_3", domain.Fields{"userId": "user_2_3"}))
}

func TestGet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == docsPath+"/animations/missing" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"message":"not found","status":"NOT_FOUND"}}`))
			return
		}

		w.Write([]byte(`{
			"name": "projects/stadium/databases/(default)/documents/animations/checkboard_flash",
			"fields": {
				"frameCount": {"integerValue": "20"},
				"duration": {"doubleValue": 10},
				"note": {"nullValue": null},
				"users": {"mapValue": {"fields": {
					"user_1_1": {"mapValue": {"fields": {
						"colors": {"arrayValue": {"values": [
							{"mapValue": {"fields": {"r": {"integerValue": "255"}, "g": {"integerValue": "0"}, "b": {"integerValue": "0"}}}}
						]}}
					}}}
				}}}
			}
		}`))
	})

	doc, found, err := c.Get(context.Background(), domain.CollectionAnimations, "checkboard_flash")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "checkboard_flash", doc.ID)
	assert.Equal(t, int64(20), doc.Fields["frameCount"])
	assert.Equal(t, 10.0, doc.Fields["duration"])
	assert.Contains(t, doc.Fields, "note")
	assert.Nil(t, doc.Fields["note"])

	seqs, err := domain.DecodeFlatMap(doc.Fields)
	require.NoError(t, err)
	require.Len(t, seqs, 1)
	assert.Equal(t, domain.Red, seqs[0].Frames[0].Color)

	_, found, err = c.Get(context.Background(), domain.CollectionAnimations, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestList_FollowsPages(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, docsPath+"/animation_configs", r.URL.Path)
		assert.Equal(t, "300", r.URL.Query().Get("pageSize"))

		switch r.URL.Query().Get("pageToken") {
		case "":
			w.Write([]byte(`{"documents":[{"name":"x/animation_configs/a","fields":{"status":{"stringValue":"active"}}}],"nextPageToken":"p2"}`))
		case "p2":
			w.Write([]byte(`{"documents":[{"name":"x/animation_configs/b","fields":{"status":{"stringValue":"inactive"}}}]}`))
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("pageToken"))
		}
	})

	docs, err := c.List(context.Background(), domain.CollectionAnimationConfig)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "inactive", docs[1].Fields["status"])
}

func TestList_EmptyCollection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	docs, err := c.List(context.Background(), domain.CollectionTriggers)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestUpdate_SendsMask(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, []string{"isActive", "status"}, r.URL.Query()["updateMask.fieldPaths"])
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.Update(context.Background(), domain.CollectionAnimationConfig, "a", domain.Fields{
		"status":   "inactive",
		"isActive": false,
	}))
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "status", fieldPath("status"))
	assert.Equal(t, "`user-1`", fieldPath("user-1"))
	assert.Equal(t, "`1st`", fieldPath("1st"))
}

func TestDelete(t *testing.T) {
	status := http.StatusNotFound
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(status)
		w.Write([]byte(`{"error":{"code":500,"message":"backend error","status":"INTERNAL"}}`))
	})

	require.NoError(t, c.Delete(context.Background(), domain.CollectionUserPackages, "user_1_1"))

	status = http.StatusInternalServerError
	err := c.Delete(context.Background(), domain.CollectionUserPackages, "user_1_1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "INTERNAL", apiErr.Status)
	assert.Equal(t, "backend error", apiErr.Message)
}

func TestAdd(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, docsPath+"/animation_triggers", r.URL.Path)

		raw, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(raw), `"stringValue":"triggered"`)

		w.Write([]byte(`{"name":"projects/stadium/databases/(default)/documents/animation_triggers/Xy12"}`))
	})

	id, err := c.Add(context.Background(), domain.CollectionTriggers, domain.Fields{"status": "triggered"})
	require.NoError(t, err)
	assert.Equal(t, "Xy12", id)
}

func TestSet_PermissionDenied(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"Missing or insufficient permissions.","status":"PERMISSION_DENIED"}}`))
	})

	err := c.Set(context.Background(), domain.CollectionAnimations, "x", domain.Fields{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "insufficient permissions")
}
