package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/srgjo27/seat_animation/internal/adapter/handler"
	"github.com/srgjo27/seat_animation/internal/adapter/repository/memory"
	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/srgjo27/seat_animation/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*httptest.Server, *memory.DocumentStore) {
	t.Helper()

	ctx := context.Background()
	store := memory.NewDocumentStore()
	require.NoError(t, store.Set(ctx, domain.CollectionAnimations, "checkboard_flash", domain.Fields{
		"animationId": "checkboard_flash",
		"frameCount":  int64(20),
	}))
	require.NoError(t, store.Set(ctx, domain.CollectionUserPackages, "user_2_3", domain.Fields{
		"userId":      "user_2_3",
		"animationId": "checkboard_flash",
	}))

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := services.NewAnimationService(store, nil, 0).WithClock(func() time.Time { return now })

	mux := http.NewServeMux()
	handler.NewAnimationHandler(svc).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGetAnimations(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/animations")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, decode(t, resp), "checkboard_flash")

	resp, err = http.Get(srv.URL + "/animations?type=checkboard_flash")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(20), decode(t, resp)["frameCount"])

	resp, err = http.Get(srv.URL + "/animations?type=missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetActiveConfig(t *testing.T) {
	srv, store := newServer(t)

	resp, err := http.Get(srv.URL + "/configs/active")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No active configuration found", decode(t, resp)["error"])

	require.NoError(t, store.Set(context.Background(), domain.CollectionAnimationConfig, "cfg-1", domain.Fields{
		"animationType": "checkboard_flash",
		"status":        "active",
		"createdAt":     "2025-01-01T00:00:00Z",
	}))

	resp, err = http.Get(srv.URL + "/configs/active")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "cfg-1", body["id"])
	assert.Equal(t, "checkboard_flash", body["animationType"])
}

func TestCreateTrigger(t *testing.T) {
	srv, store := newServer(t)

	resp, err := http.Post(srv.URL+"/triggers", "application/json",
		strings.NewReader(`{"animationType":"checkboard_flash","userId":"user_1_1"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["triggerId"])
	assert.Equal(t, 1, store.Count(domain.CollectionTriggers))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing user", `{"animationType":"checkboard_flash"}`, http.StatusBadRequest},
		{"bad start time", `{"animationType":"checkboard_flash","userId":"u","startTime":"soon"}`, http.StatusBadRequest},
		{"unknown animation", `{"animationType":"nope","userId":"u"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/triggers", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	resp, err = http.Get(srv.URL + "/triggers")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestGetPackage(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/packages?userId=user_2_3")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "checkboard_flash", decode(t, resp)["animationId"])

	resp, err = http.Get(srv.URL + "/packages?userId=seat-9")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/packages?userId=user_9_9")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPreflight(t *testing.T) {
	srv, _ := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/animations", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "GET, POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
}
