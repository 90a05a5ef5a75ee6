package services_test

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/srgjo27/seat_animation/internal/adapter/repository/memory"
	redisrepo "github.com/srgjo27/seat_animation/internal/adapter/repository/redis"
	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/srgjo27/seat_animation/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *memory.DocumentStore {
	t.Helper()

	store := memory.NewDocumentStore()
	wave, err := domain.ProceduralSpec("wave")
	require.NoError(t, err)

	deploy(t, store, redBlue(), domain.SeatGrid{Rows: 2, Seats: 2}, domain.ShapeSubcollection)
	deploy(t, store, wave, domain.SeatGrid{Rows: 1, Seats: 3}, domain.ShapeFlatMap)
	deploy(t, store, domain.UniformFlashSpec("blue_black_flash", domain.Blue, 20, 2), domain.SeatGrid{Rows: 1, Seats: 2}, domain.ShapePackagePerSeat)

	return store
}

func TestCleanup_KeepsListedAnimations(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	db, mockRedis := redismock.NewClientMock()
	mockRedis.ExpectDel("seatanim:cache:animations:all", "seatanim:cache:animation:checkboard_flash").SetVal(1)

	svc := services.NewCleanupService(store, redisrepo.NewAnimationCache(db, ""))

	result, err := svc.Cleanup(ctx, services.CleanupRequest{
		KeepAnimations: []string{"wave_animation"},
		Packages:       true,
		Configs:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"checkboard_flash"}, result.Animations)
	assert.Equal(t, 4, result.SeatDocs)
	assert.Equal(t, 2, result.Packages)
	assert.Equal(t, 2, result.Configs)

	assert.Equal(t, 1, store.Count(domain.CollectionAnimations))
	assert.Equal(t, 0, store.Count(domain.SeatCollection("checkboard_flash")))
	assert.Equal(t, 0, store.Count(domain.CollectionUserPackages))
	assert.Equal(t, 1, store.Count(domain.CollectionAnimationConfig))

	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestCleanup_PackagesOfOneAnimation(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	require.NoError(t, store.Set(ctx, domain.CollectionUserPackages, "user_7_7", domain.Fields{"animationId": "other"}))

	result, err := services.NewCleanupService(store, nil).Cleanup(ctx, services.CleanupRequest{
		KeepAnimations:     []string{"wave_animation", "checkboard_flash"},
		Packages:           true,
		PackageAnimationID: "other",
	})
	require.NoError(t, err)

	assert.Empty(t, result.Animations)
	assert.Equal(t, 1, result.Packages)
	assert.Equal(t, 2, store.Count(domain.CollectionUserPackages))
}

func TestCleanup_DryRun(t *testing.T) {
	store := seededStore(t)

	result, err := services.NewCleanupService(store, nil).Cleanup(context.Background(), services.CleanupRequest{
		Packages: true,
		Configs:  true,
		DryRun:   true,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"checkboard_flash", "wave_animation"}, result.Animations)
	assert.Equal(t, 2, result.Packages)

	assert.Equal(t, 2, store.Count(domain.CollectionAnimations))
	assert.Equal(t, 4, store.Count(domain.SeatCollection("checkboard_flash")))
	assert.Equal(t, 2, store.Count(domain.CollectionUserPackages))
	assert.Equal(t, 3, store.Count(domain.CollectionAnimationConfig))
}
