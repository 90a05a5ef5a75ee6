// Package app wires the configured adapters into the core services. Both
// binaries share it so a deployment made by the CLI is read back by the API
// through the same store.
package app

import (
	"context"
	"fmt"
	"log"

	goredis "github.com/redis/go-redis/v9"

	"github.com/srgjo27/seat_animation/internal/adapter/firestore"
	amqpnotifier "github.com/srgjo27/seat_animation/internal/adapter/notifier/amqp"
	natsnotifier "github.com/srgjo27/seat_animation/internal/adapter/notifier/nats"
	"github.com/srgjo27/seat_animation/internal/adapter/repository/memory"
	"github.com/srgjo27/seat_animation/internal/adapter/repository/postgres"
	redisrepo "github.com/srgjo27/seat_animation/internal/adapter/repository/redis"
	"github.com/srgjo27/seat_animation/internal/core/ports"
	"github.com/srgjo27/seat_animation/internal/core/services"
	"github.com/srgjo27/seat_animation/internal/platform/cache"
	"github.com/srgjo27/seat_animation/internal/platform/config"
	"github.com/srgjo27/seat_animation/internal/platform/database"
)

type App struct {
	Config     config.Config
	Store      ports.DocumentStore
	Cache      ports.AnimationCache
	Publisher  ports.EventPublisher
	Deployer   *services.DeploymentService
	Verifier   *services.VerificationService
	Cleaner    *services.CleanupService
	Animations *services.AnimationService
	Expiry     *services.ExpiryService
	Migrator   *services.MigrationService
	closers    []func() error
}

// New opens the document store, the optional Redis cache and the optional
// event publisher.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Config: cfg}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(cache.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		redisClient = client
		a.closers = append(a.closers, client.Close)
		a.Cache = redisrepo.NewAnimationCache(client, cfg.Redis.Prefix)
	}

	store, err := a.openStore(ctx, cfg, redisClient)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	publisher, err := openPublisher(cfg.Notifier)
	if err != nil {
		a.Close()
		return nil, err
	}
	if publisher != nil {
		a.Publisher = publisher
		a.closers = append(a.closers, publisher.Close)
	}

	a.Deployer = services.NewDeploymentService(a.Store, a.Cache, a.Publisher).
		WithBatching(cfg.WriteBatchSize, cfg.WriteBatchPause)
	a.Verifier = services.NewVerificationService(a.Store)
	a.Cleaner = services.NewCleanupService(a.Store, a.Cache)
	a.Animations = services.NewAnimationService(a.Store, a.Cache, cfg.CacheTTL)
	a.Expiry = services.NewExpiryService(a.Store)
	a.Migrator = services.NewMigrationService(a.Store, a.Cache)

	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg config.Config, redisClient *goredis.Client) (ports.DocumentStore, error) {
	switch cfg.DocumentStore {
	case config.StoreFirestore:
		log.Printf("Using Firestore project %s", cfg.Firestore.ProjectID)
		return firestore.NewClient(firestore.Config{
			ProjectID: cfg.Firestore.ProjectID,
			APIKey:    cfg.Firestore.APIKey,
			BaseURL:   cfg.Firestore.BaseURL,
			Timeout:   cfg.Firestore.Timeout,
		})

	case config.StorePostgres:
		db, err := database.NewPostgresDB(database.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			DBName:   cfg.Postgres.Name,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)

		repo := postgres.NewDocumentRepository(db, cfg.Postgres.Table)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	case config.StoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis store requires REDIS_ADDR")
		}
		return redisrepo.NewDocumentRepository(redisClient, cfg.Redis.Prefix), nil

	case config.StoreMemory:
		log.Println("Using in-memory document store; nothing is persisted")
		return memory.NewDocumentStore(), nil
	}

	return nil, fmt.Errorf("unknown document store %q", cfg.DocumentStore)
}

func openPublisher(cfg config.NotifierConfig) (ports.EventPublisher, error) {
	switch cfg.Kind {
	case config.NotifierAMQP:
		return amqpnotifier.Dial(cfg.RabbitMQURL, cfg.Queue)
	case config.NotifierNATS:
		return natsnotifier.Connect(cfg.NATSURL, cfg.Subject)
	}

	return nil, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Close failed: %v", err)
		}
	}
	a.closers = nil
}
