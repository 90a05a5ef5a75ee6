package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DOCUMENT_STORE", "memory")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "football_stadium", cfg.EventType)
	assert.Equal(t, 500, cfg.WriteBatchSize)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, time.Minute, cfg.ExpirySweep)
	assert.Equal(t, NotifierNone, cfg.Notifier.Kind)
	assert.Equal(t, "seatanim", cfg.Redis.Prefix)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCUMENT_STORE=redis\nREDIS_ADDR=localhost:6379\nWRITE_BATCH_SIZE=50\n"), 0o600))

	// godotenv never overrides variables that are already set.
	t.Setenv("DOCUMENT_STORE", "")
	os.Unsetenv("DOCUMENT_STORE")
	t.Setenv("REDIS_ADDR", "")
	os.Unsetenv("REDIS_ADDR")
	t.Setenv("WRITE_BATCH_SIZE", "")
	os.Unsetenv("WRITE_BATCH_SIZE")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.DocumentStore)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 50, cfg.WriteBatchSize)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("DOCUMENT_STORE", "memory")
	t.Setenv("CACHE_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{DocumentStore: StoreMemory, WriteBatchSize: 1, Notifier: NotifierConfig{Kind: NotifierNone}}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"firestore without project", func(c *Config) { c.DocumentStore = StoreFirestore }, "FIRESTORE_PROJECT_ID"},
		{"redis without addr", func(c *Config) { c.DocumentStore = StoreRedis }, "REDIS_ADDR"},
		{"unknown store", func(c *Config) { c.DocumentStore = "mongo" }, "unknown DOCUMENT_STORE"},
		{"unknown notifier", func(c *Config) { c.Notifier.Kind = "kafka" }, "unknown NOTIFIER"},
		{"zero batch", func(c *Config) { c.WriteBatchSize = 0 }, "WRITE_BATCH_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
