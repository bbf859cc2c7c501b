package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validTestConfig satisfies validate(): a DSN and an HTTP address are the
// minimum a server start needs.
func validTestConfig() *StructuredConfig {
	return &StructuredConfig{
		Server:  Server{HTTPAddress: "localhost:8080"},
		Storage: Storage{DB: DB{DSN: "postgres://localhost/testdb"}},
	}
}

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBuild_MergesMultipleConfigs(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		validTestConfig(),
		&StructuredConfig{Workers: Workers{SyncInterval: 10 * time.Second, BatchLimit: 25}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
	assert.Equal(t, "postgres://localhost/testdb", cfg.Storage.DB.DSN)
	assert.Equal(t, 10*time.Second, cfg.Workers.SyncInterval)
	assert.Equal(t, uint64(25), cfg.Workers.BatchLimit)
}

func TestBuild_FirstNonZeroValueWins(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		validTestConfig(),
		&StructuredConfig{Server: Server{HTTPAddress: "ignored:9999"}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
}

func TestBuild_ValidationRequiresDSN(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		Server: Server{HTTPAddress: "localhost:8080"},
	})

	cfg, err := b.build()
	_ = cfg
	assert.ErrorIs(t, err, ErrInvalidStorageConfigs)
}

func TestBuild_ValidationRequiresHTTPAddress(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		Storage: Storage{DB: DB{DSN: "postgres://localhost/testdb"}},
	})

	_, err := b.build()
	assert.ErrorIs(t, err, ErrInvalidServerConfigs)
}

func TestWithEnv_ReturnsBuilder(t *testing.T) {
	clearEnvVars(t)

	b := newConfigBuilder()
	assert.Same(t, b, b.withEnv())
	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

func TestWithEnv_ReadsEnvVars(t *testing.T) {
	setEnvVars(t, map[string]string{
		"SERVER_ADDRESS":          "env-host:8081",
		"STORAGE_DB_DATABASE_URI": "postgres://env/db",
	})

	b := newConfigBuilder()
	b.withEnv()

	require.Len(t, b.configs, 1)
	assert.Equal(t, "env-host:8081", b.configs[0].Server.HTTPAddress)
	assert.Equal(t, "postgres://env/db", b.configs[0].Storage.DB.DSN)
}

func TestWithJSON_NoPathIsNoOp(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, validTestConfig())

	b.withJSON()

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

func TestWithJSON_PathFromEarlierSource(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.json")
	jsonBody := `{
		"workers": { "sync_interval": "15s" }
	}`
	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	cfg := validTestConfig()
	cfg.JSONFilePath = p

	b := newConfigBuilder()
	b.configs = append(b.configs, cfg)
	b.withJSON()

	require.Len(t, b.configs, 2)
	assert.Equal(t, 15*time.Second, b.configs[1].Workers.SyncInterval)

	merged, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, merged.Workers.SyncInterval)
}

func TestWithJSON_MissingFileSetsError(t *testing.T) {
	cfg := validTestConfig()
	cfg.JSONFilePath = "definitely-does-not-exist.json"

	b := newConfigBuilder()
	b.configs = append(b.configs, cfg)
	b.withJSON()

	require.Error(t, b.err)

	_, err := b.build()
	assert.Contains(t, err.Error(), "error occured during building config")
}
