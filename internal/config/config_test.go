package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, 20, cfg.DBMaxOpenConns)
	assert.Equal(t, 5, cfg.WorkerConcurrency)
	assert.False(t, cfg.IsLocalDev)
	assert.Contains(t, cfg.SyncSQSQueueURL, "time-clock-sync-queue")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DB_NAME", "attendance")
	t.Setenv("WORKER_CONCURRENCY", "12")
	t.Setenv("IS_LOCAL_DEV", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "attendance", cfg.DBName)
	assert.Equal(t, 12, cfg.WorkerConcurrency)
	assert.True(t, cfg.IsLocalDev)
}
