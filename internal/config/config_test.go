package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mahjong", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Game.MaxSessions)
	assert.Equal(t, 30*time.Minute, cfg.Game.IdleTimeout)
	assert.Equal(t, 400*time.Millisecond, cfg.Game.Pacing.Draw.Min)
	assert.Equal(t, 1200*time.Millisecond, cfg.Game.Pacing.Discard.Max)
	assert.Equal(t, 10*time.Millisecond, cfg.Scheduler.Tick)
	assert.False(t, cfg.NATS.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
game:
  idle_timeout: 5m
  pacing:
    claim:
      min: 100ms
      max: 200ms
database:
  enabled: true
  host: db
  port: 5433
  name: hk
  user: u
  password: p
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("MAHJONG_SERVER_PORT", "9100")
	t.Setenv("MAHJONG_REDIS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Game.IdleTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Game.Pacing.Claim.Min)
	assert.Equal(t, 200*time.Millisecond, cfg.Game.Pacing.Claim.Max)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.Pacing.Discard.Min)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "postgres://u:p@db:5433/hk?sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
