package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("GAME_COOLDOWNSECONDS", "60")
	t.Setenv("EXCHANGE_MOCKLIQUIDITY", "500")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, int64(60), cfg.Game.CooldownSeconds)
	assert.Equal(t, 9, cfg.Game.BoxCount)
	assert.Equal(t, "MEME", cfg.Game.PoolAsset)
	assert.Equal(t, uint64(500), cfg.Exchange.MockLiquidity)
	assert.True(t, cfg.Exchange.MockAPI)
	assert.Equal(t, 24*60*60, cfg.JWT.ExpiresIn)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: "9000"
jwt:
  secret: from-file
game:
  boxcount: 3
  payoutasset: USDC
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 3, cfg.Game.Rules().BoxCount)
	assert.Equal(t, "USDC", cfg.Game.PayoutAsset)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err, "missing secret")

	t.Setenv("JWT_SECRET", "x")
	t.Setenv("STORAGE_DRIVER", "postgres")
	_, err = Load(t.TempDir())
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("GAME_BOXCOUNT", "0")
	_, err = Load(t.TempDir())
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "box", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"box":3`)
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
