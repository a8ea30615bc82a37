package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_URL", "")

	cfg := Load()
	require.NotNil(t, cfg)
	assert.Same(t, cfg, AppConfig)
	assert.Equal(t, "8080", cfg.APIPort)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, 1, cfg.DBMaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DuelExpiry)
	assert.Equal(t, time.Minute, cfg.ExpirySweepInterval)
	assert.Contains(t, cfg.DBConnStr, "host=db.internal")
	assert.Contains(t, cfg.DBConnStr, "sslmode=disable")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", ":memory:")
	t.Setenv("DUEL_EXPIRY", "90s")
	t.Setenv("DUEL_LOCK_TTL_SECONDS", "3")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, ":memory:", cfg.DBConnStr)
	assert.Equal(t, 90*time.Second, cfg.DuelExpiry)
	assert.Equal(t, 3*time.Second, cfg.DuelLockTTL)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoadSqliteDefaultPath(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", "")

	cfg := Load()
	assert.Equal(t, "tle.db", cfg.DBConnStr)
}

func TestLoadLeavesJWTKeyEmptyWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cfg := Load()
	assert.Empty(t, cfg.JWTKey)
}

func TestLoadReadsJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()
	assert.Equal(t, []byte("s3cret"), cfg.JWTKey)
}
