package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "WS_ADDR", "DB_TYPE", "DB_FILE", "RATE_LIMIT", "RATE_BURST", "MAX_LINE_BYTES"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":5555", cfg.Addr())
	assert.Equal(t, DBNone, cfg.DBType)
	assert.Empty(t, cfg.WSAddr)
	assert.Equal(t, 50.0, cfg.RateLimit)
	assert.Equal(t, 100, cfg.RateBurst)
	assert.Equal(t, 4<<20, cfg.MaxLineBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("DB_TYPE", "SQLite")
	t.Setenv("DB_FILE", "")
	t.Setenv("RATE_BURST", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr())
	assert.Equal(t, DBSQLite, cfg.DBType)
	assert.Equal(t, "archive.db", cfg.DBFile)
	assert.Equal(t, 5, cfg.RateBurst)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DB_TYPE", "mongo")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_TYPE", "")
	t.Setenv("RATE_LIMIT", "fast")
	_, err = Load()
	assert.Error(t, err)
}
