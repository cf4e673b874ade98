package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://catalog@localhost:5432/catalog")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5200", cfg.Port)
	assert.Equal(t, DefaultSteamAPIURL, cfg.SteamAPIURL)
	assert.Equal(t, 10*time.Second, cfg.SteamTimeout)
	assert.Equal(t, 24*time.Hour, cfg.ResyncInterval)
	assert.Equal(t, 100, cfg.SyncBatchMax)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.R2.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:catalog.db")
	t.Setenv("STEAM_TIMEOUT", "3s")
	t.Setenv("RESYNC_INTERVAL", "0")
	t.Setenv("SYNC_BATCH_MAX", "5")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_ACCESS_KEY_SECRET", "secret")
	t.Setenv("R2_BUCKET_NAME", "headers")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.SteamTimeout)
	assert.Zero(t, cfg.ResyncInterval)
	assert.Equal(t, 5, cfg.SyncBatchMax)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.R2.Enabled())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:catalog.db")

	t.Setenv("STEAM_TIMEOUT", "ten seconds")
	_, err := Load()
	assert.ErrorContains(t, err, "STEAM_TIMEOUT")

	t.Setenv("STEAM_TIMEOUT", "")
	t.Setenv("SYNC_BATCH_MAX", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "SYNC_BATCH_MAX")
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}
