package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultSchemaURL, cfg.SchemaURL)
	assert.Equal(t, DefaultRefdataURL, cfg.RefdataURL)
	assert.Equal(t, DefaultIconURL, cfg.IconURL)
	assert.Equal(t, ":memory:", cfg.CatalogDB)
	assert.Equal(t, []string{"http://localhost:*"}, cfg.AllowedOrigins)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "development", cfg.LogMode)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GUIDEFORGE_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("GUIDEFORGE_SESSION_TTL", "30m")
	t.Setenv("LOG_MODE", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "production", cfg.LogMode)
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("GUIDEFORGE_FETCH_TIMEOUT", "soon")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse env:")
	})
	t.Run("non-positive ttl", func(t *testing.T) {
		t.Setenv("GUIDEFORGE_SESSION_TTL", "0s")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GUIDEFORGE_SESSION_TTL")
	})
}
