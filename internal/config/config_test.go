package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	// Секрет подписи дефолта не имеет
	assert.Empty(t, cfg.SecretKey)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("RETAIL_LISTEN_ADDR", ":9090")
	t.Setenv("RETAIL_SECRET_KEY", "env-secret")
	t.Setenv("RETAIL_CACHE_TTL", "2m")
	t.Setenv("RETAIL_TOKEN_TTL", "15m")

	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.parseEnv()

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.LoadDefaults()
		cfg.SecretKey = "some-secret"
		return cfg
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, valid().validate())
	})

	t.Run("missing secret is rejected", func(t *testing.T) {
		cfg := valid()
		cfg.SecretKey = ""
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "signing secret")
	})

	t.Run("missing DSN is rejected", func(t *testing.T) {
		cfg := valid()
		cfg.DatabaseDSN = ""
		assert.Error(t, cfg.validate())
	})

	t.Run("non-positive TTLs are rejected", func(t *testing.T) {
		cfg := valid()
		cfg.CacheTTL = 0
		assert.Error(t, cfg.validate())

		cfg = valid()
		cfg.AccessTokenTTL = -time.Minute
		assert.Error(t, cfg.validate())
	})
}
