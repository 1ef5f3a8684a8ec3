package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, "redis", cfg.KVBackend)
	assert.Equal(t, "254", cfg.SMSCountryCode)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.False(t, cfg.EmailEnabled)
	assert.Len(t, cfg.AllowedOrigins, 3)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KV_BACKEND", "memory")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example.com")
	t.Setenv("NOTIFY_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.KVBackend)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.NotifyTimeout)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("KV_BACKEND", "memcached")
	_, err := Load()
	assert.ErrorContains(t, err, "KV_BACKEND")
}

func TestSMTPConfigured(t *testing.T) {
	assert.False(t, (&Config{SMTPUsername: "u"}).SMTPConfigured())
	assert.True(t, (&Config{SMTPUsername: "u", SMTPPassword: "p"}).SMTPConfigured())
}
