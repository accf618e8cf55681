package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so defaults apply regardless of
// the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"SERVER_PORT", "GIN_MODE", "API_KEY", "JWT_SECRET_KEY",
		"IPTV_PROVIDER_URL", "IPTV_PROVIDER_USERNAME", "IPTV_PROVIDER_PASSWORD",
		"IPTV_SERVER_URL", "IPTV_BACKUP_SERVERS", "MAG_PORTAL_URL",
		"BROWSER_HEADLESS", "BROWSER_TIMEOUT_SECONDS", "SETTLE_DELAY_MS",
		"MAX_CONCURRENT_SESSIONS", "BROWSER_AUTO_INSTALL", "CORS_ALLOWED_ORIGINS",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Empty(t, cfg.Provider.BaseURL)
	assert.Equal(t, "http://ky-tv.cc:8080", cfg.Streaming.ServerURL)
	assert.Empty(t, cfg.Streaming.BackupServers)
	assert.Empty(t, cfg.Streaming.MAGPortalURL)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Browser.SettleDelay)
	assert.Equal(t, 2, cfg.Browser.MaxSessions)
	assert.False(t, cfg.Browser.AutoInstall)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("IPTV_PROVIDER_URL", "https://portal.example.com")
	t.Setenv("IPTV_PROVIDER_USERNAME", "reseller")
	t.Setenv("IPTV_PROVIDER_PASSWORD", "hunter2")
	t.Setenv("IPTV_SERVER_URL", "http://stream.example.com:8000")
	t.Setenv("IPTV_BACKUP_SERVERS", "http://b1.example.com,http://b2.example.com")
	t.Setenv("MAG_PORTAL_URL", "http://mag.example.com/c")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("BROWSER_TIMEOUT_SECONDS", "45")
	t.Setenv("SETTLE_DELAY_MS", "3000")
	t.Setenv("MAX_CONCURRENT_SESSIONS", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://portal.example.com", cfg.Provider.BaseURL)
	assert.Equal(t, "reseller", cfg.Provider.Username)
	assert.Equal(t, "hunter2", cfg.Provider.Password)
	assert.Equal(t, "http://stream.example.com:8000", cfg.Streaming.ServerURL)
	assert.Equal(t, "http://b1.example.com,http://b2.example.com", cfg.Streaming.BackupServers)
	assert.Equal(t, "http://mag.example.com/c", cfg.Streaming.MAGPortalURL)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 45*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, 3*time.Second, cfg.Browser.SettleDelay)
	assert.Equal(t, 4, cfg.Browser.MaxSessions)
	assert.Equal(t,
		[]string{"https://shop.example.com", "https://admin.example.com"},
		cfg.CORS.AllowedOrigins)
}

func TestLoadSettleDelayFloor(t *testing.T) {
	clearEnv(t)
	t.Setenv("SETTLE_DELAY_MS", "100")

	cfg := Load()

	assert.Equal(t, 500*time.Millisecond, cfg.Browser.SettleDelay)
}

func TestLoadIgnoresUnparsableValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("BROWSER_TIMEOUT_SECONDS", "soon")
	t.Setenv("BROWSER_HEADLESS", "kinda")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.Browser.Timeout)
	assert.True(t, cfg.Browser.Headless)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Auth:    AuthConfig{APIKey: "0123456789abcdef0123456789abcdef"},
			Browser: BrowserConfig{Timeout: 30 * time.Second},
		}
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.APIKey = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API_KEY")
	})

	t.Run("short api key", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.APIKey = "short"
		require.Error(t, cfg.Validate())
	})

	t.Run("short jwt secret", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.JWTSecretKey = "too-short"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
	})

	t.Run("jwt secret optional", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("timeout too small", func(t *testing.T) {
		cfg := valid()
		cfg.Browser.Timeout = 0
		require.Error(t, cfg.Validate())
	})
}
