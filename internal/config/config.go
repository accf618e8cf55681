package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// defaultServerURL is the streaming server handed back with standard orders
// when IPTV_SERVER_URL is not set.
const defaultServerURL = "http://ky-tv.cc:8080"

// minSettleDelay is the floor for the post-submit settling delay; the
// confirmation page needs a non-zero window to stabilize.
const minSettleDelay = 500 * time.Millisecond

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Provider  ProviderConfig
	Streaming StreamingConfig
	Browser   BrowserConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type AuthConfig struct {
	APIKey       string
	JWTSecretKey string
}

// ProviderConfig points at the portal the purchase flow drives. BaseURL and
// the login pair are checked per order, not at startup, so the service can
// boot before the provider account is set up.
type ProviderConfig struct {
	BaseURL  string
	Username string
	Password string
}

// StreamingConfig feeds the delivery payload of completed orders.
type StreamingConfig struct {
	ServerURL     string
	BackupServers string
	MAGPortalURL  string
}

type BrowserConfig struct {
	Headless    bool
	Timeout     time.Duration
	SettleDelay time.Duration
	MaxSessions int
	AutoInstall bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() *Config {
	settle := time.Duration(getEnvInt("SETTLE_DELAY_MS", 2000)) * time.Millisecond
	if settle < minSettleDelay {
		settle = minSettleDelay
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Mode: getEnv("GIN_MODE", "release"),
		},
		Auth: AuthConfig{
			APIKey:       getEnv("API_KEY", ""),
			JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
		},
		Provider: ProviderConfig{
			BaseURL:  getEnv("IPTV_PROVIDER_URL", ""),
			Username: getEnv("IPTV_PROVIDER_USERNAME", ""),
			Password: getEnv("IPTV_PROVIDER_PASSWORD", ""),
		},
		Streaming: StreamingConfig{
			ServerURL:     getEnv("IPTV_SERVER_URL", defaultServerURL),
			BackupServers: getEnv("IPTV_BACKUP_SERVERS", ""),
			MAGPortalURL:  getEnv("MAG_PORTAL_URL", ""),
		},
		Browser: BrowserConfig{
			Headless:    getEnvBool("BROWSER_HEADLESS", true),
			Timeout:     time.Duration(getEnvInt("BROWSER_TIMEOUT_SECONDS", 30)) * time.Second,
			SettleDelay: settle,
			MaxSessions: getEnvInt("MAX_CONCURRENT_SESSIONS", 2),
			AutoInstall: getEnvBool("BROWSER_AUTO_INSTALL", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	// Secrets and provider credentials stay out of the log.
	log.Printf("[config] Loaded: port=%s provider=%s server=%s headless=%v sessions=%d",
		cfg.Server.Port, cfg.Provider.BaseURL, cfg.Streaming.ServerURL,
		cfg.Browser.Headless, cfg.Browser.MaxSessions)

	return cfg
}

// Validate rejects startup misconfiguration. Only the HTTP layer's own
// secrets are fatal here; purchase-flow settings surface per order instead.
func (c *Config) Validate() error {
	if c.Auth.APIKey == "" {
		return fmt.Errorf("API_KEY must be set")
	}
	if len(c.Auth.APIKey) < 16 {
		return fmt.Errorf("API_KEY must be at least 16 characters long")
	}
	if c.Auth.JWTSecretKey != "" && len(c.Auth.JWTSecretKey) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters long when set")
	}
	if c.Browser.Timeout < time.Second {
		return fmt.Errorf("BROWSER_TIMEOUT_SECONDS must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
