package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"textflix/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// TMDB and LLM keys are stubbed so client constructors succeed; Twilio and
// Radarr stay unconfigured unless an option enables them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.WebhookBind = "127.0.0.1:0"
	cfg.TMDB.APIKey = "test-key"
	cfg.LLM.APIKey = "test-key"
	cfg.Monitor.Enabled = false

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create test dir %s: %v", dir, err)
		}
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithRedisAddr points the conversation store at the given Redis address.
func WithRedisAddr(addr string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Conversation.RedisAddr = addr
	}
}

// WithTwilio enables SMS delivery on the test config.
func WithTwilio(accountSID, authToken, fromNumber string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Twilio.AccountSID = accountSID
		cfg.Twilio.AuthToken = authToken
		cfg.Twilio.FromNumber = fromNumber
	}
}

// WithRadarr enables the acquisition integration on the test config.
func WithRadarr(url, apiKey string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Radarr.URL = url
		cfg.Radarr.APIKey = apiKey
	}
}
