package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	LogDir      string `toml:"log_dir"`
	DataDir     string `toml:"data_dir"`
	WebhookBind string `toml:"webhook_bind"`
}

// Twilio contains configuration for the SMS provider.
type Twilio struct {
	AccountSID     string `toml:"account_sid"`
	AuthToken      string `toml:"auth_token"`
	FromNumber     string `toml:"from_number"`
	BaseURL        string `toml:"base_url"`
	WebhookURL     string `toml:"webhook_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Configured reports whether SMS delivery is enabled.
func (t Twilio) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromNumber != ""
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// Radarr contains configuration for the download manager integration.
type Radarr struct {
	URL              string `toml:"url"`
	APIKey           string `toml:"api_key"`
	QualityProfileID int    `toml:"quality_profile_id"`
	RootFolder       string `toml:"root_folder"`
	RequestTimeout   int    `toml:"request_timeout"`
}

// Configured reports whether the acquisition integration is enabled.
func (r Radarr) Configured() bool {
	return r.URL != "" && r.APIKey != ""
}

// LLM contains the chat-completion connection settings used for movie
// extraction and reply synthesis.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Conversation contains configuration for the Redis-backed SMS transcript
// store.
type Conversation struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	HistoryLimit  int    `toml:"history_limit"`
	TTLHours      int    `toml:"ttl_hours"`
}

// Agent contains turn-processing limits.
type Agent struct {
	MaxDispatches  int `toml:"max_dispatches"`
	ReplyCharLimit int `toml:"reply_char_limit"`
}

// Monitor contains configuration for the download monitor loop.
type Monitor struct {
	Enabled      bool `toml:"enabled"`
	PollInterval int  `toml:"poll_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for textflix.
//
// Configuration sections by subsystem:
//   - Paths: directories and webhook bind address
//   - Twilio: SMS delivery
//   - TMDB: movie search and metadata
//   - Radarr: library status and acquisition
//   - LLM: extraction and reply synthesis
//   - Conversation: Redis transcript store
//   - Agent: dispatch loop limits
//   - Monitor: download progress polling
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Twilio       Twilio       `toml:"twilio"`
	TMDB         TMDB         `toml:"tmdb"`
	Radarr       Radarr       `toml:"radarr"`
	LLM          LLM          `toml:"llm"`
	Conversation Conversation `toml:"conversation"`
	Agent        Agent        `toml:"agent"`
	Monitor      Monitor      `toml:"monitor"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/textflix/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("textflix.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequestsDBPath returns the SQLite path used by the acquisition request store.
func (c *Config) RequestsDBPath() string {
	return filepath.Join(c.Paths.DataDir, "requests.db")
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	c.Paths.WebhookBind = strings.TrimSpace(c.Paths.WebhookBind)
	if c.Paths.WebhookBind == "" {
		c.Paths.WebhookBind = defaultWebhookBind
	}

	c.TMDB.APIKey = envFallback(c.TMDB.APIKey, "TMDB_API_KEY")
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}

	c.Twilio.AccountSID = envFallback(c.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	c.Twilio.AuthToken = envFallback(c.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	c.Twilio.FromNumber = strings.TrimSpace(c.Twilio.FromNumber)
	c.Twilio.BaseURL = strings.TrimSpace(c.Twilio.BaseURL)
	if c.Twilio.BaseURL == "" {
		c.Twilio.BaseURL = defaultTwilioBaseURL
	}

	c.Radarr.APIKey = envFallback(c.Radarr.APIKey, "RADARR_API_KEY")
	c.Radarr.URL = strings.TrimRight(strings.TrimSpace(c.Radarr.URL), "/")

	c.LLM.APIKey = envFallback(c.LLM.APIKey, "LLM_API_KEY")
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}

	c.Conversation.RedisAddr = strings.TrimSpace(c.Conversation.RedisAddr)
	if c.Conversation.RedisAddr == "" {
		c.Conversation.RedisAddr = defaultRedisAddr
	}
	if c.Conversation.HistoryLimit <= 0 {
		c.Conversation.HistoryLimit = defaultHistoryLimit
	}
	if c.Conversation.TTLHours <= 0 {
		c.Conversation.TTLHours = defaultConversationTTLHours
	}

	if c.Agent.MaxDispatches <= 0 {
		c.Agent.MaxDispatches = defaultMaxDispatches
	}
	if c.Agent.ReplyCharLimit <= 0 {
		c.Agent.ReplyCharLimit = defaultReplyCharLimit
	}

	if c.Monitor.PollInterval <= 0 {
		c.Monitor.PollInterval = defaultMonitorPollInterval
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
