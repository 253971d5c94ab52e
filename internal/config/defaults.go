package config

const (
	defaultLogDir               = "~/.local/share/textflix/logs"
	defaultDataDir              = "~/.local/share/textflix/data"
	defaultWebhookBind          = "127.0.0.1:8754"
	defaultTMDBBaseURL          = "https://api.themoviedb.org/3"
	defaultTMDBLanguage         = "en-US"
	defaultTwilioBaseURL        = "https://api.twilio.com"
	defaultLLMBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel             = "google/gemini-3-flash-preview"
	defaultLLMReferer           = "https://github.com/textflix/textflix"
	defaultLLMTitle             = "Textflix Movie Agent"
	defaultLLMTimeoutSeconds    = 30
	defaultRedisAddr            = "127.0.0.1:6379"
	defaultHistoryLimit         = 10
	defaultConversationTTLHours = 72
	defaultMaxDispatches        = 4
	defaultReplyCharLimit       = 160
	defaultMonitorPollInterval  = 30
	defaultRadarrTimeout        = 15
	defaultTwilioTimeout        = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:      defaultLogDir,
			DataDir:     defaultDataDir,
			WebhookBind: defaultWebhookBind,
		},
		Twilio: Twilio{
			BaseURL:        defaultTwilioBaseURL,
			RequestTimeout: defaultTwilioTimeout,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Radarr: Radarr{
			QualityProfileID: 1,
			RootFolder:       "/movies",
			RequestTimeout:   defaultRadarrTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Conversation: Conversation{
			RedisAddr:    defaultRedisAddr,
			HistoryLimit: defaultHistoryLimit,
			TTLHours:     defaultConversationTTLHours,
		},
		Agent: Agent{
			MaxDispatches:  defaultMaxDispatches,
			ReplyCharLimit: defaultReplyCharLimit,
		},
		Monitor: Monitor{
			Enabled:      true,
			PollInterval: defaultMonitorPollInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
