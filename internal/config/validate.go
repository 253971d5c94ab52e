package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateTwilio(); err != nil {
		return err
	}
	if err := c.validateRadarr(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateAgent(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/textflix/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'textflix config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateTwilio() error {
	// Twilio is optional: without it textflix logs replies instead of sending.
	if c.Twilio.AccountSID == "" && c.Twilio.AuthToken == "" && c.Twilio.FromNumber == "" {
		return nil
	}
	if c.Twilio.AccountSID == "" {
		return errors.New("twilio.account_sid must be set when twilio is configured")
	}
	if c.Twilio.AuthToken == "" {
		return errors.New("twilio.auth_token must be set when twilio is configured")
	}
	if !strings.HasPrefix(c.Twilio.FromNumber, "+") {
		return fmt.Errorf("twilio.from_number must be E.164 formatted, got %q", c.Twilio.FromNumber)
	}
	return nil
}

func (c *Config) validateRadarr() error {
	if c.Radarr.URL == "" {
		return nil
	}
	if c.Radarr.APIKey == "" {
		return errors.New("radarr.api_key must be set when radarr.url is configured")
	}
	if c.Radarr.QualityProfileID <= 0 {
		return errors.New("radarr.quality_profile_id must be positive")
	}
	if strings.TrimSpace(c.Radarr.RootFolder) == "" {
		return errors.New("radarr.root_folder must be set when radarr.url is configured")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required. Set LLM_API_KEY env var or add it to the [llm] config section")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	return nil
}

func (c *Config) validateAgent() error {
	if c.Agent.MaxDispatches < 1 || c.Agent.MaxDispatches > 10 {
		return errors.New("agent.max_dispatches must be between 1 and 10")
	}
	if c.Agent.ReplyCharLimit < 40 {
		return errors.New("agent.reply_char_limit must be at least 40")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
