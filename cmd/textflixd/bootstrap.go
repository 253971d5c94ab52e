package main

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"textflix/internal/agent"
	"textflix/internal/config"
	"textflix/internal/convstore"
	"textflix/internal/engine"
	"textflix/internal/monitor"
	"textflix/internal/notifications"
	"textflix/internal/requests"
	"textflix/internal/services/llm"
	"textflix/internal/services/radarr"
	"textflix/internal/services/tmdb"
	"textflix/internal/webhook"
)

// app holds the daemon's long-lived components.
type app struct {
	webhook *webhook.Server
	monitor *monitor.Monitor

	conversations *convstore.Store
	requests      *requests.Store
}

func (a *app) Close() {
	if a.conversations != nil {
		_ = a.conversations.Close()
	}
	if a.requests != nil {
		_ = a.requests.Close()
	}
}

func bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	searcher, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		return nil, fmt.Errorf("tmdb client: %w", err)
	}

	library, err := buildLibrary(cfg)
	if err != nil {
		return nil, fmt.Errorf("radarr client: %w", err)
	}

	conversations, err := convstore.Open(ctx,
		cfg.Conversation.RedisAddr,
		cfg.Conversation.RedisPassword,
		cfg.Conversation.RedisDB,
		cfg.Conversation.HistoryLimit,
		time.Duration(cfg.Conversation.TTLHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	requestStore, err := requests.Open(cfg)
	if err != nil {
		_ = conversations.Close()
		return nil, err
	}

	notifier, err := notifications.NewService(cfg, logger)
	if err != nil {
		_ = conversations.Close()
		_ = requestStore.Close()
		return nil, fmt.Errorf("notifications: %w", err)
	}

	ag, err := agent.New(agent.Deps{
		Extractor:              engine.NewLLMExtractor(llmClient, logger),
		Search:                 searcher,
		Library:                library,
		Requests:               requestStore,
		Composer:               agent.NewLLMReplyComposer(llmClient),
		Notifier:               notifier,
		Store:                  conversations,
		RadarrQualityProfileID: int64(cfg.Radarr.QualityProfileID),
		RadarrRootFolder:       cfg.Radarr.RootFolder,
	}, cfg.Agent.MaxDispatches, logger)
	if err != nil {
		_ = conversations.Close()
		_ = requestStore.Close()
		return nil, err
	}

	hook, err := webhook.New(ag, cfg.Twilio.AuthToken, cfg.Twilio.WebhookURL, logger)
	if err != nil {
		_ = conversations.Close()
		_ = requestStore.Close()
		return nil, err
	}

	var mon *monitor.Monitor
	if cfg.Monitor.Enabled && library != nil {
		mon, err = monitor.New(requestStore, library, notifier,
			time.Duration(cfg.Monitor.PollInterval)*time.Second, logger)
		if err != nil {
			_ = conversations.Close()
			_ = requestStore.Close()
			return nil, err
		}
	}

	return &app{
		webhook:       hook,
		monitor:       mon,
		conversations: conversations,
		requests:      requestStore,
	}, nil
}

// buildLibrary returns a nil Service when Radarr is not configured so the
// agent reports untracked status instead of failing lookups.
func buildLibrary(cfg *config.Config) (radarr.Service, error) {
	if !cfg.Radarr.Configured() {
		return nil, nil
	}
	return radarr.New(cfg.Radarr.URL, cfg.Radarr.APIKey)
}
