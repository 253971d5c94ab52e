package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"textflix/internal/config"
	"textflix/internal/convstore"
	"textflix/internal/requests"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) withRequestStore(fn func(*requests.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := requests.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) withConversationStore(ctx context.Context, fn func(*convstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := convstore.Open(ctx,
		cfg.Conversation.RedisAddr,
		cfg.Conversation.RedisPassword,
		cfg.Conversation.RedisDB,
		cfg.Conversation.HistoryLimit,
		time.Duration(cfg.Conversation.TTLHours)*time.Hour)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
