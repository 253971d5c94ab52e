package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"textflix/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigValidateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolvedPath, exists, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !exists {
				fmt.Fprintf(cmd.OutOrStdout(), "No config file found at %s; defaults are valid\n", resolvedPath)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration at %s is valid\n", resolvedPath)
			reportIntegrations(cmd, cfg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	return cmd
}

func reportIntegrations(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	if cfg.Twilio.Configured() {
		fmt.Fprintln(out, "  twilio: configured")
	} else {
		fmt.Fprintln(out, "  twilio: not configured (replies will be logged only)")
	}
	if cfg.Radarr.Configured() {
		fmt.Fprintln(out, "  radarr: configured")
	} else {
		fmt.Fprintln(out, "  radarr: not configured (no downloads will be requested)")
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample configuration written to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "path", "", "Destination for the sample config")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing config file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "data_dir:       %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "log_dir:        %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "webhook_bind:   %s\n", cfg.Paths.WebhookBind)
			fmt.Fprintf(out, "redis_addr:     %s\n", cfg.Conversation.RedisAddr)
			fmt.Fprintf(out, "history_limit:  %d\n", cfg.Conversation.HistoryLimit)
			fmt.Fprintf(out, "llm_model:      %s\n", cfg.LLM.Model)
			fmt.Fprintf(out, "max_dispatches: %d\n", cfg.Agent.MaxDispatches)
			reportIntegrations(cmd, cfg)
			return nil
		},
	}
}
