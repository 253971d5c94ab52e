package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"textflix/internal/logging"
	"textflix/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify <phone-number>",
		Short: "Send a test SMS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			number := strings.TrimSpace(args[0])
			if number == "" {
				return errors.New("phone number required")
			}
			if !cfg.Twilio.Configured() {
				return errors.New("twilio is not configured; set account_sid, auth_token, and from_number")
			}

			service, err := notifications.NewService(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			if err := service.TestNotification(cmd.Context(), number); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent to %s\n", number)
			return nil
		},
	}
}
