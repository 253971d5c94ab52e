package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"textflix/internal/convstore"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "history <phone-number>",
		Short: "Show or clear a stored conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number := strings.TrimSpace(args[0])
			if number == "" {
				return errors.New("phone number required")
			}
			return ctx.withConversationStore(cmd.Context(), func(store *convstore.Store) error {
				if clear {
					if err := store.Clear(cmd.Context(), number); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared conversation for %s\n", number)
					return nil
				}

				conv, err := store.History(cmd.Context(), number)
				if err != nil {
					return err
				}
				if conv.Len() == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No conversation stored for %s\n", number)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), conv.Render())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Delete the stored conversation")
	return cmd
}
