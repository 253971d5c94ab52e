package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"textflix/internal/requests"
)

func newRequestsCommand(ctx *commandContext) *cobra.Command {
	var activeOnly bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List movie requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRequestStore(func(store *requests.Store) error {
				var (
					items []requests.Request
					err   error
				)
				if activeOnly {
					items, err = store.Active(cmd.Context())
				} else {
					items, err = store.List(cmd.Context())
				}
				if err != nil {
					return err
				}
				if asJSON {
					encoder := json.NewEncoder(cmd.OutOrStdout())
					encoder.SetIndent("", "  ")
					return encoder.Encode(items)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No requests found")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRequestsTable(items))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Show only requests still being tracked")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderRequestsTable(items []requests.Request) string {
	statusCaser := cases.Title(language.English)

	rows := make([][]string, 0, len(items))
	for _, req := range items {
		rows = append(rows, []string{
			strconv.FormatInt(req.ID, 10),
			req.Title,
			yearColumn(req.Year),
			statusCaser.String(string(req.Status)),
			req.Phone,
			req.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	return renderTable(
		[]string{"ID", "Title", "Year", "Status", "Requested By", "Requested At"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func yearColumn(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}
