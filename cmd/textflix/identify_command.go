package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"textflix/internal/conversation"
	"textflix/internal/engine"
	"textflix/internal/logging"
	"textflix/internal/services/llm"
	"textflix/internal/services/tmdb"
)

// newIdentifyCommand runs the extraction and matching pipeline over an ad-hoc
// transcript so prompt or matcher changes can be checked without sending SMS.
func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var skipSearch bool

	cmd := &cobra.Command{
		Use:   "identify <message>...",
		Short: "Resolve a movie identity from message text",
		Long: `Runs the movie identification pipeline over the given messages.

Each argument is one message. Arguments prefixed with "USER: " or "SYSTEM: "
keep their role; bare arguments are treated as user messages.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			conv, err := parseIdentifyArgs(args)
			if err != nil {
				return err
			}

			client := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				Referer:        cfg.LLM.Referer,
				Title:          cfg.LLM.Title,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			})
			extractor := engine.NewLLMExtractor(client, logging.NewNop())

			identity, err := engine.ResolveIdentity(cmd.Context(), extractor, conv)
			if err != nil {
				return fmt.Errorf("identify: %w", err)
			}

			out := cmd.OutOrStdout()
			if !identity.Identified() {
				fmt.Fprintln(out, "No movie identified")
				return nil
			}
			fmt.Fprintf(out, "Identity:   %s\n", identity.Query())
			fmt.Fprintf(out, "Confidence: %s\n", identity.Confidence)

			if skipSearch {
				return nil
			}

			searcher, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
			if err != nil {
				return err
			}
			opts := tmdb.SearchOptions{}
			if identity.Year > 0 {
				opts.Year = identity.Year
			}
			resp, err := searcher.SearchMovieWithOptions(cmd.Context(), identity.Title, opts)
			if err != nil {
				return fmt.Errorf("tmdb search: %w", err)
			}

			candidates := make([]engine.SearchCandidate, 0, len(resp.Results))
			rows := make([][]string, 0, len(resp.Results))
			for rank, res := range resp.Results {
				candidate := engine.SearchCandidate{
					Title:  res.Title,
					Year:   res.Year(),
					TMDBID: res.ID,
					Rank:   rank,
				}
				candidates = append(candidates, candidate)
				rows = append(rows, []string{
					strconv.Itoa(rank),
					candidate.Title,
					yearColumn(candidate.Year),
					strconv.FormatInt(candidate.TMDBID, 10),
				})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"Rank", "Title", "Year", "TMDB ID"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
				))
			}

			match, ok := engine.Disambiguate(identity, candidates)
			if !ok {
				fmt.Fprintln(out, "No catalog match")
				return nil
			}
			fmt.Fprintf(out, "Match: %s (%d) [tmdb %d]\n", match.Title, match.Year, match.TMDBID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipSearch, "no-search", false, "Skip the TMDB search step")
	return cmd
}

func parseIdentifyArgs(args []string) (conversation.Conversation, error) {
	lines := make([]string, 0, len(args))
	for _, arg := range args {
		trimmed := strings.TrimSpace(arg)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "USER: ") && !strings.HasPrefix(trimmed, "SYSTEM: ") {
			trimmed = "USER: " + trimmed
		}
		lines = append(lines, trimmed)
	}
	return conversation.ParseTranscript(lines)
}
