package preflight

import (
	"context"

	"textflix/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks for optional integrations run only when the integration is
// configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckRedis(ctx, cfg),
	}

	if cfg.LLM.APIKey != "" {
		results = append(results, CheckLLM(ctx, cfg))
	}
	if cfg.TMDB.APIKey != "" {
		results = append(results, CheckTMDB(ctx, cfg))
	}
	if cfg.Radarr.Configured() {
		results = append(results, CheckRadarr(ctx, cfg))
	}

	return results
}

// Failed filters results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
