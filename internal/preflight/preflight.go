package preflight

import (
	"context"

	"prunarr/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every readiness check for the given config in a fixed
// order: output directories, the request list, then Radarr.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Results directory", cfg.Paths.ResultsDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckRequestsFile(cfg.Paths.RequestsFile),
		CheckRadarr(ctx, cfg),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
