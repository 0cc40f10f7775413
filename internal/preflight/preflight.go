package preflight

import (
	"context"

	"reelmux/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Optional collaborators are only checked when enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}

	if cache := cfg.Extract.Cache; cache.Enabled {
		results = append(results, CheckRedis(ctx, cache.RedisAddr, cache.RedisPassword, cache.RedisDB))
	}

	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
