package preflight

import (
	"context"

	"podsweep/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Staging directory (always checked)
	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))

	if cfg.Paths.LibraryDir != "" {
		results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	}
	if cfg.Paths.ReviewDir != "" {
		results = append(results, CheckDirectoryAccess("Review directory", cfg.Paths.ReviewDir))
	}

	results = append(results, CheckMediaTools(cfg)...)

	// Transcription has no enable toggle; the pipeline cannot run without it.
	results = append(results, CheckTranscriber(ctx, cfg))

	if cfg.Diarizer.Enabled {
		results = append(results, CheckDiarizer(ctx, cfg))
	}
	if cfg.Embedder.Enabled {
		results = append(results, CheckEmbedder(ctx, cfg))
	}
	if cfg.LLM.Enabled {
		results = append(results, CheckOllama(ctx, cfg))
	}

	return results
}
