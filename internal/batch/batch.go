// Package batch runs the label pipeline over many image files.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
)

// ProcessBatch discovers images under paths and runs them through pl.
func ProcessBatch(ctx context.Context, pl *pipeline.Pipeline, paths []string, config *Config) (*Result, error) {
	files, err := discoverImageFiles(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}

	inputs, err := loadInputs(files)
	if err != nil {
		return nil, err
	}

	par := pl.Config().Parallel
	if config.Workers > 0 {
		par.MaxWorkers = config.Workers
	}
	par.ContinueOnError = config.ContinueOnError
	if config.ShowProgress && !config.Quiet {
		par.ProgressCallback = pipeline.NewConsoleProgressCallback(os.Stderr, "Processing: ")
	}

	start := time.Now()
	items, err := pl.ProcessBatchWith(ctx, inputs, par)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("batch processing failed: %w", err)
	}

	if config.OverlayDir != "" {
		saveOverlays(inputs, items, config)
	}

	return &Result{
		Items:       items,
		ImagePaths:  files,
		Duration:    duration,
		WorkerCount: par.MaxWorkers,
	}, nil
}
