package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ParallelConfig holds configuration for batch processing.
type ParallelConfig struct {
	MaxWorkers       int              // concurrent inputs (0 = runtime.NumCPU())
	ContinueOnError  bool             // record per-input errors instead of aborting
	ProgressCallback ProgressCallback // optional progress reporting
}

// DefaultParallelConfig returns sensible defaults for parallel processing.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		MaxWorkers:      runtime.NumCPU(),
		ContinueOnError: true,
	}
}

// BatchItem is the outcome of one batch input.
type BatchItem struct {
	Index  int
	Name   string
	Result *Result
	Err    error
}

// ProcessBatch runs inputs concurrently and returns one item per input in
// input order. Without ContinueOnError the first failure cancels the rest
// and is returned as the error.
func (p *Pipeline) ProcessBatch(ctx context.Context, inputs []Input) ([]BatchItem, error) {
	return p.ProcessBatchWith(ctx, inputs, p.cfg.Parallel)
}

// ProcessBatchWith is ProcessBatch with an explicit parallel configuration.
func (p *Pipeline) ProcessBatchWith(ctx context.Context, inputs []Input, cfg ParallelConfig) ([]BatchItem, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no inputs provided")
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	progress := cfg.ProgressCallback
	if progress == nil {
		progress = NoOpProgressCallback{}
	}
	progress.OnStart(len(inputs))
	defer progress.OnComplete()

	items := make([]BatchItem, len(inputs))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxWorkers)
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := p.Process(gctx, in)
			items[i] = BatchItem{Index: i, Name: in.Name, Result: res, Err: err}

			mu.Lock()
			done++
			current := done
			mu.Unlock()
			if err != nil {
				progress.OnError(i, err)
			}
			progress.OnProgress(current, len(inputs))

			if err != nil && !cfg.ContinueOnError {
				return fmt.Errorf("input %d (%s): %w", i, in.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return items, err
	}
	if err := ctx.Err(); err != nil {
		return items, err
	}
	return items, nil
}

// BatchSummary counts the outcomes of a batch.
type BatchSummary struct {
	Total       int `json:"total" yaml:"total"`
	Failed      int `json:"failed" yaml:"failed"`
	Recognized  int `json:"recognized" yaml:"recognized"`
	Placeholder int `json:"placeholder" yaml:"placeholder"`
	Resolved    int `json:"resolved_fields" yaml:"resolved_fields"`
}

// Summarize aggregates batch items.
func Summarize(items []BatchItem) BatchSummary {
	s := BatchSummary{Total: len(items)}
	for _, it := range items {
		if it.Err != nil || it.Result == nil {
			s.Failed++
			continue
		}
		if it.Result.Success {
			s.Recognized++
		}
		if it.Result.Provenance.RecognitionPlaceholder {
			s.Placeholder++
		}
		s.Resolved += it.Result.Resolved()
	}
	return s
}
