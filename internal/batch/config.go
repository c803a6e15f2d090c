package batch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
)

// Config holds all configuration for batch processing.
type Config struct {
	// Output
	Format       string
	OutputFile   string
	OverlayDir   string
	OverlayColor string

	// Parallel processing
	Workers         int
	ContinueOnError bool

	// File discovery
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress
	ShowProgress bool
	Quiet        bool
}

// Result holds the result of batch processing.
type Result struct {
	Items       []pipeline.BatchItem
	ImagePaths  []string
	Duration    time.Duration
	WorkerCount int
}

// Results returns the successful pipeline results in input order.
func (r *Result) Results() []*pipeline.Result {
	out := make([]*pipeline.Result, 0, len(r.Items))
	for _, it := range r.Items {
		if it.Result != nil {
			out = append(out, it.Result)
		}
	}
	return out
}

// FormatResults formats the batch processing results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r, format)
}

// SaveResults writes the formatted results to outputFile, or to w when no
// file is given.
func (r *Result) SaveResults(w io.Writer, format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(w, "Results written to %s\n", outputFile)
		}
		return nil
	}
	_, _ = fmt.Fprintln(w, output)
	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer) {
	s := pipeline.Summarize(r.Items)
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total images: %d\n", s.Total)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "  Recognized: %d (placeholder: %d)\n", s.Recognized, s.Placeholder)
	_, _ = fmt.Fprintf(w, "  Resolved fields: %d\n", s.Resolved)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	if s.Total > 0 && r.Duration > 0 {
		_, _ = fmt.Fprintf(w, "  Throughput: %.1f images/sec\n", float64(s.Total)/r.Duration.Seconds())
	}
}
