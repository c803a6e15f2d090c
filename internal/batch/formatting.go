package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
)

// fileResult is one entry of the aggregate JSON and YAML output.
type fileResult struct {
	File   string           `json:"file" yaml:"file"`
	Result *pipeline.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string           `json:"error,omitempty" yaml:"error,omitempty"`
}

type aggregate struct {
	Summary pipeline.BatchSummary `json:"summary" yaml:"summary"`
	Images  []fileResult          `json:"images" yaml:"images"`
}

func newAggregate(r *Result) aggregate {
	agg := aggregate{Summary: pipeline.Summarize(r.Items), Images: make([]fileResult, len(r.Items))}
	for i, it := range r.Items {
		fr := fileResult{File: it.Name, Result: it.Result}
		if it.Err != nil {
			fr.Error = it.Err.Error()
		}
		agg.Images[i] = fr
	}
	return agg
}

// formatBatchResults formats the batch processing results in the specified format.
func formatBatchResults(r *Result, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", pipeline.FormatJSON:
		return formatJSON(r)
	case pipeline.FormatYAML:
		return formatYAML(r)
	case pipeline.FormatCSV:
		return pipeline.ToCSV(r.Results()...)
	case pipeline.FormatText:
		return formatText(r)
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

func formatJSON(r *Result) (string, error) {
	b, err := json.MarshalIndent(newAggregate(r), "", "  ")
	return string(b), err
}

func formatYAML(r *Result) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(newAggregate(r)); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatText writes a "# file" header followed by the record of each image.
func formatText(r *Result) (string, error) {
	var out strings.Builder
	for i, it := range r.Items {
		if i > 0 {
			out.WriteString("\n\n")
		}
		fmt.Fprintf(&out, "# %s\n", it.Name)
		if it.Err != nil {
			fmt.Fprintf(&out, "error: %v", it.Err)
			continue
		}
		out.WriteString(pipeline.RecordText(it.Result.Nutrition))
	}
	return out.String(), nil
}
