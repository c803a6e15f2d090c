package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/nutrilabel/internal/nutrition"
)

// Output formats accepted by Format.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatText, FormatCSV, FormatYAML}

var errNilResult = errors.New("nil result")

// Format renders results in the named format. A single result is rendered
// on its own; several become a list (JSON, YAML) or one row each (CSV, text).
func Format(format string, results ...*Result) (string, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		if len(results) == 1 {
			return ToJSON(results[0])
		}
		return ToJSONList(results)
	case FormatText:
		parts := make([]string, 0, len(results))
		for _, r := range results {
			s, err := ToPlainText(r)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, "\n\n"), nil
	case FormatCSV:
		return ToCSV(results...)
	case FormatYAML:
		if len(results) == 1 {
			return ToYAML(results[0])
		}
		return toYAML(results)
	default:
		return "", fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// ToJSON serializes a single result to pretty JSON.
func ToJSON(res *Result) (string, error) {
	if res == nil {
		return "", errNilResult
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToJSONList serializes several results to pretty JSON.
func ToJSONList(results []*Result) (string, error) {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToYAML serializes a single result to YAML.
func ToYAML(res *Result) (string, error) {
	if res == nil {
		return "", errNilResult
	}
	return toYAML(res)
}

func toYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToPlainText lists the nutrient fields one per line, followed by a short
// provenance line.
func ToPlainText(res *Result) (string, error) {
	if res == nil {
		return "", errNilResult
	}
	var sb strings.Builder
	if res.Name != "" {
		sb.WriteString(res.Name)
		sb.WriteByte('\n')
	}
	sb.WriteString(RecordText(res.Nutrition))
	fmt.Fprintf(&sb, "\nroi: %s", res.Provenance.ROISource)
	if res.Provenance.ROIBox != nil {
		fmt.Fprintf(&sb, " (%s)", res.Provenance.ROIBox)
	}
	fmt.Fprintf(&sb, ", engine: %s", res.Provenance.Engine)
	if res.Provenance.RecognitionPlaceholder {
		sb.WriteString(" (placeholder)")
	}
	if !res.Success {
		fmt.Fprintf(&sb, "\nrecognition failed: %s", res.Error)
	}
	return sb.String(), nil
}

// RecordText renders a record as "label (key): value unit" lines.
func RecordText(r nutrition.Record) string {
	lines := make([]string, 0, len(nutrition.Fields()))
	for _, e := range r.Entries() {
		v := e.Value.String()
		if e.Value.IsResolved() {
			v += " " + e.Field.Unit()
		}
		lines = append(lines, fmt.Sprintf("%s (%s): %s", e.Field.Label(), e.Field.Key(), v))
	}
	return strings.Join(lines, "\n")
}

// CSVHeader returns the column names written by ToCSV.
func CSVHeader() []string {
	h := []string{"name", "success", "roi_source", "engine", "placeholder"}
	for _, f := range nutrition.Fields() {
		h = append(h, f.Key())
	}
	return h
}

// ToCSV writes one row per result with a header.
func ToCSV(results ...*Result) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader()); err != nil {
		return "", err
	}
	for _, r := range results {
		if r == nil {
			return "", errNilResult
		}
		row := []string{
			r.Name,
			strconv.FormatBool(r.Success),
			r.Provenance.ROISource,
			r.Provenance.Engine,
			strconv.FormatBool(r.Provenance.RecognitionPlaceholder),
		}
		for _, e := range r.Nutrition.Entries() {
			row = append(row, e.Value.String())
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
