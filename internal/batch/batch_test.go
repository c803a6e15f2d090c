package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/recognizer"
	"github.com/MeKo-Tech/nutrilabel/internal/testutil"
)

func placeholderPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	pl, err := pipeline.NewBuilder().WithEngine(recognizer.EnginePlaceholder).Build()
	require.NoError(t, err)
	return pl
}

func writeLabels(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	label := filepath.Join(dir, "label.png")
	blank := filepath.Join(dir, "blank.png")
	broken := filepath.Join(dir, "broken.png")
	testutil.SaveImage(t, testutil.LabelImage(), label)
	testutil.SaveImage(t, testutil.BlankImage(120, 90, color.White), blank)
	require.NoError(t, os.WriteFile(broken, []byte("not a png"), 0o600))
	return dir, []string{blank, broken, label}
}

func TestProcessBatch_NoImageFiles(t *testing.T) {
	result, err := ProcessBatch(context.Background(), placeholderPipeline(t), []string{t.TempDir()}, &Config{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "no image files found")
}

func TestProcessBatch_InvalidPath(t *testing.T) {
	_, err := ProcessBatch(context.Background(), placeholderPipeline(t), []string{"/nonexistent/file.png"}, &Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestProcessBatch_ContinueOnError(t *testing.T) {
	dir, files := writeLabels(t)
	overlays := filepath.Join(t.TempDir(), "overlays")

	result, err := ProcessBatch(context.Background(), placeholderPipeline(t), []string{dir}, &Config{
		Workers:         2,
		ContinueOnError: true,
		OverlayDir:      overlays,
		Quiet:           true,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, files, result.ImagePaths)
	assert.Equal(t, 2, result.WorkerCount)

	assert.NoError(t, result.Items[0].Err)
	assert.Error(t, result.Items[1].Err)
	assert.NoError(t, result.Items[2].Err)
	assert.Len(t, result.Results(), 2)

	assert.True(t, testutil.FileExists(filepath.Join(overlays, "label_overlay.png")))
	assert.True(t, testutil.FileExists(filepath.Join(overlays, "blank_overlay.png")))
	assert.False(t, testutil.FileExists(filepath.Join(overlays, "broken_overlay.png")))

	var stats bytes.Buffer
	result.PrintStats(&stats)
	assert.Contains(t, stats.String(), "Total images: 3")
	assert.Contains(t, stats.String(), "Failed: 1")
}

func TestProcessBatch_StopOnError(t *testing.T) {
	dir, _ := writeLabels(t)
	_, err := ProcessBatch(context.Background(), placeholderPipeline(t), []string{dir}, &Config{Workers: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.png")
}

func TestResult_SaveResults(t *testing.T) {
	dir, _ := writeLabels(t)
	result, err := ProcessBatch(context.Background(), placeholderPipeline(t), []string{dir}, &Config{ContinueOnError: true})
	require.NoError(t, err)

	var stdout bytes.Buffer
	require.NoError(t, result.SaveResults(&stdout, "json", "", false))
	var agg struct {
		Summary pipeline.BatchSummary `json:"summary"`
		Images  []struct {
			File  string          `json:"file"`
			Error string          `json:"error"`
			Res   json.RawMessage `json:"result"`
		} `json:"images"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &agg))
	assert.Equal(t, 3, agg.Summary.Total)
	assert.Equal(t, 1, agg.Summary.Failed)
	require.Len(t, agg.Images, 3)
	assert.NotEmpty(t, agg.Images[1].Error)
	assert.Empty(t, agg.Images[1].Res)

	out := filepath.Join(t.TempDir(), "out.csv")
	stdout.Reset()
	require.NoError(t, result.SaveResults(&stdout, "csv", out, false))
	assert.Contains(t, stdout.String(), "Results written to")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"), "header plus two successful rows")

	_, err = result.FormatResults("xml")
	assert.Error(t, err)
}

func TestResult_FormatText(t *testing.T) {
	dir, files := writeLabels(t)
	result, err := ProcessBatch(context.Background(), placeholderPipeline(t), []string{dir}, &Config{ContinueOnError: true})
	require.NoError(t, err)

	text, err := result.FormatResults("text")
	require.NoError(t, err)
	for _, f := range files {
		assert.Contains(t, text, "# "+f)
	}
	assert.Contains(t, text, "error: ")
	assert.Contains(t, text, "나트륨 (sodium): 120 mg")

	yml, err := result.FormatResults("yaml")
	require.NoError(t, err)
	assert.Contains(t, yml, "summary:")
	assert.Contains(t, yml, "sodium: 120")
}
