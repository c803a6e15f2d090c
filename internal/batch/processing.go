package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/utils"
)

// loadInputs reads every file into a pipeline input. Files are decoded by
// the pipeline so that undecodable ones surface as per-item errors.
func loadInputs(paths []string) ([]pipeline.Input, error) {
	inputs := make([]pipeline.Input, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // G304: paths come from discovery over user arguments
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		inputs[i] = pipeline.Input{Name: path, Data: data}
	}
	return inputs, nil
}

// overlayPath returns where the overlay for imagePath is written.
func overlayPath(overlayDir, imagePath string) string {
	base := filepath.Base(imagePath)
	return filepath.Join(overlayDir, strings.TrimSuffix(base, filepath.Ext(base))+"_overlay.png")
}

// SaveOverlay renders the ROI overlay of res over the original image data and
// writes it as PNG into overlayDir.
func SaveOverlay(data []byte, res *pipeline.Result, overlayDir, name, boxColor string) (string, error) {
	img, _, err := utils.DecodeBytes(data)
	if err != nil {
		return "", err
	}
	if boxColor == "" {
		boxColor = pipeline.DefaultBoxColor
	}
	box, err := pipeline.ParseColor(boxColor)
	if err != nil {
		return "", err
	}
	region, _ := pipeline.ParseColor(pipeline.DefaultRegionColor)

	ov := pipeline.RenderOverlay(img, res, box, region)
	png, err := utils.EncodePNG(ov)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(overlayDir, 0o750); err != nil {
		return "", fmt.Errorf("create overlay dir: %w", err)
	}
	out := overlayPath(overlayDir, name)
	if err := os.WriteFile(out, png, 0o600); err != nil {
		return "", fmt.Errorf("write overlay: %w", err)
	}
	return out, nil
}

// saveOverlays writes overlays for every successful item. Failures are logged
// and do not fail the batch.
func saveOverlays(inputs []pipeline.Input, items []pipeline.BatchItem, cfg *Config) {
	for i, it := range items {
		if it.Result == nil || it.Result.Provenance.ROIBox == nil {
			continue
		}
		if _, err := SaveOverlay(inputs[i].Data, it.Result, cfg.OverlayDir, it.Name, cfg.OverlayColor); err != nil {
			slog.Warn("failed to write overlay", "file", it.Name, "error", err)
		}
	}
}
