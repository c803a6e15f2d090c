package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/nutrilabel/internal/batch"
	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/roi"
)

func newImageCmd(a *app) *cobra.Command {
	var (
		pf   pipelineFlags
		bbox string
	)
	cmd := &cobra.Command{
		Use:   "image <files...>",
		Short: "Read nutrient values from label photos",
		Long: `Run the full label pipeline on one or more image files.

Supported formats: JPEG, PNG, GIF, BMP, TIFF, WEBP

Examples:
  nutrilabel image label.jpg
  nutrilabel image a.png b.png --format csv
  nutrilabel image label.jpg --bbox 120,80,400,520
  nutrilabel image label.jpg --no-roi --engine gemini`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			format := stringFlag(cmd, "format", cfg.Output.Format)
			outputFile := stringFlag(cmd, "output", cfg.Output.File)
			overlayDir := stringFlag(cmd, "overlay-dir", cfg.Output.OverlayDir)

			box, err := parseBBox(bbox)
			if err != nil {
				return err
			}

			pl, err := a.buildPipeline(cmd, &pf)
			if err != nil {
				return err
			}

			inputs := make([]pipeline.Input, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path) //nolint:gosec // G304: user supplied path
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				inputs = append(inputs, pipeline.Input{Name: path, Data: data, BBox: box})
			}

			par := pl.Config().Parallel
			par.ContinueOnError = true
			items, err := pl.ProcessBatchWith(cmd.Context(), inputs, par)
			if err != nil {
				return err
			}

			var results []*pipeline.Result
			var failed int
			for _, it := range items {
				if it.Err != nil {
					failed++
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", it.Name, it.Err)
					continue
				}
				results = append(results, it.Result)
				if overlayDir != "" {
					if _, err := batch.SaveOverlay(inputs[it.Index].Data, it.Result, overlayDir, it.Name,
						cfg.Output.OverlayBoxColor); err != nil {
						_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "overlay for %s: %v\n", it.Name, err)
					}
				}
			}
			if len(results) == 0 {
				return errors.New("no image could be processed")
			}

			out, err := pipeline.Format(format, results...)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, out, outputFile); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(items))
			}
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringP("format", "f", "json", "output format (json, text, csv, yaml)")
	cmd.Flags().StringP("output", "o", "", "write output to file instead of stdout")
	cmd.Flags().String("overlay-dir", "", "directory for PNG overlays of the chosen region")
	cmd.Flags().StringVar(&bbox, "bbox", "", "label region as x,y,width,height (skips detection)")
	return cmd
}

// parseBBox parses "x,y,w,h". An empty string yields nil.
func parseBBox(s string) (*roi.BoundingBox, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid --bbox %q: want x,y,width,height", s)
	}
	var vals [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid --bbox %q: %w", s, err)
		}
		vals[i] = n
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return nil, fmt.Errorf("invalid --bbox %q: width and height must be positive", s)
	}
	return &roi.BoundingBox{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

func writeOutput(cmd *cobra.Command, out, outputFile string) error {
	if outputFile == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(out+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
