package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/nutrilabel/internal/nutrition"
	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
)

func newParseCmd(a *app) *cobra.Command {
	var enhanceText bool
	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse nutrient values from already recognized text",
		Long: `Run only text enhancement and value parsing on recognized label text
read from a file, or from stdin when the argument is "-" or missing.

Examples:
  nutrilabel parse ocr.txt
  echo "나트륨 120mg 단백질 5g" | nutrilabel parse --format text
  nutrilabel parse ocr.txt --enhance`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read text: %w", err)
			}
			text := strings.TrimSpace(string(data))
			if text == "" {
				return errors.New("no text to parse")
			}

			record, cleaned := pipeline.ProcessText(text, enhanceText)
			out, err := formatRecord(record, cleaned, stringFlag(cmd, "format", a.cfg.Output.Format))
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, "")
		},
	}
	cmd.Flags().BoolVar(&enhanceText, "enhance", false, "apply text enhancement before parsing")
	cmd.Flags().StringP("format", "f", "json", "output format (json, text, csv, yaml)")
	return cmd
}

// formatRecord renders a parse-only record through the same formatters as a
// full pipeline result.
func formatRecord(record nutrition.Record, text, format string) (string, error) {
	res := &pipeline.Result{
		Success:    true,
		Nutrition:  record,
		Text:       text,
		Provenance: pipeline.Provenance{ROISource: pipeline.SourceNone},
	}
	if strings.EqualFold(format, pipeline.FormatText) {
		return pipeline.RecordText(record), nil
	}
	return pipeline.Format(format, res)
}
