package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/nutrilabel/internal/pdf"
	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
)

func newPDFCmd(a *app) *cobra.Command {
	var (
		pf    pipelineFlags
		pages string
	)
	cmd := &cobra.Command{
		Use:   "pdf <file>",
		Short: "Read nutrient values from label photos embedded in a PDF",
		Long: `Extract the images embedded in a PDF and run each through the label
pipeline. Pages without images are skipped.

Examples:
  nutrilabel pdf catalogue.pdf
  nutrilabel pdf catalogue.pdf --pages 1-3,7 --format text`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := stringFlag(cmd, "format", a.cfg.Output.Format)
			pl, err := a.buildPipeline(cmd, &pf)
			if err != nil {
				return err
			}
			doc, err := pdf.ProcessFile(cmd.Context(), pl, args[0], pages)
			if err != nil {
				return err
			}
			out, err := formatDocument(doc, format)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, stringFlag(cmd, "output", a.cfg.Output.File))
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&pages, "pages", "", "page range, e.g. 1-5 or 1,3,5 (default: all)")
	cmd.Flags().StringP("format", "f", "json", "output format (json, text, csv, yaml)")
	cmd.Flags().StringP("output", "o", "", "write output to file instead of stdout")
	return cmd
}

func formatDocument(doc *pdf.DocumentResult, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", pipeline.FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		return string(b), err
	case pipeline.FormatYAML:
		b, err := yaml.Marshal(doc)
		return string(b), err
	case pipeline.FormatCSV:
		return pipeline.ToCSV(doc.Results()...)
	case pipeline.FormatText:
		var sb strings.Builder
		fmt.Fprintf(&sb, "File: %s\nTotal Pages: %d\n", doc.Filename, doc.TotalPages)
		for _, page := range doc.Pages {
			for _, img := range page.Images {
				fmt.Fprintf(&sb, "\n# page %d image %d\n", page.PageNumber, img.ImageIndex)
				if img.Result == nil {
					fmt.Fprintf(&sb, "error: %s\n", img.Error)
					continue
				}
				sb.WriteString(pipeline.RecordText(img.Result.Nutrition))
				sb.WriteString("\n")
			}
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}
