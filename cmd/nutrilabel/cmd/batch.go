package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/nutrilabel/internal/batch"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		pf       pipelineFlags
		include  []string
		exclude  []string
		progress bool
		quiet    bool
	)
	cmd := &cobra.Command{
		Use:   "batch <dirs or files...>",
		Short: "Process many label photos in parallel",
		Long: `Discover label photos under the given directories and files and run
each through the pipeline with a bounded worker pool. The output is one
aggregate document with a summary.

Examples:
  nutrilabel batch photos/
  nutrilabel batch photos/ --recursive --workers 8 --format csv -o labels.csv
  nutrilabel batch photos/ --include '*.jpg' --exclude '*_overlay.png'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			bc := &batch.Config{
				Format:          stringFlag(cmd, "format", cfg.Output.Format),
				OutputFile:      stringFlag(cmd, "output", cfg.Output.File),
				OverlayDir:      stringFlag(cmd, "overlay-dir", cfg.Output.OverlayDir),
				OverlayColor:    cfg.Output.OverlayBoxColor,
				Workers:         cfg.Batch.Workers,
				ContinueOnError: cfg.Batch.ContinueOnError,
				Recursive:       cfg.Batch.Recursive,
				IncludePatterns: include,
				ExcludePatterns: exclude,
				ShowProgress:    progress,
				Quiet:           quiet,
			}
			if cmd.Flags().Changed("workers") {
				bc.Workers, _ = cmd.Flags().GetInt("workers")
			}
			if cmd.Flags().Changed("continue-on-error") {
				bc.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
			}
			if cmd.Flags().Changed("recursive") {
				bc.Recursive, _ = cmd.Flags().GetBool("recursive")
			}

			pl, err := a.buildPipeline(cmd, &pf)
			if err != nil {
				return err
			}

			res, err := batch.ProcessBatch(cmd.Context(), pl, args, bc)
			if err != nil {
				return err
			}
			if err := res.SaveResults(cmd.OutOrStdout(), bc.Format, bc.OutputFile, bc.Quiet); err != nil {
				return err
			}
			if !bc.Quiet {
				res.PrintStats(cmd.ErrOrStderr())
			}
			return nil
		},
	}
	pf.register(cmd)
	f := cmd.Flags()
	f.StringP("format", "f", "json", "output format (json, text, csv, yaml)")
	f.StringP("output", "o", "", "write output to file instead of stdout")
	f.String("overlay-dir", "", "directory for PNG overlays of the chosen region")
	f.BoolP("recursive", "r", false, "descend into subdirectories")
	f.IntP("workers", "w", 0, "number of parallel workers (default: batch.workers)")
	f.Bool("continue-on-error", true, "keep going when an image fails")
	f.StringSliceVar(&include, "include", nil, "glob patterns of files to include")
	f.StringSliceVar(&exclude, "exclude", nil, "glob patterns of files to exclude")
	f.BoolVar(&progress, "progress", false, "show a progress bar on stderr")
	f.BoolVarP(&quiet, "quiet", "q", false, "suppress statistics and progress")
	return cmd
}
