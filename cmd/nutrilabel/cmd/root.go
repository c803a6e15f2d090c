// Package cmd implements the nutrilabel command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/nutrilabel/internal/config"
	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/version"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	loader  *config.Loader
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds a fresh command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "nutrilabel",
		Short: "Nutrition label photo to nutrient record",
		Long: `nutrilabel reads photographs of Korean nutrition facts labels and
returns a record of nine nutrient values.

Each photo goes through region detection, normalization, text recognition
(Clova OCR, Gemini or Tesseract), text enhancement and value parsing.

Examples:
  nutrilabel image label.jpg
  nutrilabel batch photos/ --recursive --format csv
  nutrilabel parse ocr.txt --enhance
  nutrilabel serve --port 8080`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return nil
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), a.cfg)
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is search in ., $HOME, $HOME/.config/nutrilabel, /etc/nutrilabel)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().Bool("version", false, "print version information and exit")

	_ = a.v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))

	rootCmd.AddCommand(
		newImageCmd(a),
		newBatchCmd(a),
		newPDFCmd(a),
		newParseCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) load() error {
	if a.cfg != nil {
		return nil
	}
	a.loader = config.NewLoaderWith(a.v)
	cfg, err := a.loader.LoadWithFile(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

// setupLogging installs a JSON slog handler. Logs go to stderr so that
// command output on stdout stays machine readable.
func setupLogging(w io.Writer, cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}

// pipelineFlags are the pipeline overrides shared by image, batch and pdf.
type pipelineFlags struct {
	noROI       bool
	textRegions bool
	engine      string
	backend     string
}

func (p *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&p.noROI, "no-roi", false, "send the whole image to recognition without region detection")
	cmd.Flags().BoolVar(&p.textRegions, "text-regions", false, "report text regions found inside the label region")
	cmd.Flags().StringVar(&p.engine, "engine", "", "recognition engine (clova, gemini, tesseract, placeholder)")
	cmd.Flags().StringVar(&p.backend, "backend", "", "region detection backend (native, gocv)")
}

// buildPipeline applies the command line overrides to the loaded config.
func (a *app) buildPipeline(cmd *cobra.Command, p *pipelineFlags) (*pipeline.Pipeline, error) {
	b := pipeline.NewBuilder().WithConfig(a.cfg.ToPipelineConfig())
	if p != nil {
		if cmd.Flags().Changed("no-roi") {
			b = b.WithROI(!p.noROI)
		}
		if cmd.Flags().Changed("text-regions") {
			b = b.WithTextRegions(p.textRegions)
		}
		if p.engine != "" {
			b = b.WithEngine(p.engine)
		}
		if p.backend != "" {
			b = b.WithBackend(p.backend)
		}
	}
	pl, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	if !pl.APIConfigured() {
		slog.Warn("recognition engine has no credentials, results use placeholder text",
			"engine", a.cfg.Recognizer.Engine)
	}
	return pl, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// stringFlag returns the flag value when it was set, otherwise fallback.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}
