package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/recognizer"
	"github.com/MeKo-Tech/nutrilabel/internal/roi"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validBackends  = []string{roi.BackendNative, roi.BackendGocv}
	validEngines   = []string{
		recognizer.EngineClova, recognizer.EngineGemini,
		recognizer.EngineTesseract, recognizer.EnginePlaceholder,
	}
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	rec := recognizer.DefaultConfig()
	par := pipeline.DefaultParallelConfig()
	return Config{
		LogLevel: "info",
		Pipeline: PipelineConfig{
			UseROI:  true,
			Backend: roi.BackendNative,
		},
		Recognizer: RecognizerConfig{
			Engine:     rec.Engine,
			TimeoutSec: int(rec.Timeout / time.Second),
			Clova:      ClovaConfig{URL: rec.ClovaURL, Secret: rec.ClovaSecret},
			Gemini:     GeminiConfig{Model: rec.GeminiModel},
			Tesseract:  TesseractConfig{Language: rec.TesseractLanguage},
		},
		Output: OutputConfig{
			Format:          pipeline.FormatJSON,
			OverlayBoxColor: pipeline.DefaultBoxColor,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     16,
			TimeoutSec:      60,
			ShutdownTimeout: 10,
			OverlayEnabled:  true,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 30,
				RequestsPerDay:    1000,
			},
		},
		Batch: BatchConfig{
			Workers:         par.MaxWorkers,
			ContinueOnError: true,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.Output.Format != "" && !slices.Contains(pipeline.Formats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(pipeline.Formats, ", "))
	}
	if !slices.Contains(validBackends, c.Pipeline.Backend) {
		return fmt.Errorf("invalid roi backend: %s (must be one of: %s)", c.Pipeline.Backend, strings.Join(validBackends, ", "))
	}
	if !slices.Contains(validEngines, c.Recognizer.Engine) {
		return fmt.Errorf("invalid recognizer engine: %s (must be one of: %s)", c.Recognizer.Engine, strings.Join(validEngines, ", "))
	}
	if c.Recognizer.TimeoutSec < 0 {
		return fmt.Errorf("invalid recognizer timeout: %d (must not be negative)", c.Recognizer.TimeoutSec)
	}
	if c.Output.OverlayBoxColor != "" {
		if _, err := pipeline.ParseColor(c.Output.OverlayBoxColor); err != nil {
			return fmt.Errorf("invalid overlay box color: %w", err)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if rl := c.Server.RateLimit; rl.Enabled && (rl.RequestsPerMinute <= 0 || rl.RequestsPerDay <= 0) {
		return fmt.Errorf("invalid rate limit: %d/min %d/day (must be positive)", rl.RequestsPerMinute, rl.RequestsPerDay)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}
	return nil
}

// ToRecognizerConfig converts the recognizer section.
func (c *Config) ToRecognizerConfig() recognizer.Config {
	return recognizer.Config{
		Engine:            c.Recognizer.Engine,
		Timeout:           time.Duration(c.Recognizer.TimeoutSec) * time.Second,
		ClovaURL:          c.Recognizer.Clova.URL,
		ClovaSecret:       c.Recognizer.Clova.Secret,
		GeminiAPIKey:      c.Recognizer.Gemini.APIKey,
		GeminiModel:       c.Recognizer.Gemini.Model,
		TesseractLanguage: c.Recognizer.Tesseract.Language,
	}
}

// ToPipelineConfig converts the config to the internal pipeline configuration format.
func (c *Config) ToPipelineConfig() pipeline.Config {
	par := pipeline.DefaultParallelConfig()
	par.MaxWorkers = c.Batch.Workers
	par.ContinueOnError = c.Batch.ContinueOnError
	return pipeline.Config{
		UseROI:      c.Pipeline.UseROI,
		TextRegions: c.Pipeline.TextRegions,
		Backend:     c.Pipeline.Backend,
		Recognizer:  c.ToRecognizerConfig(),
		Parallel:    par,
	}
}

// APIConfigured reports whether the selected engine has usable credentials.
func (c *Config) APIConfigured() bool {
	switch c.Recognizer.Engine {
	case recognizer.EngineClova:
		return recognizer.NewClovaEngine(c.Recognizer.Clova.URL, c.Recognizer.Clova.Secret, nil).Configured()
	case recognizer.EngineGemini:
		return strings.TrimSpace(c.Recognizer.Gemini.APIKey) != ""
	case recognizer.EngineTesseract:
		return true
	default:
		return false
	}
}
