package pipeline

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/MeKo-Tech/nutrilabel/internal/recognizer"
	"github.com/MeKo-Tech/nutrilabel/internal/roi"
)

// Config holds settings for the end-to-end label pipeline.
type Config struct {
	UseROI      bool              // locate and normalize the nutrition table before recognition
	TextRegions bool              // report text regions found inside the ROI
	Backend     string            // ROI backend: "native" or "gocv"
	Recognizer  recognizer.Config // engine selection and credentials
	Parallel    ParallelConfig    // batch fan-out
}

// DefaultConfig returns a pipeline that uses ROI processing, the native
// backend and the default recognizer settings.
func DefaultConfig() Config {
	return Config{
		UseROI:     true,
		Backend:    roi.BackendNative,
		Recognizer: recognizer.DefaultConfig(),
		Parallel:   DefaultParallelConfig(),
	}
}

// Builder provides a fluent API to configure and build a Pipeline.
type Builder struct {
	cfg     Config
	engine  recognizer.Engine
	backend roi.Backend
}

// NewBuilder creates a new builder with defaults.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithROI enables or disables region-of-interest processing.
func (b *Builder) WithROI(enabled bool) *Builder {
	b.cfg.UseROI = enabled
	return b
}

// WithTextRegions enables text-region reporting inside the ROI.
func (b *Builder) WithTextRegions(enabled bool) *Builder {
	b.cfg.TextRegions = enabled
	return b
}

// WithBackend selects the ROI backend.
func (b *Builder) WithBackend(name string) *Builder {
	if name != "" {
		b.cfg.Backend = name
	}
	return b
}

// WithEngine selects the recognition engine by name.
func (b *Builder) WithEngine(name string) *Builder {
	if name != "" {
		b.cfg.Recognizer.Engine = strings.ToLower(strings.TrimSpace(name))
	}
	return b
}

// WithEngineInstance uses e instead of building one from the recognizer
// config. Tests and embedders use it to plug in their own engine.
func (b *Builder) WithEngineInstance(e recognizer.Engine) *Builder {
	b.engine = e
	return b
}

// WithBackendInstance uses be instead of the backend named in the config.
func (b *Builder) WithBackendInstance(be roi.Backend) *Builder {
	b.backend = be
	return b
}

// WithRecognizerTimeout bounds each recognition call.
func (b *Builder) WithRecognizerTimeout(d time.Duration) *Builder {
	if d > 0 {
		b.cfg.Recognizer.Timeout = d
	}
	return b
}

// WithClova sets the Clova OCR endpoint and secret.
func (b *Builder) WithClova(url, secret string) *Builder {
	if url != "" {
		b.cfg.Recognizer.ClovaURL = url
	}
	if secret != "" {
		b.cfg.Recognizer.ClovaSecret = secret
	}
	return b
}

// WithGemini sets the Gemini API key and model.
func (b *Builder) WithGemini(apiKey, model string) *Builder {
	if apiKey != "" {
		b.cfg.Recognizer.GeminiAPIKey = apiKey
	}
	if model != "" {
		b.cfg.Recognizer.GeminiModel = model
	}
	return b
}

// WithTesseractLanguage sets the tesseract language list, e.g. "kor+eng".
func (b *Builder) WithTesseractLanguage(lang string) *Builder {
	if lang != "" {
		b.cfg.Recognizer.TesseractLanguage = lang
	}
	return b
}

// WithParallelWorkers sets the number of parallel workers for batch processing.
func (b *Builder) WithParallelWorkers(workers int) *Builder {
	if workers > 0 {
		b.cfg.Parallel.MaxWorkers = workers
	}
	return b
}

// WithContinueOnError keeps a batch running when a single input fails.
func (b *Builder) WithContinueOnError(enabled bool) *Builder {
	b.cfg.Parallel.ContinueOnError = enabled
	return b
}

// WithProgressCallback sets the progress callback for batch processing.
func (b *Builder) WithProgressCallback(callback ProgressCallback) *Builder {
	b.cfg.Parallel.ProgressCallback = callback
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that the configuration looks sane.
func (b *Builder) Validate() error {
	if b.backend == nil {
		switch strings.ToLower(b.cfg.Backend) {
		case "", roi.BackendNative, roi.BackendGocv:
		default:
			return fmt.Errorf("unknown roi backend %q", b.cfg.Backend)
		}
	}
	if b.engine == nil {
		switch b.cfg.Recognizer.Engine {
		case "", recognizer.EngineClova, recognizer.EngineGemini, recognizer.EngineTesseract, recognizer.EnginePlaceholder:
		default:
			return fmt.Errorf("unknown recognition engine %q", b.cfg.Recognizer.Engine)
		}
	}
	if b.cfg.Recognizer.Timeout < 0 {
		return errors.New("recognizer timeout must be >= 0")
	}
	if b.cfg.Parallel.MaxWorkers < 0 {
		return errors.New("parallel workers must be >= 0")
	}
	return nil
}

// Pipeline wires the ROI backend, the recognition orchestrator, enhancement
// and parsing. It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	cfg          Config
	backend      roi.Backend
	orchestrator *recognizer.Orchestrator
}

// Build initializes the pipeline components.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	backend := b.backend
	var err error
	if backend == nil {
		backend, err = roi.NewBackend(b.cfg.Backend)
		if err != nil {
			return nil, fmt.Errorf("init roi backend: %w", err)
		}
	}
	engine := b.engine
	if engine == nil {
		engine, err = recognizer.NewEngine(b.cfg.Recognizer)
		if err != nil {
			return nil, fmt.Errorf("init recognizer: %w", err)
		}
	}
	if b.cfg.Parallel.MaxWorkers <= 0 {
		b.cfg.Parallel.MaxWorkers = runtime.NumCPU()
	}
	return &Pipeline{
		cfg:          b.cfg,
		backend:      backend,
		orchestrator: recognizer.NewOrchestrator(engine, b.cfg.Recognizer.Timeout),
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Orchestrator returns the recognition orchestrator.
func (p *Pipeline) Orchestrator() *recognizer.Orchestrator { return p.orchestrator }

// APIConfigured reports whether recognition will reach a real engine rather
// than the placeholder.
func (p *Pipeline) APIConfigured() bool { return p.orchestrator.Configured() }

// Info returns a map with key pipeline properties.
func (p *Pipeline) Info() map[string]interface{} {
	return map[string]interface{}{
		"use_roi":        p.cfg.UseROI,
		"text_regions":   p.cfg.TextRegions,
		"roi_backend":    p.backend.Name(),
		"engine":         p.orchestrator.EngineName(),
		"api_configured": p.orchestrator.Configured(),
		"timeout":        p.cfg.Recognizer.Timeout.String(),
		"workers":        p.cfg.Parallel.MaxWorkers,
	}
}
