// Package recognizer turns a prepared label image into recognized text by
// calling one of several text-recognition engines.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConfigured is returned by engines whose credentials are missing
	// or still set to the shipped placeholders.
	ErrNotConfigured = errors.New("recognizer: engine not configured")
	// ErrNoBackend is returned when an engine was not compiled in.
	ErrNoBackend = errors.New("recognizer: engine backend not linked into this build")
	// ErrEmptyPayload is returned for a payload without image bytes.
	ErrEmptyPayload = errors.New("recognizer: empty payload")
)

// Engine names accepted by NewEngine.
const (
	EngineClova       = "clova"
	EngineGemini      = "gemini"
	EngineTesseract   = "tesseract"
	EnginePlaceholder = "placeholder"
)

// Payload is an encoded image handed to an engine.
type Payload struct {
	Data []byte
	// Format is the short image format name, e.g. "jpg" or "png".
	Format string
}

// Engine recognizes text in an encoded image. Fragments are returned in
// reading order.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, p Payload) ([]string, error)
}

// Configurable is implemented by engines that can report missing
// credentials before any call is made.
type Configurable interface {
	Configured() bool
}

// Result is the outcome of one recognition attempt. A failed call is a
// Result with Success false, not a Go error.
type Result struct {
	Success     bool          `json:"success"`
	RawText     string        `json:"raw_text"`
	Error       string        `json:"error,omitempty"`
	Engine      string        `json:"engine"`
	Placeholder bool          `json:"placeholder"`
	Fragments   []string      `json:"fragments,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// ServiceError reports a non-2xx answer from a remote engine.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("recognition service returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Config selects and configures the engine.
type Config struct {
	Engine  string
	Timeout time.Duration

	ClovaURL    string
	ClovaSecret string

	GeminiAPIKey string
	GeminiModel  string

	TesseractLanguage string
}

// DefaultConfig returns the default recognizer configuration.
func DefaultConfig() Config {
	return Config{
		Engine:            EngineClova,
		Timeout:           30 * time.Second,
		ClovaURL:          PlaceholderClovaURL,
		ClovaSecret:       PlaceholderClovaSecret,
		GeminiModel:       "gemini-1.5-flash",
		TesseractLanguage: "kor+eng",
	}
}

// NewEngine builds the engine named in cfg. Engines that are selected but
// lack credentials are still returned; the orchestrator substitutes the
// placeholder for them.
func NewEngine(cfg Config) (Engine, error) {
	switch cfg.Engine {
	case "", EngineClova:
		return NewClovaEngine(cfg.ClovaURL, cfg.ClovaSecret, nil), nil
	case EngineGemini:
		return NewGeminiEngine(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	case EngineTesseract:
		return NewTesseractEngine(cfg.TesseractLanguage)
	case EnginePlaceholder:
		return PlaceholderEngine{}, nil
	default:
		return nil, fmt.Errorf("recognizer: unknown engine %q", cfg.Engine)
	}
}
