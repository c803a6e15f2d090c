//nolint:lll
package config

// Config represents the complete configuration for the nutrilabel application.
// It covers every command (image, batch, pdf, parse, serve) and is loaded
// from configuration files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Pipeline   PipelineConfig   `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Recognizer RecognizerConfig `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// PipelineConfig contains the label pipeline switches.
type PipelineConfig struct {
	UseROI      bool   `mapstructure:"use_roi" yaml:"use_roi" json:"use_roi"`
	TextRegions bool   `mapstructure:"text_regions" yaml:"text_regions" json:"text_regions"`
	Backend     string `mapstructure:"backend" yaml:"backend" json:"backend"`
}

// RecognizerConfig selects and configures the text recognition engine.
type RecognizerConfig struct {
	Engine     string          `mapstructure:"engine" yaml:"engine" json:"engine"`
	TimeoutSec int             `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	Clova      ClovaConfig     `mapstructure:"clova" yaml:"clova" json:"clova"`
	Gemini     GeminiConfig    `mapstructure:"gemini" yaml:"gemini" json:"gemini"`
	Tesseract  TesseractConfig `mapstructure:"tesseract" yaml:"tesseract" json:"tesseract"`
}

// ClovaConfig holds the Clova OCR invoke URL and secret.
type ClovaConfig struct {
	URL    string `mapstructure:"url" yaml:"url" json:"url"`
	Secret string `mapstructure:"secret" yaml:"secret" json:"-"`
}

// GeminiConfig holds the Gemini API credentials.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key" json:"-"`
	Model  string `mapstructure:"model" yaml:"model" json:"model"`
}

type TesseractConfig struct {
	Language string `mapstructure:"language" yaml:"language" json:"language"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format          string `mapstructure:"format" yaml:"format" json:"format"`
	File            string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir      string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
	OverlayBoxColor string `mapstructure:"overlay_box_color" yaml:"overlay_box_color" json:"overlay_box_color"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string          `mapstructure:"host" yaml:"host" json:"host"`
	Port            int             `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string          `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int             `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int             `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int             `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	OverlayEnabled  bool            `mapstructure:"overlay_enabled" yaml:"overlay_enabled" json:"overlay_enabled"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerDay    int  `mapstructure:"requests_per_day" yaml:"requests_per_day" json:"requests_per_day"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	Recursive       bool `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
}
