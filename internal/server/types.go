// Package server exposes the label pipeline over HTTP and WebSocket.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/nutrilabel/internal/nutrition"
	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/roi"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline        *pipeline.Pipeline
	corsOrigin      string
	maxUploadMB     int64
	timeout         time.Duration
	overlayEnabled  bool
	overlayBoxColor string
	rateLimiter     *RateLimiter
	started         time.Time
}

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	MaxUploadMB     int64
	TimeoutSec      int
	ShutdownTimeout int
	OverlayEnabled  bool
	OverlayBoxColor string

	RateLimitEnabled  bool
	RequestsPerMinute int
	RequestsPerDay    int
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version,omitempty"`
	Time          string         `json:"time"`
	APIConfigured bool           `json:"api_configured"`
	Engine        string         `json:"engine"`
	Pipeline      map[string]any `json:"pipeline,omitempty"`
	System        *SystemStats   `json:"system,omitempty"`
}

// SystemStats is the host snapshot reported by /health.
type SystemStats struct {
	CPUs              int     `json:"cpus"`
	MemoryTotal       uint64  `json:"memory_total_bytes"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	Goroutines        int     `json:"goroutines"`
	UptimeSec         float64 `json:"uptime_sec"`
}

// ModelInfo describes the recognizer that produced a result.
type ModelInfo struct {
	Engine        string `json:"engine"`
	Placeholder   bool   `json:"placeholder"`
	APIConfigured bool   `json:"api_configured"`
	ROIBackend    string `json:"roi_backend"`
}

// LabelResponse is the JSON body returned by the nutrition endpoints.
type LabelResponse struct {
	Success       bool                `json:"success"`
	FullText      string              `json:"full_text"`
	NutritionInfo nutrition.Record    `json:"nutrition_info"`
	ModelInfo     ModelInfo           `json:"model_info"`
	Provenance    pipeline.Provenance `json:"provenance"`
	Processing    pipeline.Timings    `json:"processing"`
	TextRegions   []roi.BoundingBox   `json:"text_regions,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// Base64Request is the body of POST /nutrition/base64.
type Base64Request struct {
	Image  string           `json:"image"`
	UseROI *bool            `json:"use_roi,omitempty"`
	BBox   *roi.BoundingBox `json:"bbox,omitempty"`
}

// TextRequest is the body of POST /nutrition/text.
type TextRequest struct {
	Text    string `json:"text"`
	Enhance bool   `json:"enhance"`
}

// TextResponse is the reply to POST /nutrition/text.
type TextResponse struct {
	Text          string           `json:"text"`
	NutritionInfo nutrition.Record `json:"nutrition_info"`
	Resolved      int              `json:"resolved"`
}

// NewServer creates a server around an already built pipeline.
func NewServer(config Config, pl *pipeline.Pipeline) (*Server, error) {
	if pl == nil {
		return nil, errors.New("pipeline is required")
	}
	s := &Server{
		pipeline:        pl,
		corsOrigin:      config.CORSOrigin,
		maxUploadMB:     config.MaxUploadMB,
		timeout:         time.Duration(config.TimeoutSec) * time.Second,
		overlayEnabled:  config.OverlayEnabled,
		overlayBoxColor: config.OverlayBoxColor,
		started:         time.Now(),
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}
	if s.maxUploadMB <= 0 {
		s.maxUploadMB = 16
	}
	if config.RateLimitEnabled {
		s.rateLimiter = NewRateLimiter(config.RequestsPerMinute, config.RequestsPerDay)
	}
	return s, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/nutrition/image", s.corsMiddleware(s.rateLimitMiddleware(s.imageHandler)))
	mux.HandleFunc("/nutrition/base64", s.corsMiddleware(s.rateLimitMiddleware(s.base64Handler)))
	mux.HandleFunc("/nutrition/text", s.corsMiddleware(s.rateLimitMiddleware(s.textHandler)))
	mux.HandleFunc("/ws/nutrition", s.rateLimitMiddleware(s.webSocketHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

func (s *Server) maxUploadBytes() int64 { return s.maxUploadMB * 1024 * 1024 }

func labelResponse(pl *pipeline.Pipeline, res *pipeline.Result) LabelResponse {
	return LabelResponse{
		Success:       res.Success,
		FullText:      res.Text,
		NutritionInfo: res.Nutrition,
		ModelInfo: ModelInfo{
			Engine:        res.Provenance.Engine,
			Placeholder:   res.Provenance.RecognitionPlaceholder,
			APIConfigured: pl.APIConfigured(),
			ROIBackend:    pl.Config().Backend,
		},
		Provenance:  res.Provenance,
		Processing:  res.Processing,
		TextRegions: res.TextRegions,
		Error:       res.Error,
	}
}
