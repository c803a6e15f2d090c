package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Version:       version.Version,
		Time:          time.Now().UTC().Format(time.RFC3339),
		APIConfigured: s.pipeline.APIConfigured(),
		Engine:        s.pipeline.Orchestrator().EngineName(),
		Pipeline:      s.pipeline.Info(),
		System:        s.systemStats(r.Context()),
	})
}

// systemStats collects host figures. Fields that cannot be read stay zero.
func (s *Server) systemStats(ctx context.Context) *SystemStats {
	st := &SystemStats{
		Goroutines: runtime.NumGoroutine(),
		UptimeSec:  time.Since(s.started).Seconds(),
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		st.CPUs = n
	} else {
		st.CPUs = runtime.NumCPU()
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		st.MemoryTotal = vm.Total
		st.MemoryUsedPercent = vm.UsedPercent
	} else {
		slog.Debug("memory stats unavailable", "error", err)
	}
	return st
}

// textHandler runs enhancement and parsing on caller supplied text.
func (s *Server) textHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())

	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, "text too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, "text is required", http.StatusBadRequest)
		return
	}

	record, text := pipeline.ProcessText(req.Text, req.Enhance)
	pipelineRequestsTotal.WithLabelValues("text", "success").Inc()
	unresolvedFields.Observe(float64(len(record.Unresolved())))
	writeJSON(w, http.StatusOK, TextResponse{Text: text, NutritionInfo: record, Resolved: record.ResolvedCount()})
}

// base64Handler accepts a data URL or bare base64 image in a JSON body.
func (s *Server) base64Handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// base64 inflates the payload by a third
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes()*4/3+1024)

	var req Base64Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, "image too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		writeError(w, "image is required", http.StatusBadRequest)
		return
	}
	uploadSizeBytes.Observe(float64(len(req.Image)))

	res, ok := s.process(w, r, "base64", pipeline.Input{
		Name:    "base64",
		DataURL: req.Image,
		BBox:    req.BBox,
		UseROI:  req.UseROI,
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, labelResponse(s.pipeline, res))
}

// process runs the pipeline under the request timeout and writes the error
// reply itself when it fails.
func (s *Server) process(w http.ResponseWriter, r *http.Request, kind string, in pipeline.Input) (*pipeline.Result, bool) {
	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.pipeline.Process(ctx, in)
	recordResult(kind, res, err)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, "processing timed out", http.StatusGatewayTimeout)
		case errors.Is(err, context.Canceled):
			writeError(w, "request cancelled", http.StatusServiceUnavailable)
		default:
			writeError(w, err.Error(), http.StatusBadRequest)
		}
		return nil, false
	}
	if !res.Success {
		slog.Error("recognition failed", "kind", kind, "engine", res.Provenance.Engine, "error", res.Error)
	}
	return res, true
}

// writeFormatted renders res in one of the text formats, or as the JSON
// label response.
func (s *Server) writeFormatted(w http.ResponseWriter, format string, res *pipeline.Result) {
	switch strings.ToLower(format) {
	case "", pipeline.FormatJSON:
		writeJSON(w, http.StatusOK, labelResponse(s.pipeline, res))
		return
	case pipeline.FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	case pipeline.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case pipeline.FormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
	default:
		writeError(w, "unsupported format: "+format, http.StatusBadRequest)
		return
	}
	out, err := pipeline.Format(format, res)
	if err != nil {
		writeError(w, "formatting failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(out))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: message, Code: statusCode})
}
