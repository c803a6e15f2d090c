package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrilabel_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nutrilabel_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Pipeline metrics
	pipelineRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrilabel_pipeline_requests_total",
			Help: "Total number of label pipeline runs",
		},
		[]string{"type", "outcome"}, // type: image, base64, text, websocket
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nutrilabel_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	roiSourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrilabel_roi_source_total",
			Help: "Regions sent to recognition, by where they came from",
		},
		[]string{"source"},
	)

	recognitionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrilabel_recognition_failures_total",
			Help: "Recognition calls that returned no text",
		},
		[]string{"engine"},
	)

	unresolvedFields = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nutrilabel_unresolved_fields",
			Help:    "Number of unresolved nutrient fields per label",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrilabel_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"window"},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nutrilabel_upload_size_bytes",
			Help:    "Size of uploaded images in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 5 * 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nutrilabel_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrilabel_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

// recordResult updates the pipeline metrics for one finished run.
func recordResult(kind string, res *pipeline.Result, err error) {
	if err != nil || res == nil {
		pipelineRequestsTotal.WithLabelValues(kind, "error").Inc()
		return
	}
	outcome := "success"
	switch {
	case !res.Success:
		outcome = "recognition_failed"
		recognitionFailures.WithLabelValues(res.Provenance.Engine).Inc()
	case res.Provenance.RecognitionPlaceholder:
		outcome = "placeholder"
	}
	pipelineRequestsTotal.WithLabelValues(kind, outcome).Inc()
	roiSourceTotal.WithLabelValues(res.Provenance.ROISource).Inc()
	unresolvedFields.Observe(float64(len(res.Nutrition.Unresolved())))

	t := res.Processing
	for stage, ns := range map[string]int64{
		pipeline.StageDecode:    t.DecodeNs,
		pipeline.StageDetect:    t.DetectionNs,
		pipeline.StageNormalize: t.NormalizeNs,
		pipeline.StageRecognize: t.RecognitionNs,
		pipeline.StageEnhance:   t.EnhanceNs,
		pipeline.StageParse:     t.ParseNs,
	} {
		if ns > 0 {
			stageDuration.WithLabelValues(stage).Observe(float64(ns) / 1e9)
		}
	}
}
