package pipeline

import (
	"image"

	"github.com/MeKo-Tech/nutrilabel/internal/nutrition"
	"github.com/MeKo-Tech/nutrilabel/internal/recognizer"
	"github.com/MeKo-Tech/nutrilabel/internal/roi"
)

// Where the region sent to recognition came from.
const (
	SourceDetected = "detected" // selected among detected candidates
	SourceCaller   = "caller"   // caller supplied a bounding box
	SourceFallback = "fallback" // nothing qualified, the whole frame was used
	SourceNone     = "none"     // ROI processing was disabled
)

// Input is one image to run through the pipeline. Exactly one of Image,
// Data or DataURL is used, in that order of preference.
type Input struct {
	Name    string           // shown in logs and batch output
	Image   image.Image      // already decoded image
	Data    []byte           // encoded image bytes
	DataURL string           // "data:image/...;base64,..." or bare base64
	BBox    *roi.BoundingBox // caller region, bypasses detection when set
	UseROI  *bool            // overrides Config.UseROI when set

	// OnStage, when set, is called after every stage completes.
	OnStage StageFunc
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Provenance records how a result was produced.
type Provenance struct {
	ROIUsed                bool             `json:"roi_used" yaml:"roi_used"`
	ROISource              string           `json:"roi_source" yaml:"roi_source"`
	ROIBox                 *roi.BoundingBox `json:"roi_bbox,omitempty" yaml:"roi_bbox,omitempty"`
	Candidates             int              `json:"candidates" yaml:"candidates"`
	OriginalSize           Size             `json:"original_size" yaml:"original_size"`
	ProcessedSize          *Size            `json:"processed_size,omitempty" yaml:"processed_size,omitempty"`
	NormalizationDegraded  bool             `json:"normalization_degraded" yaml:"normalization_degraded"`
	RecognitionInvoked     bool             `json:"recognition_invoked" yaml:"recognition_invoked"`
	RecognitionPlaceholder bool             `json:"recognition_placeholder" yaml:"recognition_placeholder"`
	Engine                 string           `json:"engine" yaml:"engine"`
	EnhancementApplied     bool             `json:"enhancement_applied" yaml:"enhancement_applied"`
}

// Timings holds per-stage durations in nanoseconds.
type Timings struct {
	DecodeNs      int64 `json:"decode_ns" yaml:"decode_ns"`
	DetectionNs   int64 `json:"detection_ns" yaml:"detection_ns"`
	NormalizeNs   int64 `json:"normalize_ns" yaml:"normalize_ns"`
	RecognitionNs int64 `json:"recognition_ns" yaml:"recognition_ns"`
	EnhanceNs     int64 `json:"enhance_ns" yaml:"enhance_ns"`
	ParseNs       int64 `json:"parse_ns" yaml:"parse_ns"`
	TotalNs       int64 `json:"total_ns" yaml:"total_ns"`
}

// Result is the per-image output of the pipeline.
type Result struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Success     bool              `json:"success" yaml:"success"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty"`
	Nutrition   nutrition.Record  `json:"nutrition" yaml:"nutrition"`
	Text        string            `json:"text" yaml:"text"`
	Recognition recognizer.Result `json:"recognition" yaml:"-"`
	TextRegions []roi.BoundingBox `json:"text_regions,omitempty" yaml:"text_regions,omitempty"`
	Provenance  Provenance        `json:"provenance" yaml:"provenance"`
	Processing  Timings           `json:"processing" yaml:"processing"`

	// Processed is the image that was sent to recognition, nil when the
	// raw bytes were forwarded.
	Processed image.Image `json:"-" yaml:"-"`
}

// Resolved returns how many nutrient fields carry a value.
func (r *Result) Resolved() int {
	if r == nil {
		return 0
	}
	return r.Nutrition.ResolvedCount()
}
