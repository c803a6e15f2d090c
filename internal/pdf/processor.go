package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
)

// PageResult holds the label results of one page.
type PageResult struct {
	PageNumber int           `json:"page_number" yaml:"page_number"`
	Images     []ImageResult `json:"images" yaml:"images"`
}

// ImageResult is the pipeline outcome for one extracted image.
type ImageResult struct {
	ImageIndex int              `json:"image_index" yaml:"image_index"`
	Result     *pipeline.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Error      string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// DocumentResult is the outcome for a whole PDF.
type DocumentResult struct {
	Filename   string         `json:"filename" yaml:"filename"`
	TotalPages int            `json:"total_pages" yaml:"total_pages"`
	Pages      []PageResult   `json:"pages" yaml:"pages"`
	Processing ProcessingInfo `json:"processing" yaml:"processing"`
}

// ProcessingInfo contains timing information.
type ProcessingInfo struct {
	ExtractionTimeMs int64 `json:"extraction_time_ms" yaml:"extraction_time_ms"`
	PipelineTimeMs   int64 `json:"pipeline_time_ms" yaml:"pipeline_time_ms"`
	TotalTimeMs      int64 `json:"total_time_ms" yaml:"total_time_ms"`
}

// Results returns every successful pipeline result in page order.
func (d *DocumentResult) Results() []*pipeline.Result {
	var out []*pipeline.Result
	for _, p := range d.Pages {
		for _, img := range p.Images {
			if img.Result != nil {
				out = append(out, img.Result)
			}
		}
	}
	return out
}

// ProcessFile extracts the images of filename and runs each through pl.
// A page without images yields no PageResult.
func ProcessFile(ctx context.Context, pl *pipeline.Pipeline, filename, pageRange string) (*DocumentResult, error) {
	start := time.Now()
	total, err := PageCount(filename)
	if err != nil {
		return nil, err
	}
	byPage, err := ExtractImages(filename, pageRange)
	if err != nil {
		return nil, err
	}
	extracted := time.Since(start)

	doc := &DocumentResult{Filename: filename, TotalPages: total}
	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	var inputs []pipeline.Input
	for _, p := range pages {
		for _, img := range byPage[p] {
			name := fmt.Sprintf("%s#page%d-%d", filepath.Base(filename), p, img.Index)
			inputs = append(inputs, pipeline.Input{Name: name, Data: img.Data})
		}
	}
	if len(inputs) == 0 {
		doc.Processing = ProcessingInfo{ExtractionTimeMs: extracted.Milliseconds(), TotalTimeMs: time.Since(start).Milliseconds()}
		return doc, nil
	}

	par := pl.Config().Parallel
	par.ContinueOnError = true
	items, err := pl.ProcessBatchWith(ctx, inputs, par)
	if err != nil {
		return nil, err
	}

	i := 0
	for _, p := range pages {
		pr := PageResult{PageNumber: p}
		for _, img := range byPage[p] {
			ir := ImageResult{ImageIndex: img.Index, Result: items[i].Result}
			if items[i].Err != nil {
				ir.Error = items[i].Err.Error()
			}
			pr.Images = append(pr.Images, ir)
			i++
		}
		doc.Pages = append(doc.Pages, pr)
	}

	total2 := time.Since(start)
	doc.Processing = ProcessingInfo{
		ExtractionTimeMs: extracted.Milliseconds(),
		PipelineTimeMs:   (total2 - extracted).Milliseconds(),
		TotalTimeMs:      total2.Milliseconds(),
	}
	return doc, nil
}
