package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/nutrilabel/internal/common"
	"github.com/MeKo-Tech/nutrilabel/internal/enhance"
	"github.com/MeKo-Tech/nutrilabel/internal/nutrition"
	"github.com/MeKo-Tech/nutrilabel/internal/recognizer"
	"github.com/MeKo-Tech/nutrilabel/internal/roi"
	"github.com/MeKo-Tech/nutrilabel/internal/utils"
)

// ErrNoImage is returned when an Input carries no image at all.
var ErrNoImage = errors.New("pipeline: input has no image")

// decoded is an input after the decode stage.
type decoded struct {
	img    image.Image
	raw    []byte // original encoding, nil when the caller passed an image
	format string
}

// Process runs all stages on one input. It returns an error only when the
// input cannot be decoded or ctx is done; every other failure is reported in
// the Result.
func (p *Pipeline) Process(ctx context.Context, in Input) (*Result, error) {
	timer := common.NewStageTimer()
	res := &Result{Name: in.Name}
	report := func(stage string) {
		d := timer.Mark(stage)
		if in.OnStage != nil {
			in.OnStage(stage, d, false)
		}
	}
	skip := func(stage string) {
		timer.Skip(stage)
		if in.OnStage != nil {
			in.OnStage(stage, 0, true)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := decodeInput(in)
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	b := src.img.Bounds()
	res.Provenance.OriginalSize = Size{Width: b.Dx(), Height: b.Dy()}
	report(StageDecode)

	useROI := p.cfg.UseROI
	if in.UseROI != nil {
		useROI = *in.UseROI
	}

	var payload recognizer.Payload
	if useROI {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		box := p.locate(src.img, in.BBox, res)
		report(StageDetect)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		processed := p.normalize(src.img, box, res)
		if p.cfg.TextRegions {
			res.TextRegions = textRegions(src.img, box)
		}
		payload, err = recognizer.PayloadFromImage(processed)
		if err != nil {
			return nil, err
		}
		report(StageNormalize)
	} else {
		res.Provenance.ROISource = SourceNone
		skip(StageDetect)
		payload, err = rawPayload(src)
		if err != nil {
			return nil, err
		}
		skip(StageNormalize)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := p.orchestrator.Recognize(ctx, payload)
	if err != nil {
		return nil, err
	}
	res.Recognition = rec
	res.Success = rec.Success
	res.Error = rec.Error
	res.Provenance.Engine = rec.Engine
	res.Provenance.RecognitionPlaceholder = rec.Placeholder
	res.Provenance.RecognitionInvoked = !rec.Placeholder
	report(StageRecognize)

	text := rec.RawText
	if useROI && text != "" {
		text = enhance.Enhance(text)
		res.Provenance.EnhancementApplied = true
		report(StageEnhance)
	} else {
		skip(StageEnhance)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Text = text
	res.Nutrition = nutrition.Parse(text)
	report(StageParse)

	res.Processing = timings(timer)
	slog.Debug("label processed",
		"name", in.Name,
		"roi_source", res.Provenance.ROISource,
		"engine", res.Provenance.Engine,
		"resolved", res.Nutrition.ResolvedCount(),
		"stages", timer.String())
	return res, nil
}

// ProcessText runs enhancement and parsing on already recognized text. The
// text is first cleaned like recognized fragments, so full-width digits and
// ideographic spaces parse.
func ProcessText(text string, enhanceText bool) (nutrition.Record, string) {
	text = recognizer.CleanText(text)
	if enhanceText && text != "" {
		text = enhance.Enhance(text)
	}
	return nutrition.Parse(text), text
}

// locate picks the region to recognize and records where it came from.
func (p *Pipeline) locate(img image.Image, callerBox *roi.BoundingBox, res *Result) roi.BoundingBox {
	w, h := res.Provenance.OriginalSize.Width, res.Provenance.OriginalSize.Height
	res.Provenance.ROIUsed = true

	box, source := roi.FullImage(w, h), SourceFallback
	switch {
	case callerBox != nil:
		if clamped, ok := callerBox.Clamp(w, h); ok {
			box, source = clamped, SourceCaller
		} else {
			slog.Warn("caller bounding box lies outside the image, using full frame",
				"bbox", callerBox.String(), "width", w, "height", h)
		}
	default:
		cands, err := p.backend.DetectCandidates(img)
		if err != nil {
			slog.Warn("region detection failed, using full frame", "backend", p.backend.Name(), "error", err)
			break
		}
		res.Provenance.Candidates = len(cands)
		if selected, ok := roi.SelectRegion(cands, w, h); ok {
			box, source = selected, SourceDetected
		} else {
			slog.Info("no nutrition table region found, using full frame", "candidates", len(cands))
		}
	}

	res.Provenance.ROISource = source
	res.Provenance.ROIBox = &box
	return box
}

// normalize prepares the crop for recognition. A failed normalization
// degrades to the raw crop, and failing that to the whole image.
func (p *Pipeline) normalize(img image.Image, box roi.BoundingBox, res *Result) image.Image {
	var out image.Image
	if pi, err := p.backend.Normalize(img, box); err == nil {
		out = pi.Gray
	} else {
		res.Provenance.NormalizationDegraded = true
		slog.Warn("normalization failed, sending unprocessed crop", "bbox", box.String(), "error", err)
		crop, cerr := roi.Crop(img, box)
		if cerr != nil {
			crop = img
		}
		out = crop
	}
	ob := out.Bounds()
	res.Provenance.ProcessedSize = &Size{Width: ob.Dx(), Height: ob.Dy()}
	res.Processed = out
	return out
}

// textRegions returns the text regions of the crop in image coordinates.
func textRegions(img image.Image, box roi.BoundingBox) []roi.BoundingBox {
	crop, err := roi.Crop(img, box)
	if err != nil {
		return nil
	}
	regions := roi.DetectTextRegions(crop)
	for i := range regions {
		regions[i].X += box.X
		regions[i].Y += box.Y
	}
	return regions
}

func decodeInput(in Input) (decoded, error) {
	if in.Image != nil {
		if in.Image.Bounds().Empty() {
			return decoded{}, fmt.Errorf("%w: zero-sized image", utils.ErrInvalidImage)
		}
		return decoded{img: in.Image}, nil
	}
	data := in.Data
	if len(data) == 0 && in.DataURL != "" {
		var err error
		data, err = utils.DecodeDataURL(in.DataURL)
		if err != nil {
			return decoded{}, err
		}
	}
	if len(data) == 0 {
		return decoded{}, ErrNoImage
	}
	img, meta, err := utils.DecodeBytes(data)
	if err != nil {
		return decoded{}, err
	}
	return decoded{img: img, raw: data, format: meta.Format}, nil
}

// rawPayload forwards the original encoding when there is one.
func rawPayload(src decoded) (recognizer.Payload, error) {
	if len(src.raw) > 0 {
		return recognizer.PayloadFromBytes(src.raw, src.format), nil
	}
	return recognizer.PayloadFromImage(src.img)
}

func timings(t *common.StageTimer) Timings {
	ns := func(stage string) int64 { return int64(t.Get(stage)) }
	return Timings{
		DecodeNs:      ns(StageDecode),
		DetectionNs:   ns(StageDetect),
		NormalizeNs:   ns(StageNormalize),
		RecognitionNs: ns(StageRecognize),
		EnhanceNs:     ns(StageEnhance),
		ParseNs:       ns(StageParse),
		TotalNs:       int64(t.Total()),
	}
}
