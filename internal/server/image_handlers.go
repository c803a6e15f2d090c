package server

import (
	"errors"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/roi"
	"github.com/MeKo-Tech/nutrilabel/internal/utils"
)

const formatOverlay = "overlay"

// imageHandler processes a multipart upload in field "image".
func (s *Server) imageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	if err := r.ParseMultipartForm(s.maxUploadBytes()); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, "file too large", http.StatusRequestEntityTooLarge)
		} else {
			writeError(w, "failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, "no image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, "failed to read image data", http.StatusInternalServerError)
		return
	}
	uploadSizeBytes.Observe(float64(len(data)))

	in := pipeline.Input{Name: header.Filename, Data: data}
	if v := r.FormValue("use_roi"); v != "" {
		useROI, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, "invalid use_roi: "+v, http.StatusBadRequest)
			return
		}
		in.UseROI = &useROI
	}
	box, err := formBBox(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	in.BBox = box

	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}
	if strings.EqualFold(format, formatOverlay) && !s.overlayEnabled {
		writeError(w, "overlay output disabled", http.StatusForbidden)
		return
	}

	res, ok := s.process(w, r, "image", in)
	if !ok {
		return
	}

	if strings.EqualFold(format, formatOverlay) {
		s.writeOverlay(w, r, data, res)
		return
	}
	s.writeFormatted(w, format, res)
}

// formBBox reads x, y, width and height. All four or none must be given.
func formBBox(r *http.Request) (*roi.BoundingBox, error) {
	keys := []string{"x", "y", "width", "height"}
	vals := make([]int, len(keys))
	present := 0
	for i, k := range keys {
		v := r.FormValue(k)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid " + k + ": " + v)
		}
		vals[i] = n
		present++
	}
	switch present {
	case 0:
		return nil, nil
	case len(keys):
		if vals[2] <= 0 || vals[3] <= 0 {
			return nil, errors.New("width and height must be positive")
		}
		return &roi.BoundingBox{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
	default:
		return nil, errors.New("bounding box needs x, y, width and height")
	}
}

// writeOverlay draws the chosen region over the uploaded image as PNG.
func (s *Server) writeOverlay(w http.ResponseWriter, r *http.Request, data []byte, res *pipeline.Result) {
	img, _, err := utils.DecodeBytes(data)
	if err != nil {
		writeError(w, "invalid image format", http.StatusBadRequest)
		return
	}

	boxCol, err := pipeline.ParseColor(pick(r.FormValue("box"), s.overlayBoxColor, pipeline.DefaultBoxColor))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	regionCol, err := pipeline.ParseColor(pick(r.FormValue("region"), pipeline.DefaultRegionColor))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ov := pipeline.RenderOverlay(img, res, boxCol, regionCol)
	w.Header().Set("Content-Type", "image/png")
	_ = png.Encode(w, ov)
}

func pick(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
