package roi

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// Backend names accepted by NewBackend.
const (
	BackendNative = "native"
	BackendGocv   = "gocv"
)

// ErrBackendUnavailable is returned when a backend was not compiled in.
var ErrBackendUnavailable = errors.New("roi: backend not available in this build")

// Backend performs candidate detection and normalization. The native backend
// is pure Go; the gocv backend delegates to OpenCV and needs -tags=gocv.
type Backend interface {
	Name() string
	DetectCandidates(img image.Image) ([]RegionCandidate, error)
	Normalize(img image.Image, box BoundingBox) (*ProcessedImage, error)
}

// NewBackend returns the backend with the given name; "" selects native.
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendNative:
		return NativeBackend{}, nil
	case BackendGocv:
		return newGocvBackend()
	default:
		return nil, fmt.Errorf("roi: unknown backend %q (want %s or %s)", name, BackendNative, BackendGocv)
	}
}

// NativeBackend runs the pure-Go image operations of this package.
type NativeBackend struct{}

func (NativeBackend) Name() string { return BackendNative }

func (NativeBackend) DetectCandidates(img image.Image) ([]RegionCandidate, error) {
	return DetectCandidates(img), nil
}

func (NativeBackend) Normalize(img image.Image, box BoundingBox) (*ProcessedImage, error) {
	return Normalize(img, box)
}
