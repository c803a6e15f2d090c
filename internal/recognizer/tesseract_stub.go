//go:build !tesseract

package recognizer

import "fmt"

// NewTesseractEngine reports ErrNoBackend unless built with -tags=tesseract.
func NewTesseractEngine(_ string) (Engine, error) {
	return nil, fmt.Errorf("%w: rebuild with -tags=tesseract", ErrNoBackend)
}
