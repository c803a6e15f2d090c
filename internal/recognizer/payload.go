package recognizer

import (
	"fmt"
	"image"
	"strings"

	"github.com/MeKo-Tech/nutrilabel/internal/utils"
)

// PayloadFromImage encodes a processed image as JPEG at
// utils.DefaultJPEGQuality.
func PayloadFromImage(img image.Image) (Payload, error) {
	data, err := utils.EncodeJPEG(img, utils.DefaultJPEGQuality)
	if err != nil {
		return Payload{}, fmt.Errorf("encode payload: %w", err)
	}
	return Payload{Data: data, Format: "jpg"}, nil
}

// PayloadFromBytes wraps already encoded bytes. format is the name reported
// by image decoding ("jpeg", "png", ...).
func PayloadFromBytes(data []byte, format string) Payload {
	return Payload{Data: data, Format: shortFormat(format)}
}

func shortFormat(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", "jpeg", "jpg":
		return "jpg"
	case "tiff":
		return "tif"
	default:
		return f
	}
}
