//go:build tesseract

package recognizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine runs a local Tesseract installation through gosseract.
type TesseractEngine struct {
	language string
}

// NewTesseractEngine returns a local engine for the given language list,
// e.g. "kor+eng".
func NewTesseractEngine(language string) (Engine, error) {
	if strings.TrimSpace(language) == "" {
		language = "eng"
	}
	return &TesseractEngine{language: language}, nil
}

func (e *TesseractEngine) Name() string { return EngineTesseract }

func (e *TesseractEngine) Recognize(ctx context.Context, p Payload) ([]string, error) {
	type outcome struct {
		lines []string
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		lines, err := e.recognize(p)
		done <- outcome{lines, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		return o.lines, o.err
	}
}

func (e *TesseractEngine) recognize(p Payload) ([]string, error) {
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	langs := strings.Split(e.language, "+")
	if err := client.SetLanguage(langs...); err != nil {
		return nil, fmt.Errorf("tesseract: set language: %w", err)
	}
	if err := client.SetImageFromBytes(p.Data); err != nil {
		return nil, fmt.Errorf("tesseract: set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	return splitLines(text), nil
}
