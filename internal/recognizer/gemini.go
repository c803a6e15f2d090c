package recognizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiPrompt = `Transcribe every piece of text in this nutrition facts label exactly as printed.
Keep the original language, numbers and units. Put each table row on its own line.
Output only the transcription, without commentary or formatting.`

// GeminiEngine asks a Gemini multimodal model for a verbatim transcription.
type GeminiEngine struct {
	APIKey string
	Model  string
}

func NewGeminiEngine(apiKey, model string) *GeminiEngine {
	return &GeminiEngine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *GeminiEngine) Name() string { return EngineGemini }

func (e *GeminiEngine) Configured() bool { return e.APIKey != "" && e.Model != "" }

func (e *GeminiEngine) Recognize(ctx context.Context, p Payload) ([]string, error) {
	if !e.Configured() {
		return nil, ErrNotConfigured
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	defer func() { _ = cl.Close() }()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return nil, errors.New("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{Temperature: ptrFloat32(0)}

	resp, err := m.GenerateContent(ctx,
		genai.Text(geminiPrompt),
		&genai.Blob{MIMEType: mimeType(p.Format), Data: p.Data},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}
	txt := firstText(resp)
	if txt == "" {
		return nil, errors.New("gemini: empty response")
	}
	return splitLines(stripCodeFences(txt)), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func mimeType(format string) string {
	switch strings.ToLower(format) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}

func ptrFloat32(v float32) *float32 { return &v }
