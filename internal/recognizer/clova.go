package recognizer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Values shipped in sample configuration; an engine still using them is
// treated as unconfigured.
const (
	PlaceholderClovaURL    = "https://your-api-url.apigw.ntruss.com/ocr/v1/general"
	PlaceholderClovaSecret = "your-secret-key-here"
)

const maxErrorBody = 512

// ClovaEngine calls the Naver Clova OCR V2 general endpoint.
type ClovaEngine struct {
	url    string
	secret string
	client *http.Client
}

// NewClovaEngine returns a Clova engine. A nil client uses a default client;
// the orchestrator's context carries the deadline.
func NewClovaEngine(url, secret string, client *http.Client) *ClovaEngine {
	if client == nil {
		client = &http.Client{Timeout: 2 * DefaultTimeout}
	}
	return &ClovaEngine{
		url:    strings.TrimSpace(url),
		secret: strings.TrimSpace(secret),
		client: client,
	}
}

func (e *ClovaEngine) Name() string { return EngineClova }

// Configured reports whether both URL and secret are set to real values.
func (e *ClovaEngine) Configured() bool {
	return e.url != "" && e.secret != "" &&
		e.url != PlaceholderClovaURL && e.secret != PlaceholderClovaSecret
}

type clovaImage struct {
	Format string `json:"format"`
	Data   string `json:"data"`
	Name   string `json:"name"`
}

type clovaRequest struct {
	Version   string       `json:"version"`
	RequestID string       `json:"requestId"`
	Timestamp int64        `json:"timestamp"`
	Images    []clovaImage `json:"images"`
}

type clovaResponse struct {
	Images []struct {
		InferResult string `json:"inferResult"`
		Message     string `json:"message"`
		Fields      []struct {
			InferText string `json:"inferText"`
		} `json:"fields"`
	} `json:"images"`
}

func (e *ClovaEngine) Recognize(ctx context.Context, p Payload) ([]string, error) {
	if !e.Configured() {
		return nil, ErrNotConfigured
	}
	format := p.Format
	if format == "" {
		format = "jpg"
	}

	body, err := json.Marshal(clovaRequest{
		Version:   "V2",
		RequestID: uuid.NewString(),
		Timestamp: 0,
		Images: []clovaImage{{
			Format: format,
			Data:   base64.StdEncoding.EncodeToString(p.Data),
			Name:   "image",
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("clova: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("clova: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-OCR-SECRET", e.secret)

	started := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clova: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ServiceError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out clovaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("clova: decode response: %w", err)
	}
	if len(out.Images) == 0 {
		slog.Debug("clova response without images", "latency", time.Since(started))
		return []string{}, nil
	}
	img := out.Images[0]
	if img.InferResult != "" && !strings.EqualFold(img.InferResult, "SUCCESS") {
		return nil, fmt.Errorf("clova: inference %s: %s", img.InferResult, img.Message)
	}

	fragments := make([]string, 0, len(img.Fields))
	for _, f := range img.Fields {
		fragments = append(fragments, f.InferText)
	}
	slog.Debug("clova response", "fields", len(fragments), "latency", time.Since(started))
	return fragments, nil
}
