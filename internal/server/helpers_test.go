package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/recognizer"
)

const labelText = "나트륨 250mg 단백질 15g"

// stubEngine answers every call with fixed fragments.
type stubEngine struct {
	mu        sync.Mutex
	fragments []string
	err       error
	calls     int
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Recognize(_ context.Context, _ recognizer.Payload) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return e.fragments, e.err
}

func newTestServer(t *testing.T, cfg Config, eng recognizer.Engine) *Server {
	t.Helper()
	b := pipeline.NewBuilder().WithParallelWorkers(1)
	if eng != nil {
		b = b.WithEngineInstance(eng)
	} else {
		b = b.WithEngine(recognizer.EnginePlaceholder)
	}
	pl, err := b.Build()
	require.NoError(t, err)
	if cfg.TimeoutSec == 0 {
		cfg.TimeoutSec = 10
	}
	s, err := NewServer(cfg, pl)
	require.NoError(t, err)
	return s
}

func multipartRequest(t *testing.T, path string, image []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if image != nil {
		fw, err := mw.CreateFormFile("image", "label.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
