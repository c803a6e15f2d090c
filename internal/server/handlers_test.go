package server

import (
	"encoding/base64"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/nutrilabel/internal/nutrition"
	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/recognizer"
	"github.com/MeKo-Tech/nutrilabel/internal/testutil"
)

func TestNewServer_RequiresPipeline(t *testing.T) {
	_, err := NewServer(Config{}, nil)
	assert.Error(t, err)
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t, Config{}, nil)

	tests := []struct {
		method string
		status int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodPost, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, "/health", nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.status != http.StatusOK {
				var er ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &er))
				assert.Equal(t, tt.status, er.Code)
				return
			}

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "healthy", resp.Status)
			assert.NotEmpty(t, resp.Time)
			assert.False(t, resp.APIConfigured)
			assert.Equal(t, recognizer.EnginePlaceholder, resp.Engine)
			require.NotNil(t, resp.System)
			assert.Positive(t, resp.System.CPUs)
			assert.Positive(t, resp.System.Goroutines)
		})
	}
}

func TestHealthHandler_ConfiguredEngine(t *testing.T) {
	s := newTestServer(t, Config{}, &stubEngine{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.APIConfigured)
	assert.Equal(t, "stub", resp.Engine)
}

func TestTextHandler(t *testing.T) {
	s := newTestServer(t, Config{}, nil)

	tests := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, resp TextResponse)
	}{
		{
			name:   "parse",
			body:   `{"text":"나트륨 120mg 단백질 5g"}`,
			status: http.StatusOK,
			check: func(t *testing.T, resp TextResponse) {
				assert.Equal(t, nutrition.Amount(120), resp.NutritionInfo.Get(nutrition.Sodium))
				assert.Equal(t, nutrition.Amount(5), resp.NutritionInfo.Get(nutrition.Protein))
				assert.Equal(t, 2, resp.Resolved)
			},
		},
		{
			name:   "enhance",
			body:   `{"text":"당류 1 0 g","enhance":true}`,
			status: http.StatusOK,
			check: func(t *testing.T, resp TextResponse) {
				assert.Equal(t, nutrition.Amount(1), resp.NutritionInfo.Get(nutrition.Sugar))
			},
		},
		{
			name:   "wide characters",
			body:   `{"text":"나트륨　１２０mg"}`,
			status: http.StatusOK,
			check: func(t *testing.T, resp TextResponse) {
				assert.Equal(t, "나트륨 120mg", resp.Text)
				assert.Equal(t, nutrition.Amount(120), resp.NutritionInfo.Get(nutrition.Sodium))
			},
		},
		{name: "empty text", body: `{"text":"  "}`, status: http.StatusBadRequest},
		{name: "bad json", body: `{`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/nutrition/text", strings.NewReader(tt.body)))
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.check != nil {
				var resp TextResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				tt.check(t, resp)
			}
		})
	}
}

func TestTextHandler_TooLarge(t *testing.T) {
	s := newTestServer(t, Config{MaxUploadMB: 1}, nil)
	body := `{"text":"` + strings.Repeat("a", 2<<20) + `"}`

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/nutrition/text", strings.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
}

func TestBase64Handler(t *testing.T) {
	eng := &stubEngine{fragments: []string{labelText}}
	s := newTestServer(t, Config{}, eng)
	png := testutil.EncodePNG(t, testutil.LabelImage())

	for name, image := range map[string]string{
		"bare":     base64.StdEncoding.EncodeToString(png),
		"data url": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	} {
		t.Run(name, func(t *testing.T) {
			body, _ := json.Marshal(Base64Request{Image: image})
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/nutrition/base64", strings.NewReader(string(body))))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp LabelResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.Equal(t, labelText, resp.FullText)
			assert.Equal(t, nutrition.Amount(250), resp.NutritionInfo.Get(nutrition.Sodium))
			assert.Equal(t, "stub", resp.ModelInfo.Engine)
			assert.True(t, resp.ModelInfo.APIConfigured)
			assert.Equal(t, pipeline.SourceDetected, resp.Provenance.ROISource)
		})
	}
}

func TestBase64Handler_Errors(t *testing.T) {
	s := newTestServer(t, Config{MaxUploadMB: 1}, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing image", `{}`, http.StatusBadRequest},
		{"not an image", `{"image":"aGVsbG8="}`, http.StatusBadRequest},
		{"too large", `{"image":"` + strings.Repeat("A", 2<<20) + `"}`, http.StatusRequestEntityTooLarge},
		{"get", ``, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPost
			if tt.name == "get" {
				method = http.MethodGet
			}
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, httptest.NewRequest(method, "/nutrition/base64", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var er ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &er))
			assert.Equal(t, tt.status, er.Code)
			assert.NotEmpty(t, er.Error)
		})
	}
}

func TestBase64Handler_RecognitionFailureIsNotHTTPError(t *testing.T) {
	eng := &stubEngine{err: &recognizer.ServiceError{StatusCode: 500, Body: "down"}}
	s := newTestServer(t, Config{}, eng)
	img := base64.StdEncoding.EncodeToString(testutil.EncodePNG(t, testutil.BlankImage(50, 50, color.White)))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/nutrition/base64", strings.NewReader(`{"image":"`+img+`"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp LabelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "500")
	assert.Zero(t, resp.NutritionInfo.ResolvedCount())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, Config{CORSOrigin: "https://app.example"}, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/nutrition/text", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, Config{}, nil)
	h := s.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/nutrition/text", strings.NewReader(`{"text":"열량 100kcal"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nutrilabel_pipeline_requests_total")
	assert.Contains(t, w.Body.String(), "nutrilabel_http_requests_total")
}
