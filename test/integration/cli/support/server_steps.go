package support

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/nutrilabel/internal/pipeline"
	"github.com/MeKo-Tech/nutrilabel/internal/recognizer"
	"github.com/MeKo-Tech/nutrilabel/internal/server"
)

// StubEngine answers every recognition call with fixed fragments.
type StubEngine struct {
	mu        sync.Mutex
	Fragments []string
	Err       error
	Calls     int
}

func (e *StubEngine) Name() string { return "stub" }

func (e *StubEngine) Recognize(ctx context.Context, _ recognizer.Payload) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Fragments, e.Err
}

// HTTPTestServerWrapper wraps httptest.Server for integration tests.
type HTTPTestServerWrapper struct {
	Server     *httptest.Server
	TestServer *server.Server
	Engine     *StubEngine
}

// Close shuts the test server down.
func (w *HTTPTestServerWrapper) Close() {
	if w.Server != nil {
		w.Server.Close()
	}
}

func defaultServerConfig() server.Config {
	return server.Config{
		CORSOrigin:     "*",
		MaxUploadMB:    16,
		TimeoutSec:     10,
		OverlayEnabled: true,
	}
}

// startServer builds a pipeline around eng (placeholder when nil) and serves
// it through httptest.
func (testCtx *TestContext) startServer(cfg server.Config, eng *StubEngine) error {
	b := pipeline.NewBuilder().WithParallelWorkers(1)
	if eng != nil {
		b = b.WithEngineInstance(eng)
	} else {
		b = b.WithEngine(recognizer.EnginePlaceholder)
	}
	pl, err := b.Build()
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	srv, err := server.NewServer(cfg, pl)
	if err != nil {
		return err
	}
	testCtx.HTTPTestServer = &HTTPTestServerWrapper{
		Server:     httptest.NewServer(srv.Handler()),
		TestServer: srv,
		Engine:     eng,
	}
	return nil
}

func (testCtx *TestContext) theAPIIsRunningWithText(text string) error {
	return testCtx.startServer(defaultServerConfig(), &StubEngine{Fragments: strings.Fields(text)})
}

func (testCtx *TestContext) theAPIIsRunningWithoutEngine() error {
	return testCtx.startServer(defaultServerConfig(), nil)
}

func (testCtx *TestContext) theAPIIsRunningWithFailingEngine() error {
	return testCtx.startServer(defaultServerConfig(), &StubEngine{
		Err: &recognizer.ServiceError{StatusCode: http.StatusServiceUnavailable, Body: "maintenance"},
	})
}

func (testCtx *TestContext) theAPIIsRunningWithRateLimit(perMinute int) error {
	cfg := defaultServerConfig()
	cfg.RateLimitEnabled = true
	cfg.RequestsPerMinute = perMinute
	cfg.RequestsPerDay = 1000
	return testCtx.startServer(cfg, nil)
}

func (testCtx *TestContext) serverURL(path string) (string, error) {
	if testCtx.HTTPTestServer == nil {
		return "", errors.New("label API is not running")
	}
	return testCtx.HTTPTestServer.Server.URL + path, nil
}

func (testCtx *TestContext) do(req *http.Request) error {
	resp, err := testCtx.HTTPTestServer.Server.Client().Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(body)
	testCtx.LastHTTPHeaders = map[string]string{}
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

func (testCtx *TestContext) iGet(path string) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return testCtx.do(req)
}

func (testCtx *TestContext) iPostJSON(path string, doc *godog.DocString) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, strings.NewReader(doc.Content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return testCtx.do(req)
}

func (testCtx *TestContext) uploadPhoto(name, path string, fields map[string]string) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	imgPath, ok := testCtx.Images[name]
	if !ok {
		return fmt.Errorf("unknown fixture %q", name)
	}
	data, err := os.ReadFile(imgPath)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", name+".png")
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return err
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return testCtx.do(req)
}

func (testCtx *TestContext) iUploadPhoto(name, path string) error {
	return testCtx.uploadPhoto(name, path, nil)
}

func (testCtx *TestContext) iUploadPhotoWithFields(name, path string, table *godog.Table) error {
	fields := map[string]string{}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return errors.New("form field table needs two columns")
		}
		fields[row.Cells[0].Value] = row.Cells[1].Value
	}
	return testCtx.uploadPhoto(name, path, fields)
}

func (testCtx *TestContext) iSendTextRequests(n int) error {
	doc := &godog.DocString{Content: `{"text":"나트륨 120mg"}`}
	for range n {
		if err := testCtx.iPostJSON("/nutrition/text", doc); err != nil {
			return err
		}
	}
	return nil
}

func (testCtx *TestContext) theResponseStatusShouldBe(code int) error {
	if testCtx.LastHTTPStatusCode != code {
		return fmt.Errorf("status %d, want %d\nBody: %s", testCtx.LastHTTPStatusCode, code, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseJSONFieldShouldBe(field, want string) error {
	return jsonFieldEquals(testCtx.LastHTTPResponse, field, want)
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, want string) error {
	if got := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]; got != want {
		return fmt.Errorf("header %s is %q, want %q", name, got, want)
	}
	return nil
}

func (testCtx *TestContext) theEngineShouldHaveBeenCalled(n int) error {
	eng := testCtx.HTTPTestServer.Engine
	if eng == nil {
		return errors.New("server runs without a stub engine")
	}
	eng.mu.Lock()
	defer eng.mu.Unlock()
	if eng.Calls != n {
		return fmt.Errorf("engine called %d times, want %d", eng.Calls, n)
	}
	return nil
}

// RegisterServerSteps registers the HTTP API steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the label API is running with recognized text "([^"]*)"$`, testCtx.theAPIIsRunningWithText)
	sc.Step(`^the label API is running without a recognition engine$`, testCtx.theAPIIsRunningWithoutEngine)
	sc.Step(`^the label API is running with a failing recognition engine$`, testCtx.theAPIIsRunningWithFailingEngine)
	sc.Step(`^the label API is running with a limit of (\d+) requests per minute$`, testCtx.theAPIIsRunningWithRateLimit)

	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGet)
	sc.Step(`^I POST to "([^"]*)" with JSON:$`, testCtx.iPostJSON)
	sc.Step(`^I upload the photo "([^"]*)" to "([^"]*)"$`, testCtx.iUploadPhoto)
	sc.Step(`^I upload the photo "([^"]*)" to "([^"]*)" with fields:$`, testCtx.iUploadPhotoWithFields)
	sc.Step(`^I send (\d+) text requests$`, testCtx.iSendTextRequests)

	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response JSON field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseJSONFieldShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
	sc.Step(`^the recognition engine should have been called (\d+) times?$`, testCtx.theEngineShouldHaveBeenCalled)
}
