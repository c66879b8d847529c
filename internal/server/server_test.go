package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jdstudio/internal/backend"
	"github.com/jonathan/jdstudio/internal/reveal"
	"github.com/jonathan/jdstudio/internal/server/middleware"
	"github.com/jonathan/jdstudio/internal/server/ratelimit"
	"github.com/jonathan/jdstudio/internal/types"
)

// fakeBackend stands in for the job-description API.
type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	generate func(form *types.JobForm) (*types.JobDescription, error)
	upload   func(filename string, data []byte) (*types.JobDescription, error)
	login    func(req *types.LoginRequest) (*types.LoginResponse, error)
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Generate(_ context.Context, token string, form *types.JobForm) (*types.JobDescription, error) {
	f.record("generate:" + token)
	if f.generate == nil {
		return &types.JobDescription{Title: form.Title, FullJD: "About the role"}, nil
	}
	return f.generate(form)
}

func (f *fakeBackend) UploadPDF(_ context.Context, token, filename string, r io.Reader) (*types.JobDescription, error) {
	f.record("upload:" + token)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if f.upload == nil {
		return &types.JobDescription{Title: "Uploaded", FullJD: "Parsed"}, nil
	}
	return f.upload(filename, data)
}

func (f *fakeBackend) Login(_ context.Context, req *types.LoginRequest) (*types.LoginResponse, error) {
	f.record("login:" + req.Username)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if f.login == nil {
		return &types.LoginResponse{Token: "tok"}, nil
	}
	return f.login(req)
}

// fakeExporter returns fixed bytes or a fixed error.
type fakeExporter struct {
	pdf []byte
	err error
}

func (e *fakeExporter) Export(_ context.Context, text, _ string) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty")
	}
	return e.pdf, nil
}

// runningServer is a Server serving on a loopback listener.
type runningServer struct {
	*Server
	URL string

	stopOnce sync.Once
	stopErr  error
	cancel   context.CancelFunc
	errc     chan error
}

// stop cancels the server and waits for Serve to return.
func (rs *runningServer) stop(t *testing.T) error {
	t.Helper()
	rs.stopOnce.Do(func() {
		rs.cancel()
		select {
		case rs.stopErr = <-rs.errc:
		case <-time.After(5 * time.Second):
			rs.stopErr = errors.New("server did not stop")
		}
	})
	return rs.stopErr
}

func startServer(t *testing.T, cfg Config, configure ...func(*Server)) *runningServer {
	t.Helper()

	if cfg.Backend == nil {
		cfg.Backend = &fakeBackend{}
	}
	if cfg.RevealInterval == 0 {
		cfg.RevealInterval = time.Millisecond
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = &ratelimit.Config{Enabled: false}
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 2 * time.Second
	}

	s, err := New(cfg)
	require.NoError(t, err)
	for _, fn := range configure {
		fn(s)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rs := &runningServer{Server: s, URL: "http://" + ln.Addr().String(), cancel: cancel, errc: make(chan error, 1)}
	go func() { rs.errc <- s.Serve(ctx, ln) }()

	t.Cleanup(func() { assert.NoError(t, rs.stop(t)) })
	return rs
}

// request sends a request with an opaque bearer token and the given session id.
func request(t *testing.T, method, url, session string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer tok")
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	return req
}

func postJSON(t *testing.T, url, session string, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := request(t, http.MethodPost, url, session, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// sseEvent is one parsed Server-Sent Event.
type sseEvent struct {
	Name string
	Data json.RawMessage
}

// sseReader reads events from a stream one at a time.
type sseReader struct {
	r *bufio.Reader
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{r: bufio.NewReader(r)}
}

// next returns the next event, or io.EOF when the stream ends.
func (s *sseReader) next() (sseEvent, error) {
	var ev sseEvent
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			return ev, err
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.Name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.Data = json.RawMessage(strings.TrimPrefix(line, "data: "))
		case line == "" && ev.Name != "":
			return ev, nil
		}
	}
}

// all reads events until the stream ends.
func (s *sseReader) all(t *testing.T) []sseEvent {
	t.Helper()
	var events []sseEvent
	for {
		ev, err := s.next()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(Config{Backend: &fakeBackend{}})
	assert.ErrorIs(t, err, reveal.ErrInvalidInterval)

	_, err = New(Config{RevealInterval: -time.Millisecond, Backend: &fakeBackend{}})
	var intervalErr *reveal.IntervalError
	assert.ErrorAs(t, err, &intervalErr)

	_, err = New(Config{RevealInterval: time.Millisecond})
	assert.Error(t, err)
}

func TestNew_SharesOneValidator(t *testing.T) {
	s, err := New(Config{
		RevealInterval: time.Millisecond,
		Backend:        &fakeBackend{},
		RateLimit:      &ratelimit.Config{Enabled: false},
	})
	require.NoError(t, err)
	require.NotNil(t, s.validator)
	v := s.validator

	tooLong := strings.Repeat("x", 201)
	for i := 0; i < 2; i++ {
		body := strings.NewReader(`{"text":"# Title","role":"` + tooLong + `"}`)
		w := httptest.NewRecorder()
		s.handleFormat(w, httptest.NewRequest(http.MethodPost, "/jd/format", body))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Same(t, v, s.validator)
}

// TestHealthEndpoint tests the /health endpoint
func TestHealthEndpoint(t *testing.T) {
	rs := startServer(t, Config{})

	resp, err := http.Get(rs.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestIndexPage(t *testing.T) {
	rs := startServer(t, Config{})

	resp, err := http.Get(rs.URL + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("form#login-form").Length())
	assert.Equal(t, 1, doc.Find("form#jd-form input[name=title]").Length())
	assert.Equal(t, 1, doc.Find(`form#upload-form input[name="`+backend.UploadField+`"]`).Length())
	assert.Equal(t, 1, doc.Find("#reveal").Length())

	missing, err := http.Get(rs.URL + "/missing")
	require.NoError(t, err)
	_ = missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

// TestCORSMiddleware tests CORS headers are set
func TestCORSMiddleware(t *testing.T) {
	s := &Server{}

	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header Access-Control-Allow-Origin: *")
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Error("expected Authorization in Access-Control-Allow-Headers")
	}
}

// TestCORSMiddleware_OPTIONS tests OPTIONS preflight request
func TestCORSMiddleware_OPTIONS(t *testing.T) {
	s := &Server{}

	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("should not reach here")) //nolint:errcheck
	}))

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for OPTIONS, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Error("OPTIONS response should have empty body")
	}
}

// TestLoggingMiddleware tests that logging middleware passes through
func TestLoggingMiddleware(t *testing.T) {
	s := &Server{}

	called := false
	handler := s.withLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("logging middleware should call next handler")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rs := startServer(t, Config{RateLimit: &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/auth/", Method: "POST", Limit: 1, Window: time.Minute, Burst: 1},
		},
	}})

	login := types.LoginRequest{Username: "asha", Password: "secret"}

	first := postJSON(t, rs.URL+"/auth/login", "", login)
	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, "1", first.Header.Get("X-RateLimit-Limit"))

	second := postJSON(t, rs.URL+"/auth/login", "", login)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.NotEmpty(t, second.Header.Get("Retry-After"))

	var body map[string]any
	decodeBody(t, second, &body)
	assert.Equal(t, "rate_limit_exceeded", body["error"])

	health, err := http.Get(rs.URL + "/health")
	require.NoError(t, err)
	_ = health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

// TestSSEWriter tests SSE event writing
func TestSSEWriter(t *testing.T) {
	w := httptest.NewRecorder()

	sse, err := NewSSEWriter(w)
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	require.NoError(t, sse.WriteTick(3, "abc"))
	sse.WriteError(http.StatusBadGateway, "backend down")
	sse.WriteCancelled("superseded")

	events := newSSEReader(w.Body).all(t)
	require.Len(t, events, 3)

	assert.Equal(t, EventTick, events[0].Name)
	assert.JSONEq(t, `{"cursor":3,"delta":"abc"}`, string(events[0].Data))
	assert.Equal(t, EventError, events[1].Name)
	assert.JSONEq(t, `{"error":"backend down","status":502}`, string(events[1].Data))
	assert.Equal(t, EventCancelled, events[2].Name)
	assert.JSONEq(t, `{"reason":"superseded"}`, string(events[2].Data))
}

// TestJSONResponse tests jsonResponse helper
func TestJSONResponse(t *testing.T) {
	s := &Server{}
	w := httptest.NewRecorder()

	s.jsonResponse(w, http.StatusOK, map[string]string{"key": "value"})

	if w.Header().Get("Content-Type") != "application/json" {
		t.Error("expected Content-Type: application/json")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if resp["key"] != "value" {
		t.Errorf("expected key='value', got '%s'", resp["key"])
	}
}

// TestErrorResponse tests errorResponse helper
func TestErrorResponse(t *testing.T) {
	s := &Server{}
	w := httptest.NewRecorder()

	s.errorResponse(w, http.StatusBadRequest, "test error")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if resp["error"] != "test error" {
		t.Errorf("expected error='test error', got '%s'", resp["error"])
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	rs := startServer(t, Config{})

	require.NoError(t, rs.stop(t))

	select {
	case <-rs.loop.Done():
	default:
		t.Error("reveal loop should be stopped after Serve returns")
	}
	_, err := http.Get(rs.URL + "/health")
	assert.Error(t, err)
}
