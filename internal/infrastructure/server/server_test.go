package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/seo-render/internal/infrastructure/config"
	"github.com/GriffinCanCode/seo-render/internal/infrastructure/logging"
	"github.com/GriffinCanCode/seo-render/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/seo-render/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func testConfig() *config.Config {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Logging.Development = true
	cfg.Server.Port = "0"
	cfg.Server.Host = "127.0.0.1"
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, s *testutil.Session) *Server {
	t.Helper()
	srv, err := NewServer(cfg, WithLauncher(s.Launcher), WithLogger(logging.NewNop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func renderRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestServerIndex(t *testing.T) {
	srv := newTestServer(t, testConfig(), testutil.NewSession(t))

	req := httptest.NewRequest(http.MethodGet, "http://localhost:4000/", nil)
	w := do(srv, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "curl -X POST http://localhost:4000/render")
}

func TestServerRender(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>App</title><meta property="og:title" content="Home"></head><body></body></html>`
	s := testutil.NewSession(t).ExpectRender(page)
	srv := newTestServer(t, testConfig(), s)

	w := do(srv, renderRequest(`{"url":"https://example.com","metadata":{"og:title":"Home"}}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, page, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(tracing.HeaderTraceID))
	s.AssertClosedOnce(t)
}

func TestServerRenderFailure(t *testing.T) {
	s := testutil.NewSession(t)
	s.ExpectLaunch().ExpectPage().ExpectClose(nil)
	s.Page.On("Navigate", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("net::ERR_NAME_NOT_RESOLVED")).Once()
	srv := newTestServer(t, testConfig(), s)

	w := do(srv, renderRequest(`{"url":"http://nonexistent.invalid"}`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Errore nel rendering SEO: navigate: net::ERR_NAME_NOT_RESOLVED", w.Body.String())
	s.AssertClosedOnce(t)
}

func TestServerHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, testConfig(), testutil.NewSession(t))

	w := do(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","active_sessions":0}`, w.Body.String())

	w = do(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "seo_http_requests_total")
	assert.Contains(t, w.Body.String(), "seo_uptime_seconds")
}

func TestServerMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	srv := newTestServer(t, cfg, testutil.NewSession(t))

	w := do(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerCompressesLargeDocuments(t *testing.T) {
	page := "<!DOCTYPE html><html><head></head><body>" + strings.Repeat("<p>contenuto</p>", 500) + "</body></html>"
	s := testutil.NewSession(t).ExpectRender(page)
	srv := newTestServer(t, testConfig(), s)

	req := renderRequest(`{"url":"https://example.com"}`)
	req.Header.Set("Accept-Encoding", "gzip")
	w := do(srv, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, page, string(body))
}

func TestServerCompressionDisabled(t *testing.T) {
	page := "<html><body>" + strings.Repeat("x", 4096) + "</body></html>"
	cfg := testConfig()
	cfg.Server.CompressionEnabled = false
	srv := newTestServer(t, cfg, testutil.NewSession(t).ExpectRender(page))

	req := renderRequest(`{"url":"https://example.com"}`)
	req.Header.Set("Accept-Encoding", "gzip")
	w := do(srv, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, page, w.Body.String())
}

func TestServerRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1
	srv := newTestServer(t, cfg, testutil.NewSession(t))

	first := httptest.NewRequest(http.MethodGet, "/health", nil)
	first.RemoteAddr = "10.1.1.1:5000"
	assert.Equal(t, http.StatusOK, do(srv, first).Code)

	second := httptest.NewRequest(http.MethodGet, "/health", nil)
	second.RemoteAddr = "10.1.1.1:5000"
	assert.Equal(t, http.StatusTooManyRequests, do(srv, second).Code)
}

func TestServerCORS(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.Enabled = true
	srv := newTestServer(t, cfg, testutil.NewSession(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := do(srv, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerLaunchBreaker(t *testing.T) {
	cfg := testConfig()
	cfg.Browser.BreakerThreshold = 1
	cfg.Browser.BreakerCooldown = time.Minute

	s := testutil.NewSession(t)
	s.Launcher.On("Launch", mock.Anything).Return(nil, errors.New("no such file")).Once()
	srv := newTestServer(t, cfg, s)

	w := do(srv, renderRequest(`{"url":"https://example.com"}`))
	assert.Equal(t, "Errore nel rendering SEO: launch: no such file", w.Body.String())

	w = do(srv, renderRequest(`{"url":"https://example.com"}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Errore nel rendering SEO: launch: circuit breaker is open", w.Body.String())
	s.Launcher.AssertNumberOfCalls(t, "Launch", 1)
}

func TestNewServerWithMissingProductionBinary(t *testing.T) {
	cfg := testConfig()
	cfg.Browser.Environment = "production"
	cfg.Browser.Bin = "/nonexistent/chromium"

	srv, err := NewServer(cfg, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	defer srv.Close()

	assert.NotNil(t, srv.Handler())
}

func TestNewServerRejectsBadBrowserArgs(t *testing.T) {
	cfg := testConfig()
	cfg.Browser.Args = "not-a-flag"

	_, err := NewServer(cfg, WithLogger(logging.NewNop()))
	assert.Error(t, err)
}

func TestNewServerBuildsLoggerFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Logging.Level = "warn"

	srv, err := NewServer(cfg, WithLauncher(testutil.NewSession(t).Launcher))
	require.NoError(t, err)
	defer srv.Close()

	assert.False(t, srv.logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, srv.logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewServerRejectsBadLogLevel(t *testing.T) {
	cfg := testConfig()
	cfg.Logging.Level = "loud"

	_, err := NewServer(cfg, WithLauncher(testutil.NewSession(t).Launcher))
	assert.Error(t, err)
}

func TestServerRunAndShutdown(t *testing.T) {
	srv := newTestServer(t, testConfig(), testutil.NewSession(t))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}
