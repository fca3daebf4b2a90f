package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GriffinCanCode/seo-render/internal/render"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, req render.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockRenderer) ActiveSessions() int64 {
	return int64(m.Called().Int(0))
}

func setupRouter(r Renderer, maxBody int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandlers(r, nil, maxBody)
	router.GET("/", h.Index)
	router.POST("/render", h.Render)
	router.GET("/health", h.Health)
	return router
}

func postRender(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIndexShowsCurlExampleForHost(t *testing.T) {
	router := setupRouter(new(mockRenderer), 0)

	req := httptest.NewRequest(http.MethodGet, "http://seo.example.com:4000/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "API SEO per SPA")
	assert.Contains(t, body, "curl -X POST http://seo.example.com:4000/render")
	assert.Contains(t, body, `"og:title": "Titolo Test"`)
}

func TestIndexEscapesHost(t *testing.T) {
	router := setupRouter(new(mockRenderer), 0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "<script>x</script>"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<script>x</script>")
	assert.Contains(t, w.Body.String(), "&lt;script&gt;")
}

func TestRenderSuccess(t *testing.T) {
	r := new(mockRenderer)
	want := render.Request{
		URL: "https://example.com",
		Metadata: render.Metadata{
			{Property: "og:title", Content: "Titolo Test"},
			{Property: "og:type", Content: "website"},
		},
	}
	r.On("Render", mock.Anything, want).Return("<!DOCTYPE html><html></html>", nil).Once()

	w := postRender(setupRouter(r, 0),
		`{"url":"https://example.com","metadata":{"og:title":"Titolo Test","og:type":"website"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<!DOCTYPE html><html></html>", w.Body.String())
	r.AssertExpectations(t)
}

func TestRenderFailure(t *testing.T) {
	r := new(mockRenderer)
	cause := &render.Error{Stage: render.StageNavigate, Err: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	r.On("Render", mock.Anything, mock.Anything).Return("", cause).Once()

	w := postRender(setupRouter(r, 0), `{"url":"http://nonexistent.invalid"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "Errore nel rendering SEO: navigate: net::ERR_NAME_NOT_RESOLVED", w.Body.String())
}

func TestRenderRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		maxBody int64
	}{
		{name: "empty body", body: ""},
		{name: "malformed json", body: `{"url":`},
		{name: "missing url", body: `{"metadata":{"og:title":"x"}}`},
		{name: "nested metadata", body: `{"url":"https://example.com","metadata":{"og":{"title":"x"}}}`},
		{name: "too large", body: `{"url":"https://example.com","metadata":{"og:description":"` + strings.Repeat("a", 256) + `"}}`, maxBody: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(mockRenderer)
			w := postRender(setupRouter(r, tt.maxBody), tt.body)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.True(t, strings.HasPrefix(w.Body.String(), ErrorPrefix), w.Body.String())
			r.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
		})
	}
}

func TestRenderIgnoresClientCancellation(t *testing.T) {
	r := new(mockRenderer)
	r.On("Render", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).
		Return("<html></html>", nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`{"url":"https://example.com"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(r, 0).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	r.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	r := new(mockRenderer)
	r.On("ActiveSessions").Return(2)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	setupRouter(r, 0).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","active_sessions":2}`, w.Body.String())
}
