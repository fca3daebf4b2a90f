package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/GriffinCanCode/seo-render/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/seo-render/internal/render"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorPrefix starts the body of every failed /render response.
const ErrorPrefix = "Errore nel rendering SEO: "

// DefaultMaxBodyBytes caps the /render request body.
const DefaultMaxBodyBytes = 100 * 1024

// Renderer produces rendered HTML for a request.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (string, error)
	ActiveSessions() int64
}

// Handlers contains all HTTP handlers
type Handlers struct {
	renderer     Renderer
	logger       *zap.Logger
	maxBodyBytes int64
}

// NewHandlers creates a new handler set
func NewHandlers(renderer Renderer, logger *zap.Logger, maxBodyBytes int64) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handlers{
		renderer:     renderer,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// Index serves the usage page
func (h *Handlers) Index(c *gin.Context) {
	c.Render(http.StatusOK, usagePage(c.Request.Host))
}

// Render renders the requested URL and returns its HTML
func (h *Handlers) Render(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req render.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, &render.Error{Stage: render.StageValidate, Err: fmt.Errorf("invalid request body: %w", err)})
		return
	}

	// A client disconnect must not abort the browser session half way.
	ctx := context.WithoutCancel(c.Request.Context())

	html, err := h.renderer.Render(ctx, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Health handles health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"active_sessions": h.renderer.ActiveSessions(),
	})
}

func (h *Handlers) fail(c *gin.Context, err error) {
	h.logger.Error("Render failed",
		zap.String("trace_id", tracing.TraceIDFromGin(c)),
		zap.String("stage", string(render.StageOf(err))),
		zap.Error(err),
	)
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "%s%s", ErrorPrefix, err.Error())
}
