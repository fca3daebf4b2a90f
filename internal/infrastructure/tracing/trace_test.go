package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestTracer(t *testing.T) (*Tracer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return New("test", zap.New(core)), logs
}

func TestStartSpanPropagatesTrace(t *testing.T) {
	tracer, _ := newTestTracer(t)
	defer tracer.Close()

	parent, ctx := tracer.StartSpan(context.Background(), "parent")
	child, childCtx := tracer.StartSpan(ctx, "child")

	assert.NotEmpty(t, parent.TraceID)
	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)

	assert.Equal(t, parent.TraceID, GetTraceID(childCtx))
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))
}

func TestSubmitLogsSpans(t *testing.T) {
	tracer, logs := newTestTracer(t)

	ok, _ := tracer.StartSpan(context.Background(), "ok")
	ok.Finish()
	tracer.Submit(ok)

	failed, _ := tracer.StartSpan(context.Background(), "failed")
	failed.SetError(errors.New("boom"))
	failed.Finish()
	tracer.Submit(failed)

	tracer.Close()

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "failed", entries[1].ContextMap()["operation"])
	assert.Equal(t, int64(500), entries[1].ContextMap()["status"])
}

func TestCloseIsIdempotent(t *testing.T) {
	tracer, _ := newTestTracer(t)
	tracer.Close()
	assert.NotPanics(t, tracer.Close)
}

func TestInjectExtractRoundTrip(t *testing.T) {
	tracer, _ := newTestTracer(t)
	defer tracer.Close()

	span, ctx := tracer.StartSpan(context.Background(), "op")

	headers := map[string]string{}
	InjectTraceContext(ctx, headers)

	traceID, spanID := ExtractTraceContext(headers)
	assert.Equal(t, span.TraceID, traceID)
	assert.Equal(t, span.SpanID, spanID)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, _ := newTestTracer(t)
	defer tracer.Close()

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("issues a trace ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
		assert.NotEmpty(t, w.Header().Get(HeaderSpanID))
		assert.Equal(t, TraceID(w.Header().Get(HeaderTraceID)), seen)
	})

	t.Run("honours an incoming trace ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderTraceID, "req_upstream")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req_upstream", w.Header().Get(HeaderTraceID))
		assert.Equal(t, TraceID("req_upstream"), seen)
	})
}
