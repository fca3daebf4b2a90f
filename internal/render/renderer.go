package render

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/seo-render/internal/browser"
	"github.com/GriffinCanCode/seo-render/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/seo-render/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/seo-render/internal/shared/id"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultNavigationTimeout bounds navigation when Options leaves it unset.
const DefaultNavigationTimeout = 60 * time.Second

// injectMeta appends one <meta property content> element per pair, in order.
const injectMeta = `(pairs) => {
	for (const { property, content } of pairs) {
		const tag = document.createElement('meta');
		tag.setAttribute('property', property);
		tag.content = content;
		document.head.appendChild(tag);
	}
}`

// Options configures a Renderer.
type Options struct {
	NavigationTimeout time.Duration
	// MaxSessions bounds concurrent browser sessions. Zero means unbounded.
	MaxSessions int64
}

// DefaultOptions returns the default render options.
func DefaultOptions() Options {
	return Options{
		NavigationTimeout: DefaultNavigationTimeout,
	}
}

// Renderer renders pages in a fresh browser session per call.
type Renderer struct {
	launcher browser.Launcher
	opts     Options
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	sem      *semaphore.Weighted
	active   atomic.Int64
}

// New creates a renderer that launches browsers through launcher.
func New(launcher browser.Launcher, opts Options, logger *zap.Logger) *Renderer {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = DefaultNavigationTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Renderer{
		launcher: launcher,
		opts:     opts,
		logger:   logger,
	}
	if opts.MaxSessions > 0 {
		r.sem = semaphore.NewWeighted(opts.MaxSessions)
	}
	return r
}

// WithMetrics records render outcomes and session counts in m.
func (r *Renderer) WithMetrics(m *monitoring.Metrics) *Renderer {
	r.metrics = m
	return r
}

// WithTracer submits one span per render to t.
func (r *Renderer) WithTracer(t *tracing.Tracer) *Renderer {
	r.tracer = t
	return r
}

// ActiveSessions returns the number of browser sessions currently open.
func (r *Renderer) ActiveSessions() int64 {
	return r.active.Load()
}

// Render loads req.URL in a new headless browser, waits for the network to
// settle, appends req.Metadata as meta tags to the head and returns the
// serialized document. The browser is closed before Render returns. Every
// error is a *Error.
func (r *Renderer) Render(ctx context.Context, req Request) (html string, err error) {
	start := time.Now()

	if r.tracer != nil {
		var span *tracing.Span
		span, ctx = r.tracer.StartSpan(ctx, "render")
		span.SetTag("url", req.URL)
		defer func() {
			if err != nil {
				span.SetTag("stage", string(StageOf(err)))
				span.SetError(err)
			}
			span.Finish()
			r.tracer.Submit(span)
		}()
	}

	logger := r.logger.With(
		zap.String("url", req.URL),
		zap.String("trace_id", string(tracing.GetTraceID(ctx))),
	)

	html, err = r.render(ctx, req, logger)
	duration := time.Since(start)

	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordRenderError(string(StageOf(err)), duration)
		}
		return "", err
	}

	r.report(logger, html, req.Metadata, duration)
	if r.metrics != nil {
		r.metrics.RecordRender(duration, len(html), len(req.Metadata))
	}
	return html, nil
}

func (r *Renderer) render(ctx context.Context, req Request, logger *zap.Logger) (html string, err error) {
	if err := req.Validate(); err != nil {
		return "", &Error{Stage: StageValidate, Err: err}
	}

	if r.sem != nil {
		acquireCtx, cancel := context.WithTimeout(ctx, r.opts.NavigationTimeout)
		err := r.sem.Acquire(acquireCtx, 1)
		cancel()
		if err != nil {
			return "", &Error{Stage: StageAcquire, Err: fmt.Errorf("wait for browser slot: %w", err)}
		}
		defer r.sem.Release(1)
	}

	b, err := r.launcher.Launch(ctx)
	if err != nil {
		return "", &Error{Stage: StageLaunch, Err: err}
	}

	sessionID := id.NewSessionID()
	logger = logger.With(zap.String("session_id", sessionID.String()))
	r.sessionOpened()
	logger.Debug("Browser session opened")

	defer func() {
		closeErr := b.Close()
		r.sessionClosed()
		if closeErr == nil {
			logger.Debug("Browser session closed")
			return
		}
		if err != nil {
			logger.Warn("Browser close failed after render error",
				zap.Error(closeErr),
				zap.String("stage", string(StageOf(err))),
			)
			return
		}
		html, err = "", &Error{Stage: StageClose, Err: closeErr}
	}()

	page, err := b.NewPage(ctx)
	if err != nil {
		return "", &Error{Stage: StagePage, Err: err}
	}

	if err := page.Navigate(ctx, req.URL, r.opts.NavigationTimeout); err != nil {
		return "", &Error{Stage: StageNavigate, Err: err}
	}

	if len(req.Metadata) > 0 {
		if err := page.Evaluate(ctx, injectMeta, req.Metadata); err != nil {
			return "", &Error{Stage: StageInject, Err: err}
		}
	}

	html, err = page.Content(ctx)
	if err != nil {
		return "", &Error{Stage: StageSerialize, Err: err}
	}
	return html, nil
}

func (r *Renderer) report(logger *zap.Logger, html string, injected Metadata, duration time.Duration) {
	summary, err := Summarize(html, injected)
	if err != nil {
		logger.Warn("Could not inspect rendered document", zap.Error(err))
		return
	}

	logger.Info("Render completed",
		zap.Duration("duration", duration),
		zap.Int("bytes", len(html)),
		zap.String("title", summary.Title),
		zap.Int("meta_tags", summary.MetaTags),
		zap.Int("injected", len(injected)),
	)
	if len(summary.Missing) > 0 {
		logger.Warn("Injected meta tags missing from rendered document",
			zap.Int("missing", len(summary.Missing)),
			zap.Any("properties", summary.Missing),
		)
	}
}

func (r *Renderer) sessionOpened() {
	r.active.Add(1)
	if r.metrics != nil {
		r.metrics.SessionOpened()
	}
}

func (r *Renderer) sessionClosed() {
	r.active.Add(-1)
	if r.metrics != nil {
		r.metrics.SessionClosed()
	}
}
