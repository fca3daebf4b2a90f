package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/seo-render/internal/api/http"
	"github.com/GriffinCanCode/seo-render/internal/api/middleware"
	"github.com/GriffinCanCode/seo-render/internal/browser"
	"github.com/GriffinCanCode/seo-render/internal/infrastructure/config"
	"github.com/GriffinCanCode/seo-render/internal/infrastructure/logging"
	"github.com/GriffinCanCode/seo-render/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/seo-render/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/seo-render/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/seo-render/internal/render"
)

const serviceName = "seo-render"

// Option customizes server construction.
type Option func(*options)

type options struct {
	launcher browser.Launcher
	logger   *logging.Logger
}

// WithLauncher replaces the go-rod launcher, mainly for tests.
func WithLauncher(l browser.Launcher) Option {
	return func(o *options) { o.launcher = l }
}

// WithLogger uses logger instead of building one from the configuration.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	handler    http.Handler
	httpServer *http.Server
	renderer   *render.Renderer
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	tracer     *tracing.Tracer
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(cfg.Logging, serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	logger.Info("Initializing SEO render server",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.Browser.Environment),
		zap.Duration("nav_timeout", cfg.Render.NavigationTimeout),
		zap.Int64("max_sessions", cfg.Render.MaxSessions),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New(serviceName, logger.Named("tracing").Logger)

	launcher := o.launcher
	if launcher == nil {
		lc, err := browser.NewLaunchConfig(cfg.Browser)
		if err != nil {
			tracer.Close()
			return nil, fmt.Errorf("failed to resolve browser launch config: %w", err)
		}
		if err := lc.CheckExecutable(); err != nil {
			// Renders fail at launch until the binary appears.
			logger.Warn("Browser executable not usable", zap.Error(err))
		}
		logger.Info("Browser launch profile resolved",
			zap.String("profile", string(lc.Profile)),
			zap.String("bin", lc.Bin),
			zap.Int("flags", len(lc.Flags)),
		)
		launcher = browser.NewRodLauncher(lc, logger.Named("browser").Logger)
	}
	if cfg.Browser.BreakerThreshold > 0 {
		breakerLogger := logger.Named("breaker")
		launcher = browser.WithBreaker(launcher, resilience.New("browser-launch", resilience.Settings{
			Threshold: cfg.Browser.BreakerThreshold,
			Cooldown:  cfg.Browser.BreakerCooldown,
			OnStateChange: func(name string, from, to resilience.State) {
				breakerLogger.Warn("Launch circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}))
		logger.Info("Launch circuit breaker enabled",
			zap.Uint32("threshold", cfg.Browser.BreakerThreshold),
			zap.Duration("cooldown", cfg.Browser.BreakerCooldown),
		)
	}

	renderer := render.New(launcher, render.Options{
		NavigationTimeout: cfg.Render.NavigationTimeout,
		MaxSessions:       cfg.Render.MaxSessions,
	}, logger.Named("render").Logger).
		WithMetrics(metrics).
		WithTracer(tracer)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(logging.Middleware(logger.Named("http"), tracing.TraceIDFromGin))
	router.Use(monitoring.Middleware(metrics))
	if cfg.CORS.Enabled {
		logger.Info("CORS enabled", zap.Strings("origins", cfg.CORS.AllowOrigins))
		router.Use(middleware.CORS(middleware.CORSConfigFrom(cfg.CORS)))
	}
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfigFrom(cfg.RateLimit)))
	}

	handlers := apihttp.NewHandlers(renderer, logger.Named("api").Logger, cfg.Render.MaxBodyBytes)

	// Register routes
	router.GET("/", handlers.Index)
	router.POST("/render", handlers.Render)
	router.GET("/health", handlers.Health)
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	var handler http.Handler = router
	if cfg.Server.CompressionEnabled {
		handler = gzhttp.GzipHandler(router)
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server initialized successfully", zap.String("addr", addr))

	return &Server{
		router:     router,
		handler:    handler,
		httpServer: httpServer,
		renderer:   renderer,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
		tracer:     tracer,
	}, nil
}

// Handler returns the root HTTP handler, compression included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the HTTP server and blocks until it stops. It returns nil
// after Shutdown.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight renders until
// ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...",
		zap.Int64("active_sessions", s.renderer.ActiveSessions()),
	)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Graceful shutdown failed", zap.Error(err))
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// Close releases background resources. Call it after Shutdown.
func (s *Server) Close() error {
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return nil
}
