// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: unsampled JSON output for machine parsing
//   - Development: colored console output for humans (LOG_DEV=true)
//
// Middleware adds a gin access log that records method, path, status,
// latency and the request's trace ID.
//
// Example Usage:
//
//	logger, err := logging.New(cfg.Logging, "seo-render")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger.Info("Server starting", zap.String("port", cfg.Server.Port))
//	logger.Error("Render failed", zap.Error(err))
package logging
