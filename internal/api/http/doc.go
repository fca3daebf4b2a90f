// Package http provides the HTTP handlers of the SEO render API.
//
// Endpoints:
//   - GET /: usage page with a curl example for the requesting host
//   - POST /render: {"url": ..., "metadata": {...}} to rendered HTML
//   - GET /health: liveness and open browser session count
//
// Every /render failure, including a malformed body, answers 500 with a
// text/plain body of ErrorPrefix followed by the error message.
//
// Example Usage:
//
//	handlers := http.NewHandlers(renderer, logger, cfg.Render.MaxBodyBytes)
//	router.GET("/", handlers.Index)
//	router.POST("/render", handlers.Render)
package http
