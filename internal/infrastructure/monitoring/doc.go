/*
Package monitoring provides Prometheus metrics for the render service.

# Metrics

  - seo_http_*: request count, latency and sizes per route template
  - seo_renders_total / seo_render_duration_seconds: render outcomes
  - seo_render_errors_total{stage}: which step of a render failed
  - seo_browser_sessions_active / _total: headless browser sessions
  - seo_meta_tags_injected_total, seo_rendered_document_bytes
  - Go runtime and process collectors

Each Metrics value owns a private registry, exposed through Handler.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
