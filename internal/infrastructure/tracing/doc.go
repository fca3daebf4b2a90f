/*
Package tracing provides lightweight request tracing.

# Overview

Every HTTP request gets a trace ID (a req_* ULID) and a span. The render
operation opens child spans for its browser session, so a single failed
render can be followed across the access log, the span log and the error
log through one trace_id field.

# Usage

	tracer := tracing.New("seo-render", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "render")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

# Propagation

  - X-Trace-ID: identifier for the whole request flow
  - X-Span-ID: identifier of the caller's span

Incoming headers are honoured, and the request's IDs are always returned in
the response headers.

Spans are collected through a buffered channel (1000 spans) and logged by a
single goroutine; spans are dropped with a warning when the buffer is full.
*/
package tracing
