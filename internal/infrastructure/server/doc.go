/*
Package server wires configuration, logging, metrics, tracing, the browser
launcher and the render handlers into one HTTP server.

Middleware order: recovery, tracing, access log, metrics, then the opt-in
CORS and rate limiter. Responses are gzip compressed when
COMPRESSION_ENABLED is set and the client accepts it.

# Usage

	srv, err := server.NewServer(cfg)
	go srv.Run()
	...
	srv.Shutdown(ctx)
	srv.Close()
*/
package server
