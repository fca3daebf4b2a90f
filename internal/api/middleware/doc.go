// Package middleware provides opt-in HTTP middleware for the render API:
// CORS through gin-contrib/cors and per-client rate limiting through
// golang.org/x/time/rate.
//
// Both are disabled by default (CORS_ENABLED, RATE_LIMIT_ENABLED).
package middleware
