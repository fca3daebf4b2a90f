package browser

import (
	"context"
	"time"
)

// Launcher starts a new, fully isolated headless browser.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser is one running browser process. Close must be called exactly once.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single tab inside a Browser.
type Page interface {
	// Navigate loads url and blocks until the network is almost idle
	// (at most 2 open connections for 500ms) or timeout elapses.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// Evaluate runs a JavaScript function expression in the page with the
	// given JSON-serializable arguments.
	Evaluate(ctx context.Context, js string, args ...any) error

	// Content serializes the current DOM, doctype included.
	Content(ctx context.Context) (string, error)
}
