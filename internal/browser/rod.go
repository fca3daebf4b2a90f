package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// serializeDocument returns the doctype plus the root element's markup.
const serializeDocument = `() => {
	let html = '';
	if (document.doctype) {
		html = new XMLSerializer().serializeToString(document.doctype);
	}
	if (document.documentElement) {
		html += document.documentElement.outerHTML;
	}
	return html;
}`

// ErrNavigationTimeout is wrapped by navigation errors caused by the deadline.
var ErrNavigationTimeout = errors.New("navigation timeout exceeded")

// RodLauncher launches one Chromium process per call through go-rod.
type RodLauncher struct {
	cfg    LaunchConfig
	logger *zap.Logger
}

// NewRodLauncher creates a launcher for the resolved configuration.
func NewRodLauncher(cfg LaunchConfig, logger *zap.Logger) *RodLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RodLauncher{cfg: cfg, logger: logger}
}

// Launch starts a headless browser and connects to it over the DevTools protocol.
func (l *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	return l.launch(ctx, l.newLauncher(ctx))
}

func (l *RodLauncher) launch(ctx context.Context, ln *launcher.Launcher) (Browser, error) {
	controlURL, err := ln.Launch()
	if err != nil {
		ln.Kill()
		// A started process leaves its user data dir behind.
		if ln.PID() != 0 {
			ln.Cleanup()
		}
		return nil, fmt.Errorf("launch browser (%s profile): %w", l.cfg.Profile, err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		ln.Kill()
		ln.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	l.logger.Debug("Browser launched",
		zap.String("profile", string(l.cfg.Profile)),
		zap.String("bin", ln.Get(flags.Bin)),
		zap.Int("pid", ln.PID()),
	)

	return &rodBrowser{browser: b, launcher: ln, logger: l.logger}, nil
}

func (l *RodLauncher) newLauncher(ctx context.Context) *launcher.Launcher {
	ln := launcher.New().
		Context(ctx).
		Headless(true).
		Leakless(l.cfg.Leakless)

	if l.cfg.Bin != "" {
		ln = ln.Bin(l.cfg.Bin)
	}
	for _, f := range l.cfg.Flags {
		if f.Value == "" {
			ln = ln.Set(flags.Flag(f.Name))
		} else {
			ln = ln.Set(flags.Flag(f.Name), f.Value)
		}
	}
	return ln
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	logger   *zap.Logger
}

func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return &rodPage{page: p}, nil
}

// Close asks the browser to exit, kills it if that fails, then removes the
// temporary profile directory.
func (b *rodBrowser) Close() error {
	err := b.browser.Context(context.Background()).Close()
	if err != nil {
		b.logger.Warn("Graceful browser close failed, killing process",
			zap.Int("pid", b.launcher.PID()),
			zap.Error(err),
		)
		b.launcher.Kill()
		err = fmt.Errorf("close browser: %w", err)
	}
	b.launcher.Cleanup()
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	page := p.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	// Subscribe before navigating so the lifecycle event cannot be missed.
	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := page.Navigate(url); err != nil {
		return navigationError(err, timeout)
	}
	wait()

	// wait returns silently when the deadline fires.
	if err := page.GetContext().Err(); err != nil {
		return navigationError(err, timeout)
	}
	return nil
}

func (p *rodPage) Evaluate(ctx context.Context, js string, args ...any) error {
	if _, err := p.page.Context(ctx).Eval(js, args...); err != nil {
		return fmt.Errorf("evaluate script: %w", err)
	}
	return nil
}

func (p *rodPage) Content(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(serializeDocument)
	if err != nil {
		return "", fmt.Errorf("serialize document: %w", err)
	}
	return res.Value.Str(), nil
}

func navigationError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %d ms", ErrNavigationTimeout, timeout.Milliseconds())
	}
	return err
}
