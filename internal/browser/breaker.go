package browser

import (
	"context"

	"github.com/GriffinCanCode/seo-render/internal/infrastructure/resilience"
)

type breakerLauncher struct {
	next    Launcher
	breaker *resilience.Breaker
}

// WithBreaker guards next so that, after repeated launch failures, Launch
// returns resilience.ErrCircuitOpen without starting a process.
func WithBreaker(next Launcher, breaker *resilience.Breaker) Launcher {
	return &breakerLauncher{next: next, breaker: breaker}
}

func (l *breakerLauncher) Launch(ctx context.Context) (Browser, error) {
	var b Browser
	err := l.breaker.Do(func() error {
		var err error
		b, err = l.next.Launch(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}
