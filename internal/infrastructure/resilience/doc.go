/*
Package resilience provides a consecutive-failure circuit breaker.

The render service wraps browser launches with it: when Chromium cannot be
started several times in a row, requests fail immediately with
ErrCircuitOpen instead of spawning another doomed process, until the
cooldown lets a single probe through.

# Usage

	breaker := resilience.New("browser-launch", resilience.Settings{
		Threshold: 3,
		Cooldown:  30 * time.Second,
	})

	err := breaker.Do(func() error {
		b, err = launcher.Launch(ctx)
		return err
	})
*/
package resilience
