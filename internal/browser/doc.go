/*
Package browser launches isolated headless Chromium sessions.

Every call to Launcher.Launch starts a fresh browser process with its own
temporary profile. Nothing is pooled or shared between callers, and the
caller must Close the returned Browser exactly once.

# Profiles

  - production: packaged binary (BROWSER_BIN or /opt/chromium) with
    ServerlessArgs plus any BROWSER_ARGS
  - development: BROWSER_BIN, a locally installed Chrome/Chromium, or a
    downloaded revision when neither is found; only BROWSER_ARGS are passed

The profile is resolved once by NewLaunchConfig at startup.

# Usage

	lc, err := browser.NewLaunchConfig(cfg.Browser)
	launcher := browser.NewRodLauncher(lc, logger)

	b, err := launcher.Launch(ctx)
	defer b.Close()
	page, err := b.NewPage(ctx)
	err = page.Navigate(ctx, url, 60*time.Second)
	html, err := page.Content(ctx)
*/
package browser
