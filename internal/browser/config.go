package browser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/GriffinCanCode/seo-render/internal/infrastructure/config"
	"github.com/go-rod/rod/lib/launcher"
)

// Profile names a launch profile.
type Profile string

const (
	ProfileProduction  Profile = "production"
	ProfileDevelopment Profile = "development"
)

// DefaultProductionBin is where serverless images ship their Chromium build.
const DefaultProductionBin = "/opt/chromium"

// ServerlessArgs are the flags used for the packaged browser in production.
// They trade isolation for a small memory footprint inside a single container.
var ServerlessArgs = []string{
	"--allow-running-insecure-content",
	"--autoplay-policy=user-gesture-required",
	"--disable-component-update",
	"--disable-domain-reliability",
	"--disable-features=AudioServiceOutOfProcess,IsolateOrigins,site-per-process",
	"--disable-print-preview",
	"--disable-setuid-sandbox",
	"--disable-site-isolation-trials",
	"--disable-speech-api",
	"--disable-dev-shm-usage",
	"--disk-cache-size=33554432",
	"--hide-scrollbars",
	"--ignore-gpu-blocklist",
	"--in-process-gpu",
	"--mute-audio",
	"--no-default-browser-check",
	"--no-pings",
	"--no-sandbox",
	"--no-zygote",
	"--single-process",
	"--use-gl=swiftshader",
	"--window-size=1920,1080",
}

// Flag is one parsed browser command line flag.
type Flag struct {
	Name  string
	Value string
}

func (f Flag) String() string {
	if f.Value == "" {
		return "--" + f.Name
	}
	return "--" + f.Name + "=" + f.Value
}

// LaunchConfig is the resolved, environment independent launch description.
type LaunchConfig struct {
	Profile Profile
	// Bin is the browser executable. Empty lets the launcher download its
	// pinned Chromium revision.
	Bin      string
	Flags    []Flag
	Leakless bool
}

// LookPathFunc finds a locally installed browser.
type LookPathFunc func() (string, bool)

// NewLaunchConfig resolves cfg once, at startup, using the launcher's
// browser lookup for the development profile.
func NewLaunchConfig(cfg config.BrowserConfig) (LaunchConfig, error) {
	return resolveLaunchConfig(cfg, launcher.LookPath)
}

func resolveLaunchConfig(cfg config.BrowserConfig, lookPath LookPathFunc) (LaunchConfig, error) {
	extra, err := ParseFlags(strings.Fields(cfg.Args))
	if err != nil {
		return LaunchConfig{}, err
	}

	lc := LaunchConfig{Leakless: cfg.Leakless}

	if cfg.IsProduction() {
		lc.Profile = ProfileProduction
		lc.Bin = cfg.Bin
		if lc.Bin == "" {
			lc.Bin = DefaultProductionBin
		}
		base, err := ParseFlags(ServerlessArgs)
		if err != nil {
			return LaunchConfig{}, err
		}
		lc.Flags = append(base, extra...)
		return lc, nil
	}

	lc.Profile = ProfileDevelopment
	lc.Bin = cfg.Bin
	if lc.Bin == "" && lookPath != nil {
		if found, ok := lookPath(); ok {
			lc.Bin = found
		}
	}
	lc.Flags = extra
	return lc, nil
}

// ParseFlags parses "--name" and "--name=value" strings.
func ParseFlags(args []string) ([]Flag, error) {
	flags := make([]Flag, 0, len(args))
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") || len(arg) == 2 {
			return nil, fmt.Errorf("invalid browser flag %q: must look like --name or --name=value", arg)
		}
		name, value, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if name == "" {
			return nil, fmt.Errorf("invalid browser flag %q: empty name", arg)
		}
		flags = append(flags, Flag{Name: name, Value: value})
	}
	return flags, nil
}

// CheckExecutable reports whether the configured executable exists. An
// empty Bin is always fine since the launcher downloads a browser on demand.
func (c LaunchConfig) CheckExecutable() error {
	if c.Bin == "" {
		return nil
	}
	info, err := os.Stat(c.Bin)
	if err != nil {
		return fmt.Errorf("browser executable %s: %w", c.Bin, err)
	}
	if info.IsDir() {
		return errors.New("browser executable " + c.Bin + " is a directory")
	}
	return nil
}
