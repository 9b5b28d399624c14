// Package injection delivers the final transcription text into the focused
// input target. Backends are tried in order until one succeeds.
package injection

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Injector is invoked exactly once per completed session.
type Injector interface {
	Inject(ctx context.Context, text string) error
}

// Backend is one delivery mechanism (typing tool or clipboard).
type Backend interface {
	Name() string
	Available() error
	Inject(ctx context.Context, text string, timeout time.Duration) error
}

type Config struct {
	Backends []string
	Timeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Backends: []string{"ydotool", "wtype", "clipboard"},
		Timeout:  5 * time.Second,
	}
}

type injector struct {
	backends []Backend
	timeout  time.Duration
}

// NewInjector builds the fallback chain from the configured backend names.
// Unknown names are skipped with a log line.
func NewInjector(config Config) Injector {
	var backends []Backend
	for _, name := range config.Backends {
		switch name {
		case "ydotool":
			backends = append(backends, &ydotoolBackend{})
		case "wtype":
			backends = append(backends, &wtypeBackend{})
		case "clipboard":
			backends = append(backends, &clipboardBackend{})
		default:
			log.Printf("injection: unknown backend %q, skipping", name)
		}
	}
	return &injector{backends: backends, timeout: config.Timeout}
}

func NewDefaultInjector() Injector {
	return NewInjector(DefaultConfig())
}

func (i *injector) Inject(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("cannot inject empty text")
	}
	if len(i.backends) == 0 {
		return fmt.Errorf("no injection backends configured")
	}

	var lastErr error
	for _, b := range i.backends {
		if err := b.Available(); err != nil {
			log.Printf("injection: backend %s unavailable: %v", b.Name(), err)
			lastErr = err
			continue
		}

		if err := b.Inject(ctx, text, i.timeout); err != nil {
			log.Printf("injection: backend %s failed: %v", b.Name(), err)
			lastErr = err
			continue
		}

		log.Printf("injection: delivered %d chars via %s", len(text), b.Name())
		return nil
	}

	return fmt.Errorf("all injection backends failed: %w", lastErr)
}
