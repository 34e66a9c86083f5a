package cli

import (
	"context"
	"fmt"

	"github.com/grantcarthew/storagectl/internal/browser"
	"github.com/grantcarthew/storagectl/internal/cdp"
	"github.com/grantcarthew/storagectl/internal/storage"
)

// Target is an open session plus the Storage binding over it.
type Target struct {
	Session *cdp.Session
	Storage *storage.Domain

	browser *browser.Browser
	shared  bool
}

// Close ends the session and stops a launched browser. Closing a target
// shared with the REPL is a no-op.
func (t *Target) Close() {
	if t.shared {
		return
	}
	t.Session.Close("storagectl: command finished")
	if t.browser != nil {
		t.browser.Close()
	}
}

// SessionFactory opens sessions for commands.
type SessionFactory interface {
	Open(ctx context.Context, cfg Config) (*Target, error)
}

type defaultFactory struct{}

func (defaultFactory) Open(ctx context.Context, cfg Config) (*Target, error) {
	opts := []cdp.Option{
		cdp.WithLogger(logger),
		cdp.WithTimeout(cfg.Timeout),
		cdp.WithEventBuffer(cfg.EventBuffer),
	}

	if cfg.Launch {
		b, err := browser.Start(ctx, browser.LaunchOptions{
			Binary:   cfg.Chrome,
			Headless: cfg.Headless,
			Port:     cfg.Port,
		})
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		debugf("launched chrome pid=%d at %s", b.PID(), b.Addr())

		s, err := cdp.Dial(ctx, b.WebSocketURL(), opts...)
		if err != nil {
			b.Close()
			return nil, err
		}
		return &Target{Session: s, Storage: storage.New(s), browser: b}, nil
	}

	wsURL, err := browser.ResolveEndpoint(ctx, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("resolve endpoint %s: %w", cfg.Endpoint, err)
	}
	debugf("dialing %s", wsURL)

	s, err := cdp.Dial(ctx, wsURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Target{Session: s, Storage: storage.New(s)}, nil
}

// sessionFactory is the package-level factory, replaceable for testing.
var sessionFactory SessionFactory = defaultFactory{}

// replTarget is the REPL's long-lived target; commands reuse it when set.
var replTarget *Target

// SetSessionFactory sets the session factory (for testing).
func SetSessionFactory(f SessionFactory) {
	sessionFactory = f
}

// ResetSessionFactory resets to the default factory.
func ResetSessionFactory() {
	sessionFactory = defaultFactory{}
}

// openTarget returns the REPL's target or opens a new one.
func openTarget(ctx context.Context) (*Target, error) {
	if replTarget != nil {
		return replTarget, nil
	}
	return sessionFactory.Open(ctx, config)
}

// commandContext bounds a one-shot command by the configured timeout.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), config.Timeout)
}
