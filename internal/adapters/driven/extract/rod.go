package extract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/logger"
)

// Ensure RodRenderer implements the interface.
var _ driven.BrowserRenderer = (*RodRenderer)(nil)

// DefaultRenderTimeout bounds one page render.
const DefaultRenderTimeout = 30 * time.Second

// RodConfig configures the headless browser.
type RodConfig struct {
	// RemoteURL is the DevTools WebSocket URL of a running browser.
	// Empty launches a local headless Chrome on first use.
	RemoteURL string

	// Timeout bounds navigation and load for one page (default: 30s).
	Timeout time.Duration

	// UserAgent overrides the browser's user agent when set.
	UserAgent string
}

// RodRenderer renders pages with go-rod. The browser is started lazily and
// shared between renders; every render opens and closes its own page.
type RodRenderer struct {
	cfg RodConfig

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewRodRenderer creates a renderer. No browser is started until Render.
func NewRodRenderer(cfg RodConfig) *RodRenderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRenderTimeout
	}
	return &RodRenderer{cfg: cfg}
}

// Render navigates to rawURL, waits for the load event and returns the DOM
// serialised as HTML. The page is closed on every path.
func (r *RodRenderer) Render(ctx context.Context, rawURL string) ([]byte, error) {
	b, err := r.connect()
	if err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("%w: browser: open page: %w", domain.ErrExtractionFailed, err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Debug("browser: close page: %v", err)
		}
	}()

	navCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	p := page.Context(navCtx)

	if r.cfg.UserAgent != "" {
		if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.cfg.UserAgent}); err != nil {
			logger.Debug("browser: set user agent: %v", err)
		}
	}

	if err := p.Navigate(rawURL); err != nil {
		return nil, r.renderError(ctx, "navigate", err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, r.renderError(ctx, "wait load", err)
	}

	html, err := p.HTML()
	if err != nil {
		return nil, r.renderError(ctx, "read html", err)
	}
	return []byte(html), nil
}

// Close shuts the browser down. Render fails after Close.
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
	return err
}

func (r *RodRenderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("%w: browser: renderer is closed", domain.ErrExtractionFailed)
	}
	if r.browser != nil {
		return r.browser, nil
	}

	wsURL := r.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true).Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("%w: browser: launch: %w", domain.ErrExtractionFailed, err)
		}
		wsURL = u
		r.lnch = l
		logger.Debug("browser: launched local chrome at %s", wsURL)
	} else {
		logger.Debug("browser: connecting to %s", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if r.lnch != nil {
			r.lnch.Kill()
			r.lnch.Cleanup()
			r.lnch = nil
		}
		return nil, fmt.Errorf("%w: browser: connect: %w", domain.ErrExtractionFailed, err)
	}
	r.browser = b
	return b, nil
}

// renderError reports caller cancellation as is and everything else as an
// extraction failure.
func (r *RodRenderer) renderError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: browser: %s: %w", domain.ErrExtractionFailed, op, err)
}
