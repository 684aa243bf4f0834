// Package session drives the Chrome window that holds the signed-in wordbook.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/go-scripts/wordbook/internal/config"
	"github.com/go-scripts/wordbook/internal/metrics"
	"github.com/go-scripts/wordbook/internal/progress"
	"github.com/go-scripts/wordbook/internal/types"
)

const (
	landmarkSelector = "#wrap"
	sectionSelector  = "#section_word_card"
	readyStateJS     = `document.readyState === "complete"`
)

// Session owns one browser handle and the page position of the word card list.
// All methods are safe for concurrent use; browser work is serialised.
type Session struct {
	cfg     config.BrowserConfig
	rep     *progress.Reporter
	metrics *metrics.Metrics

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	page          int
}

// New creates a Session. No browser is started until Open.
func New(cfg config.BrowserConfig, rep *progress.Reporter, m *metrics.Metrics) *Session {
	return &Session{
		cfg:     cfg,
		rep:     rep,
		metrics: m,
		page:    1,
	}
}

// Open navigates to url, reusing the running browser when there is one.
// If the running browser cannot reach the page it is closed and a new one is
// started. Failure to start or navigate leaves the session closed.
func (s *Session) Open(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCtx != nil {
		s.rep.Info("navigating open browser", "url", url)
		ok, err := s.probe(ctx, s.cfg.ReloadTimeout, chromedp.Navigate(url), waitJS(readyStateJS))
		if ok {
			s.rep.Info("page loaded", "url", url)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			err = types.ErrTimeout{Op: "reload"}
		}
		s.rep.Warn("open browser could not load page, starting a new one", "err", err)
		s.closeLocked()
	}

	s.rep.Info("starting browser", "headless", s.cfg.Headless)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), s.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(s.debugf),
		chromedp.WithErrorf(s.debugf),
	)
	s.allocCancel = allocCancel
	s.browserCtx = browserCtx
	s.browserCancel = browserCancel
	s.page = 1

	// start the browser on its own context so it outlives per-call deadlines
	if err := chromedp.Run(browserCtx); err != nil {
		s.closeLocked()
		s.metrics.IncError(types.ErrorLabel(types.ErrSession{Op: "start", Err: err}))
		s.rep.Error("browser failed to start", "err", err)
		return types.ErrSession{Op: "start", Err: err}
	}

	s.rep.Info("navigating", "url", url)
	if err := s.expect(ctx, s.cfg.PageLoadTimeout, "page load", chromedp.Navigate(url)); err != nil {
		return s.failOpen(ctx, "navigate", err)
	}
	if err := s.expect(ctx, s.cfg.LandmarkTimeout, "landmark", chromedp.WaitReady(landmarkSelector, chromedp.ByQuery)); err != nil {
		return s.failOpen(ctx, "landmark", err)
	}

	s.rep.Info("page loaded, sign in in the browser window", "url", url)
	return nil
}

// expect is probe for steps where absence is a failure.
func (s *Session) expect(ctx context.Context, timeout time.Duration, op string, actions ...chromedp.Action) error {
	ok, err := s.probe(ctx, timeout, actions...)
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrTimeout{Op: op, Err: context.DeadlineExceeded}
	}
	return nil
}

func (s *Session) failOpen(ctx context.Context, op string, err error) error {
	s.closeLocked()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	sessErr := types.ErrSession{Op: op, Err: err}
	s.metrics.IncError(types.ErrorLabel(sessErr))
	s.rep.Error("could not open page", "err", err)
	return sessErr
}

// Active reports whether a browser handle exists.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browserCtx != nil
}

// CurrentPage returns the word card page the browser is on.
func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// CurrentURL returns the address of the open tab.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var location string
	if err := s.run(ctx, s.cfg.ReadyTimeout, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("current url: %w", err)
	}
	return location, nil
}

// PageHTML returns the full rendered markup of the open tab.
func (s *Session) PageHTML(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var markup string
	if err := s.run(ctx, s.cfg.ReadyTimeout, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("page html: %w", err)
	}
	return markup, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	return nil
}

func (s *Session) closeLocked() {
	if s.browserCtx == nil {
		return
	}

	s.rep.Info("closing browser")
	if err := chromedp.Cancel(s.browserCtx); err != nil {
		s.rep.Warn("browser did not close cleanly", "err", err)
	}
	s.browserCancel()
	s.allocCancel()

	s.browserCtx = nil
	s.browserCancel = nil
	s.allocCancel = nil
}

func (s *Session) debugf(format string, args ...interface{}) {
	s.rep.Debug(fmt.Sprintf(format, args...), "source", "chromedp")
}
