package session

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/go-scripts/wordbook/internal/types"
)

const pollInterval = 200 * time.Millisecond

// probe runs actions against the browser bounded by timeout.
//
// An expired bound is a negative answer, not a failure: the element or state
// is treated as absent and probe returns false, nil. Cancellation of ctx and
// any other browser error are returned as errors.
func (s *Session) probe(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) (bool, error) {
	err := s.run(ctx, timeout, actions...)
	switch {
	case err == nil:
		return true, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return false, nil
	default:
		return false, err
	}
}

// run executes actions on the browser tab with a deadline derived from the
// browser context, cancelled early when ctx is done.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if s.browserCtx == nil {
		return types.ErrNoSession
	}

	runCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && runCtx.Err() == context.DeadlineExceeded {
		return context.DeadlineExceeded
	}
	return err
}

// waitJS polls a boolean expression until it holds. Evaluation errors, such
// as a context destroyed by navigation, count as "not yet".
func waitJS(expr string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			var ok bool
			if err := chromedp.Evaluate(expr, &ok).Do(ctx); err == nil && ok {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
}

// settle pauses for d unless ctx is done first.
func settle(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
