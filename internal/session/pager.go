package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/go-scripts/wordbook/internal/types"
)

const (
	pagerSelector = "#page_area"
	cardsSelector = "#section_word_card .inner_card"

	clickSettle  = 200 * time.Millisecond
	renderSettle = 1 * time.Second
	cardsSettle  = 500 * time.Millisecond
)

// button states reported by pageButtonJS
const (
	buttonAbsent   = "absent"
	buttonInactive = "inactive"
	buttonReady    = "ready"
)

// pageButtonXPath finds the numbered pagination button for page n.
func pageButtonXPath(n int) string {
	return fmt.Sprintf(`//*[@id='page_area']//ul[@id='page_list']//button[contains(@class,'page_num') and normalize-space(text())='%d']`, n)
}

func xpathNodeJS(xpath string) string {
	return `document.evaluate(` + strconv.Quote(xpath) + `, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`
}

func pageButtonJS(xpath string) string {
	return `(() => {
	const b = ` + xpathNodeJS(xpath) + `;
	if (!b) return "` + buttonAbsent + `";
	const style = window.getComputedStyle(b);
	const rect = b.getBoundingClientRect();
	if (b.disabled || style.display === "none" || style.visibility === "hidden" || (rect.width === 0 && rect.height === 0)) {
		return "` + buttonInactive + `";
	}
	return "` + buttonReady + `";
})()`
}

// AdvancePage clicks the pagination button for the next page and waits for
// it to become the active page. It returns false when there is no such button,
// the button cannot be clicked, or the new page does not render in time.
// The page counter only moves on success.
func (s *Session) AdvancePage(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCtx == nil {
		return false, types.ErrNoSession
	}

	ok, err := s.advancePage(ctx)
	if err != nil && ctx.Err() == nil {
		s.metrics.IncError(types.ErrorLabel(err))
		s.rep.Error("page navigation failed", "page", s.page+1, "err", err)
		ok, err = false, nil
	}
	s.metrics.IncAdvance(ok)
	return ok, err
}

func (s *Session) advancePage(ctx context.Context) (bool, error) {
	target := s.page + 1
	s.rep.Info("moving to next page", "page", target)

	ok, err := s.probe(ctx, s.cfg.PagerTimeout, chromedp.WaitReady(pagerSelector, chromedp.ByQuery))
	if err != nil || !ok {
		if err == nil {
			s.rep.Info("no pagination on this page", "page", s.page)
		}
		return false, err
	}

	xpath := pageButtonXPath(target)
	var state string
	if err := s.run(ctx, s.cfg.PagerTimeout, chromedp.Evaluate(pageButtonJS(xpath), &state)); err != nil {
		return false, err
	}
	switch state {
	case buttonAbsent:
		s.rep.Info("no button for the next page, probably the last page", "page", target)
		return false, nil
	case buttonInactive:
		s.rep.Warn("next page button is not clickable", "page", target)
		return false, nil
	}

	if err := s.run(ctx, s.cfg.PagerTimeout,
		chromedp.Evaluate(xpathNodeJS(xpath)+`.scrollIntoView(true)`, nil),
		chromedp.ActionFunc(func(ctx context.Context) error { return settle(ctx, clickSettle) }),
		chromedp.Evaluate(xpathNodeJS(xpath)+`.click()`, nil),
	); err != nil {
		return false, err
	}

	active := xpath + `[contains(@class,'is-active')]`
	ok, err = s.probe(ctx, s.cfg.ActivePageTimeout, waitJS(xpathNodeJS(active)+` !== null`))
	if err == nil && ok {
		ok, err = s.probe(ctx, s.cfg.RerenderTimeout, chromedp.WaitVisible(sectionSelector, chromedp.ByQuery))
	}
	if err != nil || !ok {
		if err == nil {
			s.rep.Warn("timed out waiting for the next page", "page", target)
		}
		return false, err
	}
	if err := settle(ctx, renderSettle); err != nil {
		return false, err
	}

	s.page = target
	s.rep.Info("moved to page", "page", s.page)
	return true, nil
}

// WaitReady waits for the document to finish loading.
func (s *Session) WaitReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.probe(ctx, s.cfg.ReadyTimeout, waitJS(readyStateJS))
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrTimeout{Op: "ready", Err: context.DeadlineExceeded}
	}
	return nil
}

// WaitCards waits for the card section and at least one card. False means
// there is nothing to read on this page.
func (s *Session) WaitCards(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.probe(ctx, s.cfg.SectionTimeout, chromedp.WaitVisible(sectionSelector, chromedp.ByQuery))
	if err != nil {
		return false, err
	}
	if !ok {
		s.rep.Warn("card section is not visible, check the sign-in and the page", "page", s.page)
		return false, nil
	}

	ok, err = s.probe(ctx, s.cfg.CardsTimeout, chromedp.WaitVisible(cardsSelector, chromedp.ByQuery))
	if err != nil {
		return false, err
	}
	if !ok {
		s.rep.Info("no word cards on this page", "page", s.page)
		return false, nil
	}

	if err := settle(ctx, cardsSettle); err != nil {
		return false, err
	}
	return true, nil
}
