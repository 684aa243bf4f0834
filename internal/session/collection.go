package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/go-scripts/wordbook/internal/types"
)

const (
	folderListSelector = "#main_folder"
	folderItemSelector = "#main_folder ul.list_folder li.item_folder._item_folder"
	folderLinkSelector = "a.folder_inner._btn_cards_link"
	folderNameSelector = "div.folder_tit span.name"
	cardsURLFragment   = "#/my/cards"

	scrollSettle = 300 * time.Millisecond
)

// SelectCollection opens the named collection from the wordbook list.
// Names are compared exactly after trimming; the first match in list order wins.
// It returns false, nil when the list, the name or the card page does not show
// up. An error means there is no browser or ctx is done.
func (s *Session) SelectCollection(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCtx == nil {
		return false, types.ErrNoSession
	}

	ok, err := s.selectCollection(ctx, name)
	if err != nil && ctx.Err() == nil {
		s.metrics.IncError(types.ErrorLabel(err))
		if errors.Is(err, context.DeadlineExceeded) {
			s.rep.Warn("timed out reading the collection list")
		} else {
			s.rep.Error("collection selection failed", "err", err)
		}
		ok, err = false, nil
	}
	s.metrics.IncSelection(ok)
	return ok, err
}

func (s *Session) selectCollection(ctx context.Context, name string) (bool, error) {
	s.rep.Info("looking for collection", "name", name)

	ok, err := s.probe(ctx, s.cfg.FolderListTimeout, chromedp.WaitVisible(folderListSelector, chromedp.ByQuery))
	if err != nil || !ok {
		if err == nil {
			s.rep.Warn("collection list did not appear, check that you are signed in")
		}
		return false, err
	}

	var items []*cdp.Node
	if err := s.run(ctx, s.cfg.FolderListTimeout,
		chromedp.Nodes(folderItemSelector, &items, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	); err != nil {
		return false, err
	}
	if len(items) == 0 {
		s.rep.Warn("collection list is empty")
		return false, nil
	}

	var (
		target  *cdp.Node
		matches int
	)
	for i, item := range items {
		link, label, err := s.folderLabel(ctx, item)
		if err != nil {
			return false, err
		}
		if link == nil {
			s.rep.Info("collection entry has no name, skipping", "index", i+1)
			continue
		}

		s.rep.Info("found collection", "index", i+1, "name", label)
		if label != name {
			continue
		}
		matches++
		if target == nil {
			target = link
		}
	}

	if target == nil {
		s.rep.Warn("collection not found, check the exact name", "name", name)
		return false, nil
	}
	if matches > 1 {
		s.rep.Warn("several collections share this name, using the first", "name", name, "matches", matches)
	}

	s.rep.Info("opening collection", "name", name)
	ids := []cdp.NodeID{target.NodeID}
	if err := s.run(ctx, s.cfg.FolderListTimeout,
		chromedp.ScrollIntoView(ids, chromedp.ByNodeID),
		chromedp.ActionFunc(func(ctx context.Context) error { return settle(ctx, scrollSettle) }),
		chromedp.Click(ids, chromedp.ByNodeID),
	); err != nil {
		return false, err
	}

	ok, err = s.probe(ctx, s.cfg.CardsURLTimeout, waitJS(`location.href.includes("`+cardsURLFragment+`")`))
	if err == nil && ok {
		ok, err = s.probe(ctx, s.cfg.SectionTimeout, chromedp.WaitVisible(sectionSelector, chromedp.ByQuery))
	}
	if err != nil || !ok {
		if err == nil {
			s.rep.Warn("card page did not load in time")
		}
		return false, err
	}

	s.page = 1
	s.rep.Info("collection opened", "name", name)
	return true, nil
}

// folderLabel returns the link of a list entry and its visible name.
// A nil link means the entry has no name element.
func (s *Session) folderLabel(ctx context.Context, item *cdp.Node) (*cdp.Node, string, error) {
	var links, names []*cdp.Node
	if err := s.run(ctx, s.cfg.FolderListTimeout,
		chromedp.Nodes(folderLinkSelector, &links, chromedp.ByQuery, chromedp.FromNode(item), chromedp.AtLeast(0)),
	); err != nil {
		return nil, "", err
	}
	if len(links) == 0 {
		return nil, "", nil
	}

	if err := s.run(ctx, s.cfg.FolderListTimeout,
		chromedp.Nodes(folderNameSelector, &names, chromedp.ByQuery, chromedp.FromNode(links[0]), chromedp.AtLeast(0)),
	); err != nil {
		return nil, "", err
	}
	if len(names) == 0 {
		return nil, "", nil
	}

	var label string
	if err := s.run(ctx, s.cfg.FolderListTimeout,
		chromedp.Text([]cdp.NodeID{names[0].NodeID}, &label, chromedp.ByNodeID),
	); err != nil {
		return nil, "", err
	}
	return links[0], strings.TrimSpace(label), nil
}
