package export

import (
	"context"
	"strings"
	"sync"

	"github.com/go-scripts/wordbook/internal/types"
)

// fakeBrowser serves canned markup, one string per page.
type fakeBrowser struct {
	mu          sync.Mutex
	active      bool
	pages       []string
	page        int
	collections []string
	pageErr     map[int]error

	advanceCalls int
	onAdvance    func()

	entered chan struct{}
	release chan struct{}
}

func newFakeBrowser(pages ...string) *fakeBrowser {
	return &fakeBrowser{
		active:      true,
		pages:       pages,
		page:        1,
		collections: []string{"단어"},
	}
}

func (f *fakeBrowser) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeBrowser) CurrentPage() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

func (f *fakeBrowser) SelectCollection(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return false, types.ErrNoSession
	}
	for _, c := range f.collections {
		if c == name {
			f.page = 1
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBrowser) WaitReady(ctx context.Context) error {
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
		<-f.release
	}
	return ctx.Err()
}

func (f *fakeBrowser) WaitCards(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pageErr[f.page]; err != nil {
		return false, err
	}
	return strings.Contains(f.current(), "inner_card"), nil
}

func (f *fakeBrowser) PageHTML(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current(), nil
}

func (f *fakeBrowser) AdvancePage(ctx context.Context) (bool, error) {
	f.mu.Lock()
	f.advanceCalls++
	hook := f.onAdvance
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.page >= len(f.pages) {
		return false, nil
	}
	f.page++
	return true, nil
}

func (f *fakeBrowser) current() string {
	if f.page < 1 || f.page > len(f.pages) {
		return ""
	}
	return f.pages[f.page-1]
}

func card(title, definition string) string {
	return `<div class="inner_card"><div class="item_word"><a class="title">` + title + `</a></div>` +
		`<div class="wrap_mean"><ul class="list_mean"><li class="item_mean"><div class="mean_desc">` +
		`<em class="part_speech">동사</em><p class="cont">` + definition + `</p></div></li></ul></div></div>`
}

func cardPage(cards ...string) string {
	return `<html><body><div id="wrap"><div id="section_word_card">` + strings.Join(cards, "") + `</div></div></body></html>`
}
