package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/wordbook/internal/config"
	"github.com/go-scripts/wordbook/internal/progress"
	"github.com/go-scripts/wordbook/internal/types"
)

const wordbookPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"></head><body>
<div id="wrap">
  <div id="main_folder">
    <ul class="list_folder">
      <li class="item_folder _item_folder"><a class="folder_inner _btn_cards_link" href="#/my/cards?id=1"><div class="folder_tit"><span class="name"> 단어 </span></div></a></li>
      <li class="item_folder _item_folder"><a class="folder_inner _btn_cards_link" href="#/my/cards?id=2"><div class="folder_tit"><span class="name">JLPT</span></div></a></li>
      <li class="item_folder _item_folder"><span>unnamed</span></li>
      <li class="item_folder _item_folder"><a class="folder_inner _btn_cards_link" href="#/my/cards?id=3"><div class="folder_tit"><span class="name">단어</span></div></a></li>
    </ul>
  </div>
  <div id="cards" style="display:none">
    <div id="section_word_card"></div>
    <div id="page_area">
      <ul id="page_list">
        <li><button class="page_num is-active">1</button></li>
        <li><button class="page_num">2</button></li>
      </ul>
    </div>
  </div>
</div>
<script>
function card(title, mean) {
  return '<div class="inner_card"><div class="item_word"><a class="title">' + title + '</a></div>' +
    '<div class="wrap_mean"><ul class="list_mean"><li class="item_mean"><div class="mean_desc"><p class="cont">' + mean +
    '</p></div></li></ul></div></div>';
}
const pages = {
  1: [card("たべる [食べる]", "먹다"), card("いく", "가다")],
  2: [card("みる [見る]", "보다")],
};
function render(n) {
  document.getElementById("section_word_card").innerHTML = pages[n].join("");
  document.querySelectorAll("#page_list button").forEach(function (b) {
    b.classList.toggle("is-active", b.textContent.trim() === String(n));
  });
}
function route() {
  const onCards = location.hash.indexOf("#/my/cards") === 0;
  document.getElementById("main_folder").style.display = onCards ? "none" : "block";
  document.getElementById("cards").style.display = onCards ? "block" : "none";
  if (onCards) render(1);
}
window.addEventListener("hashchange", function () { setTimeout(route, 100); });
document.querySelectorAll("#page_list button").forEach(function (b) {
  b.addEventListener("click", function () {
    setTimeout(function () { render(Number(b.textContent.trim())); }, 100);
  });
});
route();
</script>
</body></html>`

const blankPage = `<!DOCTYPE html><html><body><p>nothing here</p></body></html>`

func chromePath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no Chrome binary found")
	return ""
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.URL.Path == "/blank" {
			_, _ = w.Write([]byte(blankPage))
			return
		}
		_, _ = w.Write([]byte(wordbookPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T) config.BrowserConfig {
	cfg := config.DefaultBrowserConfig()
	cfg.Headless = true
	cfg.NoSandbox = true
	cfg.ExecPath = chromePath(t)
	cfg.PageLoadTimeout = 20 * time.Second
	cfg.LandmarkTimeout = 5 * time.Second
	cfg.FolderListTimeout = 5 * time.Second
	cfg.CardsURLTimeout = 5 * time.Second
	cfg.SectionTimeout = 5 * time.Second
	cfg.PagerTimeout = 3 * time.Second
	cfg.ActivePageTimeout = 5 * time.Second
	cfg.RerenderTimeout = 5 * time.Second
	cfg.CardsTimeout = 3 * time.Second
	return cfg
}

// recordEvents drains rep and returns a function that closes it and hands
// back everything it received.
func recordEvents(rep *progress.Reporter) func() []progress.Event {
	var events []progress.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range rep.Events() {
			events = append(events, ev)
		}
	}()
	return func() []progress.Event {
		rep.Close()
		<-done
		return events
	}
}

func countMessages(events []progress.Event, msg string) int {
	n := 0
	for _, ev := range events {
		if ev.Message == msg {
			n++
		}
	}
	return n
}

func TestSessionWalk(t *testing.T) {
	cfg := testConfig(t)
	srv := testServer(t)
	ctx := context.Background()

	rep := progress.NewReporter(1024)
	stop := recordEvents(rep)

	s := New(cfg, rep, nil)
	defer s.Close()

	require.NoError(t, s.Open(ctx, srv.URL+"/#/my/main"))
	assert.True(t, s.Active())
	assert.Equal(t, 1, s.CurrentPage())

	ok, err := s.SelectCollection(ctx, "없는 단어장")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.SelectCollection(ctx, "단어")
	require.NoError(t, err)
	require.True(t, ok)

	location, err := s.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Contains(t, location, "#/my/cards?id=1")

	require.NoError(t, s.WaitReady(ctx))
	ok, err = s.WaitCards(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	markup, err := s.PageHTML(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(markup, `class="inner_card"`))
	assert.Contains(t, markup, "食べる")

	ok, err = s.AdvancePage(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, s.CurrentPage())

	markup, err = s.PageHTML(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(markup, `class="inner_card"`))
	assert.Contains(t, markup, "見る")

	ok, err = s.AdvancePage(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, s.CurrentPage())

	require.NoError(t, s.Close())
	events := stop()
	assert.Equal(t, 1, countMessages(events, "several collections share this name, using the first"))
	for _, ev := range events {
		if ev.Message == "several collections share this name, using the first" {
			assert.Contains(t, ev.Fields, 2)
		}
	}
}

func TestSessionReuseAndClose(t *testing.T) {
	cfg := testConfig(t)
	srv := testServer(t)
	ctx := context.Background()

	rep := progress.NewReporter(1024)
	stop := recordEvents(rep)

	s := New(cfg, rep, nil)
	require.NoError(t, s.Open(ctx, srv.URL+"/#/my/main"))
	require.NoError(t, s.Open(ctx, srv.URL+"/?again=1#/my/main"))
	assert.True(t, s.Active())

	location, err := s.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Contains(t, location, "again=1")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.False(t, s.Active())

	events := stop()
	assert.Equal(t, 1, countMessages(events, "starting browser"))
	assert.Equal(t, 1, countMessages(events, "navigating open browser"))
	assert.Zero(t, countMessages(events, "open browser could not load page, starting a new one"))

	_, err = s.AdvancePage(ctx)
	assert.True(t, errors.Is(err, types.ErrNoSession))
	_, err = s.SelectCollection(ctx, "단어")
	assert.True(t, errors.Is(err, types.ErrNoSession))
	_, err = s.WaitCards(ctx)
	assert.True(t, errors.Is(err, types.ErrNoSession))
	_, err = s.PageHTML(ctx)
	assert.True(t, errors.Is(err, types.ErrNoSession))
}

func TestSessionOpenWithoutLandmark(t *testing.T) {
	cfg := testConfig(t)
	cfg.LandmarkTimeout = time.Second
	srv := testServer(t)

	s := New(cfg, nil, nil)
	defer s.Close()

	err := s.Open(context.Background(), srv.URL+"/blank")
	require.Error(t, err)

	var sessErr types.ErrSession
	require.True(t, errors.As(err, &sessErr))
	assert.Equal(t, "landmark", sessErr.Op)
	assert.Equal(t, "timeout", types.ErrorLabel(err))
	assert.False(t, s.Active())
}

func TestPageButtonXPath(t *testing.T) {
	xpath := pageButtonXPath(3)
	assert.Contains(t, xpath, "ul[@id='page_list']")
	assert.Contains(t, xpath, "normalize-space(text())='3'")
	assert.Contains(t, xpathNodeJS(xpath), `"//*[@id='page_area']`)
}

func TestProbeWithoutBrowser(t *testing.T) {
	s := New(config.DefaultBrowserConfig(), nil, nil)
	ok, err := s.probe(context.Background(), time.Second)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, types.ErrNoSession))
	assert.False(t, s.Active())
	assert.Equal(t, 1, s.CurrentPage())
}
