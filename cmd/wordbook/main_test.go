package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/wordbook/internal/config"
	"github.com/go-scripts/wordbook/internal/export"
	"github.com/go-scripts/wordbook/internal/progress"
)

func TestApplyFlags(t *testing.T) {
	cfg := &config.Config{
		Wordbook: config.WordbookConfig{
			URL:        "https://learn.dict.naver.com/wordbook/jakodict/#/my/main",
			Collection: "단어",
			Pages:      1,
			OutputDir:  ".",
			FileName:   "word_list.csv",
		},
		Log: config.LogConfig{Level: "info", Format: "text"},
	}

	applyFlags(cfg, CLIFlags{
		Name:        []string{" ", "JLPT", "N5"},
		Pages:       4,
		Output:      "exports/jlpt",
		Headless:    true,
		NoLoginWait: true,
		Debug:       true,
		MetricsAddr: ":9090",
	})

	assert.Equal(t, "https://learn.dict.naver.com/wordbook/jakodict/#/my/main", cfg.Wordbook.URL)
	assert.Equal(t, "JLPT", cfg.Wordbook.Collection)
	assert.Equal(t, 4, cfg.Wordbook.Pages)
	assert.Equal(t, "exports", cfg.Wordbook.OutputDir)
	assert.Equal(t, "jlpt", cfg.Wordbook.FileName)
	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Wordbook.SkipLogin)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestApplyFlagsKeepsConfig(t *testing.T) {
	cfg := &config.Config{Wordbook: config.WordbookConfig{Collection: "단어", Pages: 3}}
	applyFlags(cfg, CLIFlags{})
	assert.Equal(t, "단어", cfg.Wordbook.Collection)
	assert.Equal(t, 3, cfg.Wordbook.Pages)
	assert.False(t, cfg.Wordbook.SkipLogin)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "page", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"page":2`)
}

func TestRenderEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "info", Format: "logfmt"}, &buf)
	tracker := progress.NewTracker()
	tracker.SetTotalPages(2)
	status := testStatusLine(io.Discard)

	rep := progress.NewReporter(8)
	rep.Debug("dropped by level")
	rep.Info("reading page", "page", 1)
	rep.Page(1, 1, 20)
	rep.Close()

	render(rep.Events(), logger, tracker, status)

	out := buf.String()
	assert.NotContains(t, out, "dropped by level")
	assert.Contains(t, out, "reading page")
	assert.Contains(t, out, "rows=20")
	assert.Equal(t, 0.5, tracker.Percent())
	assert.Contains(t, status.suffix(), "1/2 pages")
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}

func TestWaitForLogin(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, waitForLogin(context.Background(), strings.NewReader("\n"), &out))
	assert.Contains(t, out.String(), "Sign in")

	require.NoError(t, waitForLogin(context.Background(), strings.NewReader(""), io.Discard))
}

func TestWaitForLoginCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, pw := io.Pipe()
	defer pw.Close()

	err := waitForLogin(ctx, pr, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintSummary(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var buf bytes.Buffer
	printSummary(&buf, &export.Result{
		Status:       export.StatusPartial,
		Requested:    5,
		PagesVisited: 2,
		Rows:         3,
		Path:         "word_list.csv",
		Started:      started,
		Finished:     started.Add(12 * time.Second),
	})
	assert.Equal(t, "Saved 3 words from 2 of 5 page(s) to word_list.csv [partial, 12s]\n", buf.String())

	buf.Reset()
	printSummary(&buf, &export.Result{Status: export.StatusEmpty, PagesVisited: 1, Started: started, Finished: started})
	assert.Contains(t, buf.String(), "nothing saved")
}
