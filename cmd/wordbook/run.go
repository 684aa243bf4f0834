package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/wordbook/internal/config"
	"github.com/go-scripts/wordbook/internal/export"
	"github.com/go-scripts/wordbook/internal/extract"
	"github.com/go-scripts/wordbook/internal/metrics"
	"github.com/go-scripts/wordbook/internal/progress"
	"github.com/go-scripts/wordbook/internal/session"
	"github.com/go-scripts/wordbook/internal/types"
)

const loginPrompt = "Sign in to the dictionary in the browser window (finish any two-step verification), then press Enter to start the export."

// browserSession is the browser the command keeps open across jobs.
type browserSession interface {
	export.Browser
	Open(ctx context.Context, url string) error
}

// run opens the browser, waits for sign-in and exports every job in order.
// The browser is closed on every return path.
func run(ctx context.Context, cfg *config.Config, jobs []export.Job, logger *log.Logger, status *statusLine, in io.Reader, out io.Writer) error {
	m := metrics.New()
	stopMetrics := serveMetrics(cfg.Metrics.Addr, m, logger)
	defer stopMetrics()

	rep := progress.NewReporter(256)
	tracker := progress.NewTracker()

	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		render(rep.Events(), logger, tracker, status)
	}()
	defer func() {
		rep.Close()
		<-rendered
	}()

	sess := session.New(cfg.Browser, rep, m)
	defer sess.Close()

	status.Start(" starting browser")
	err := sess.Open(ctx, cfg.Wordbook.URL)
	status.Stop()
	if err != nil {
		return fmt.Errorf("open browser: %w", err)
	}

	if !cfg.Wordbook.SkipLogin {
		if err := waitForLogin(ctx, in, out); err != nil {
			return err
		}
	}

	b := &batch{
		sess:     sess,
		exporter: export.New(sess, extract.New(), rep, m),
		tracker:  tracker,
		status:   status,
		listURL:  cfg.Wordbook.URL,
		out:      out,
	}
	return b.exportAll(ctx, jobs)
}

// batch exports several collections from one signed-in browser.
type batch struct {
	sess     browserSession
	exporter *export.Exporter
	tracker  *progress.Tracker
	status   *statusLine
	listURL  string
	out      io.Writer
}

// exportAll runs jobs one after another. Every job after the first goes back
// to the wordbook list on the open browser before selecting its collection.
// A collection that is not found is skipped; any other error stops the batch.
func (b *batch) exportAll(ctx context.Context, jobs []export.Job) error {
	var skipped []error
	for i, job := range jobs {
		if i > 0 {
			b.status.Start(" returning to the wordbook list")
			err := b.sess.Open(ctx, b.listURL)
			b.status.Stop()
			if err != nil {
				return fmt.Errorf("reopen wordbook list: %w", err)
			}
		}

		b.tracker.SetTotalPages(job.Pages)
		b.status.Start(" exporting " + job.Collection)
		res, err := b.exporter.RunJob(ctx, job)
		b.status.Stop()

		if res != nil {
			printSummary(b.out, res)
		}
		if err == nil {
			continue
		}
		var notFound types.ErrNotFound
		if errors.As(err, &notFound) && ctx.Err() == nil {
			fmt.Fprintf(b.out, "Collection %q was not found, skipping it\n", job.Collection)
			skipped = append(skipped, err)
			continue
		}
		return err
	}
	return errors.Join(skipped...)
}

// buildJobs turns the configured collection names into export jobs. With more
// than one collection each file name carries the collection name.
func buildJobs(cfg *config.Config, names []string) []export.Job {
	var collections []string
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		collections = append(collections, name)
	}
	if len(collections) == 0 {
		collections = []string{cfg.Wordbook.Collection}
	}

	jobs := make([]export.Job, 0, len(collections))
	for _, name := range collections {
		path := export.OutputPath(cfg.Wordbook.OutputDir, cfg.Wordbook.FileName)
		if len(collections) > 1 {
			path = export.CollectionPath(cfg.Wordbook.OutputDir, cfg.Wordbook.FileName, name)
		}
		jobs = append(jobs, export.Job{
			Collection: name,
			Pages:      cfg.Wordbook.Pages,
			OutputPath: path,
		})
	}
	return jobs
}

// render drains progress events into the logger and keeps the spinner
// suffix showing the page bar.
func render(events <-chan progress.Event, logger *log.Logger, tracker *progress.Tracker, status *statusLine) {
	for ev := range events {
		if ev.Kind == progress.KindPage {
			tracker.Observe(ev)
			status.SetSuffix(" " + tracker.View())
		}
		logger.Log(ev.Level, ev.Message, ev.Fields...)
	}
}

// waitForLogin blocks until the user confirms on in, or ctx is done.
// End of input counts as confirmation.
func waitForLogin(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, loginPrompt)

	confirmed := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(in).ReadString('\n')
		confirmed <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-confirmed:
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read confirmation: %w", err)
		}
		return nil
	}
}

func printSummary(w io.Writer, res *export.Result) {
	elapsed := res.Duration().Round(time.Second)
	if res.Status == export.StatusEmpty {
		fmt.Fprintf(w, "No words found on %d page(s), nothing saved (%s)\n", res.PagesVisited, elapsed)
		return
	}
	if res.Path == "" {
		fmt.Fprintf(w, "Read %d words from %d of %d page(s) but the file was not saved (%s)\n",
			res.Rows, res.PagesVisited, res.Requested, elapsed)
		return
	}
	fmt.Fprintf(w, "Saved %d words from %d of %d page(s) to %s [%s, %s]\n",
		res.Rows, res.PagesVisited, res.Requested, res.Path, res.Status, elapsed)
}

// serveMetrics starts the Prometheus endpoint when addr is set and returns
// a function that shuts it down.
func serveMetrics(addr string, m *metrics.Metrics, logger *log.Logger) func() {
	if addr == "" {
		return func() {}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	logger.Info("metrics server enabled", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("metrics server shutdown failed", "err", err)
		}
	}
}
