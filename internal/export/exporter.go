// Package export walks the pages of an open wordbook collection and saves
// the extracted words as CSV.
package export

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/go-scripts/wordbook/internal/extract"
	"github.com/go-scripts/wordbook/internal/metrics"
	"github.com/go-scripts/wordbook/internal/progress"
	"github.com/go-scripts/wordbook/internal/types"
)

// ErrBusy is returned when an export is already running on the exporter.
var ErrBusy = errors.New("export already running")

// Browser is the part of the browser session the export loop drives.
type Browser interface {
	Active() bool
	CurrentPage() int
	SelectCollection(ctx context.Context, name string) (bool, error)
	WaitReady(ctx context.Context) error
	WaitCards(ctx context.Context) (bool, error)
	PageHTML(ctx context.Context) (string, error)
	AdvancePage(ctx context.Context) (bool, error)
}

// Status is the outcome of an export run.
type Status string

const (
	// StatusComplete means every requested page was read.
	StatusComplete Status = "complete"
	// StatusPartial means the collection ran out of pages, or the run was
	// interrupted, before the requested count.
	StatusPartial Status = "partial"
	// StatusEmpty means no words were found and no file was written.
	StatusEmpty Status = "empty"
)

// Result summarises one export run.
type Result struct {
	RunID        string
	Status       Status
	Requested    int
	PagesVisited int
	Rows         int
	Path         string
	Started      time.Time
	Finished     time.Time
}

// Duration returns how long the run took.
func (r *Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Exporter runs the page loop against a browser. One run at a time.
type Exporter struct {
	browser   Browser
	extractor *extract.Extractor
	rep       *progress.Reporter
	metrics   *metrics.Metrics
	running   atomic.Bool
}

// New creates an Exporter. A nil extractor gets the default one.
func New(b Browser, ex *extract.Extractor, rep *progress.Reporter, m *metrics.Metrics) *Exporter {
	if ex == nil {
		ex = extract.New()
	}
	return &Exporter{
		browser:   b,
		extractor: ex,
		rep:       rep,
		metrics:   m,
	}
}

// Run reads up to requested pages starting at the page the browser shows and
// writes every word found to outputPath.
//
// Running out of pages is a partial result, not an error. When nothing was
// found no file is written and the status is StatusEmpty. If ctx is cancelled
// the words read so far are still saved and ctx's error is returned with the
// result.
func (e *Exporter) Run(ctx context.Context, requested int, outputPath string) (*Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer e.running.Store(false)

	return e.run(ctx, requested, outputPath)
}

func (e *Exporter) run(ctx context.Context, requested int, outputPath string) (*Result, error) {
	if requested < 1 {
		return nil, fmt.Errorf("requested pages must be >= 1 (got %d)", requested)
	}
	if !e.browser.Active() {
		e.metrics.IncError(types.ErrorLabel(types.ErrNoSession))
		e.rep.Error("browser is not open, open it first")
		return nil, types.ErrNoSession
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Requested: requested,
		Started:   time.Now(),
	}
	defer func() {
		e.metrics.ObserveRun(res.Duration())
	}()

	e.rep.Info("export started", "run_id", res.RunID, "pages", requested)

	var (
		rows    []types.WordEntry
		stopErr error
	)
	for i := 1; i <= requested; i++ {
		page := e.browser.CurrentPage()
		e.rep.Info("reading page", "request", i, "of", requested, "page", page)

		if err := e.browser.WaitReady(ctx); err != nil {
			if fatal(ctx, err) {
				stopErr = err
				break
			}
			e.rep.Warn("page did not finish loading, continuing", "page", page, "err", err)
		}

		entries, err := e.readPage(ctx, page)
		if err != nil {
			stopErr = err
			break
		}

		rows = append(rows, entries...)
		res.PagesVisited = i
		e.rep.Page(page, i, len(entries))

		if i == 1 && len(entries) == 0 {
			e.rep.Warn("no words on the first page, the collection may be empty or still loading")
		}
		if i == requested {
			break
		}

		ok, err := e.browser.AdvancePage(ctx)
		if err != nil {
			stopErr = err
			break
		}
		if !ok {
			e.rep.Info("no further pages, stopping", "pages", res.PagesVisited)
			break
		}
	}

	res.Rows = len(rows)
	if stopErr != nil {
		e.metrics.IncError(types.ErrorLabel(stopErr))
		e.rep.Error("export interrupted", "err", stopErr)
	}

	if len(rows) == 0 {
		res.Status = StatusEmpty
		res.Finished = time.Now()
		e.rep.Warn("no words extracted, nothing saved")
		e.rep.Done("export finished", "status", res.Status, "pages", res.PagesVisited)
		return res, stopErr
	}

	e.rep.Info("saving words", "rows", len(rows), "path", outputPath)
	if err := WriteCSV(outputPath, rows); err != nil {
		res.Status = StatusPartial
		res.Finished = time.Now()
		e.metrics.IncError(types.ErrorLabel(err))
		e.rep.Error("could not save file", "path", outputPath, "err", err)
		return res, err
	}

	res.Path = outputPath
	res.Status = StatusComplete
	if stopErr != nil || res.PagesVisited < requested {
		res.Status = StatusPartial
	}
	res.Finished = time.Now()
	e.rep.Done("export finished",
		"status", res.Status,
		"pages", res.PagesVisited,
		"rows", res.Rows,
		"path", res.Path,
	)
	return res, stopErr
}

// readPage extracts the words on the current page. Extraction trouble counts
// as an empty page; only a lost browser or a done ctx is returned as an error.
func (e *Exporter) readPage(ctx context.Context, page int) ([]types.WordEntry, error) {
	ok, err := e.browser.WaitCards(ctx)
	if err != nil {
		return e.skipPage(ctx, page, err)
	}
	if !ok {
		e.metrics.IncPage("empty")
		return nil, nil
	}

	markup, err := e.browser.PageHTML(ctx)
	if err != nil {
		return e.skipPage(ctx, page, err)
	}

	start := time.Now()
	batch, err := e.extractor.ExtractPage(page, markup)
	e.metrics.ObserveExtract(time.Since(start))
	if err != nil {
		return e.skipPage(ctx, page, err)
	}

	if len(batch.Entries) == 0 {
		e.metrics.IncPage("empty")
	} else {
		e.metrics.IncPage("rows")
	}
	e.metrics.AddWords(len(batch.Entries))
	return batch.Entries, nil
}

func (e *Exporter) skipPage(ctx context.Context, page int, err error) ([]types.WordEntry, error) {
	if fatal(ctx, err) {
		return nil, err
	}
	e.metrics.IncError(types.ErrorLabel(err))
	e.metrics.IncPage("empty")
	e.rep.Warn("could not read page, skipping", "page", page, "err", err)
	return nil, nil
}

// fatal reports whether err ends the run rather than a single page.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, types.ErrNoSession)
}
