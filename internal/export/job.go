package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-scripts/wordbook/internal/types"
)

// Job is a full export request: which collection, how many pages, where to.
type Job struct {
	Collection string
	Pages      int
	OutputPath string
}

// Validate rejects jobs that cannot start.
func (j Job) Validate() error {
	if strings.TrimSpace(j.Collection) == "" {
		return fmt.Errorf("collection name is required")
	}
	if j.Pages < 1 {
		return fmt.Errorf("pages must be >= 1 (got %d)", j.Pages)
	}
	if strings.TrimSpace(j.OutputPath) == "" {
		return fmt.Errorf("output path is required")
	}
	return nil
}

// RunJob opens the job's collection in the browser and exports it.
// A collection that cannot be found is reported as types.ErrNotFound.
func (e *Exporter) RunJob(ctx context.Context, job Job) (*Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer e.running.Store(false)

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	if !e.browser.Active() {
		e.metrics.IncError(types.ErrorLabel(types.ErrNoSession))
		e.rep.Error("browser is not open, open it first")
		return nil, types.ErrNoSession
	}

	ok, err := e.browser.SelectCollection(ctx, job.Collection)
	if err != nil {
		return nil, fmt.Errorf("select collection: %w", err)
	}
	if !ok {
		notFound := types.ErrNotFound{What: fmt.Sprintf("collection %q", job.Collection)}
		e.metrics.IncError(types.ErrorLabel(notFound))
		e.rep.Error("could not open collection", "name", job.Collection)
		return nil, notFound
	}

	return e.run(ctx, job.Pages, job.OutputPath)
}
