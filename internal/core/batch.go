package core

// batch.go runs one import batch against the apply collaborator.
//
// The runner is deliberately dumb about what a record means: it submits
// each one to the Applier with the requested mode, collects the per-row
// outcomes, and derives the aggregate counts once everything has been
// attempted. All business validation lives behind the Applier.

import (
	"context"
	"sync/atomic"

	"github.com/JonMunkholm/clientimport/internal/csv"
	"github.com/JonMunkholm/clientimport/internal/worker"
)

// DefaultProgressInterval is how many rows pass between progress callbacks.
const DefaultProgressInterval = 100

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets how many apply calls run concurrently. The default of 1
// processes rows sequentially. Above 1 the applier must tolerate concurrent
// calls; result ordering is unaffected either way.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) { r.workers = n }
}

// WithProgress registers a callback invoked about every interval rows and
// once at completion. An interval below 1 falls back to
// DefaultProgressInterval.
func WithProgress(fn ProgressFunc, interval int) RunnerOption {
	return func(r *Runner) {
		r.progress = fn
		r.interval = interval
	}
}

// Runner submits mapped records to the apply collaborator and gathers
// per-row outcomes into a batch result.
type Runner struct {
	applier  Applier
	workers  int
	progress ProgressFunc
	interval int
}

// NewRunner creates a runner around the given applier.
func NewRunner(applier Applier, opts ...RunnerOption) *Runner {
	r := &Runner{
		applier:  applier,
		workers:  1,
		interval: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = 1
	}
	if r.interval < 1 {
		r.interval = DefaultProgressInterval
	}
	return r
}

// Run processes records in their original row order and returns one outcome
// per record plus aggregate counts. Results[i] always corresponds to
// records[i] regardless of worker count.
//
// Durability contract: in commit mode every row stands alone. A failing row
// neither rolls back nor blocks its neighbours; the caller gets each row's
// outcome and the final counts, never an all-or-nothing transaction.
// Preview mode touches nothing and repeats identically while the backing
// store is unchanged.
//
// Zero records is a valid run, not an error: the result comes back
// immediately with zeroed counts. Distinguishing "file would not parse"
// from "file had nothing to do" is the caller's job before invoking Run.
//
// Cancelling ctx stops dispatching further rows; rows never attempted are
// reported as failed with the cancellation reason. There is no mid-row
// cancellation.
func (r *Runner) Run(ctx context.Context, records []csv.Record, mode ImportMode) *BatchResult {
	result := &BatchResult{
		Mode:           mode,
		RequestedCount: len(records),
		Results:        []RowOutcome{},
	}
	if len(records) == 0 {
		return result
	}

	apply := r.applier.ValidateAndPreview
	if mode == ModeCommit {
		apply = r.applier.ValidateAndApply
	}

	var done atomic.Int64
	pool := worker.NewPool(r.workers, func(ctx context.Context, rec csv.Record) (RowOutcome, error) {
		outcome := apply(ctx, rec)
		if r.progress != nil {
			if n := int(done.Add(1)); n%r.interval == 0 {
				r.progress(n, len(records))
			}
		}
		return outcome, nil
	})

	tasks := pool.Execute(ctx, records)

	result.Results = make([]RowOutcome, len(tasks))
	for i, task := range tasks {
		outcome := task.Result
		outcome.RowNumber = i + 1
		if !outcome.Success && outcome.Error == "" && ctx.Err() != nil {
			// Row was never dispatched before cancellation.
			outcome.Error = "batch interrupted: " + ctx.Err().Error()
		}
		result.Results[i] = outcome
		if outcome.Success {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
	}

	if r.progress != nil {
		r.progress(len(records), len(records))
	}

	return result
}
