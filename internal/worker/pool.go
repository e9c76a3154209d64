// Package worker provides a bounded worker pool whose output order matches
// input order, so callers can correlate each result back to its source row.
package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Task pairs one input with its processing result.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc handles a single input.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool runs inputs through a fixed number of workers.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a pool with the given concurrency. Anything below one
// worker is clamped to one, which degenerates to a sequential loop.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Workers returns the pool's concurrency.
func (p *Pool[T, R]) Workers() int {
	return p.workers
}

// Execute processes every input and returns one Task per input, in input
// order. Workers receive indices and write into results[idx], so ordering
// holds no matter which worker finishes first. Cancelling ctx stops the
// dispatch of further inputs; tasks never dispatched are returned zero-valued.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))
	jobs := make(chan int, len(inputs))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-jobs:
					if !ok {
						return
					}
					result, err := p.process(ctx, inputs[idx])
					results[idx] = Task[T, R]{
						Input:  inputs[idx],
						Result: result,
						Err:    err,
					}
					if err != nil {
						slog.Debug("worker task failed", "index", idx, "error", err)
					}
				}
			}
		}()
	}

dispatch:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)

	wg.Wait()
	return results
}
