// Package batch runs a fixed set of generation tasks against one input.
//
// Every task is dispatched concurrently and owns exactly one slot of the
// result slice, so results come back in declaration order no matter which
// call finishes first. A failing task is recorded as Failed and never cancels
// its siblings.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmorgan81/headshots/internal/log"
	"github.com/dmorgan81/headshots/internal/payload"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Orchestrator struct {
	generator   Generator
	concurrency int
	timeout     time.Duration
	now         func() time.Time
}

type Option func(*Orchestrator)

// WithConcurrency bounds the number of in-flight generator calls. Zero or less means one per task.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.concurrency = n }
}

// WithTaskTimeout bounds each generator call. Zero leaves the transport default in place.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(generator Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{generator: generator, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Run(ctx context.Context, in payload.Payload, tasks []Task, onProgress ProgressFunc) []Result {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	logger := log.FromContextOrDiscard(ctx).WithGroup("batch").With("tasks", len(tasks))
	logger.Info("dispatching batch", "concurrency", o.limit(len(tasks)))

	// A plain Group, not WithContext: one failure must not cancel the rest.
	var group errgroup.Group
	group.SetLimit(o.limit(len(tasks)))

	for i, task := range tasks {
		i, task := i, task
		group.Go(func() error {
			start := o.now()
			out, err := o.generate(ctx, in, task)
			elapsed := o.now().Sub(start)

			results[i] = Result{
				ID:          task.ID,
				Label:       task.Label,
				Instruction: task.Instruction,
				Failed:      err != nil,
			}
			status := StatusDone
			if err != nil {
				status = StatusError
				logger.Warn("task failed", "error", &TaskError{ID: task.ID, Label: task.Label, Err: err}, "elapsed", elapsed)
			} else {
				results[i].Output = &out
				logger.Info("task done", "task", task.ID, "elapsed", elapsed)
			}

			notify(logger, onProgress, Progress{ID: task.ID, Label: task.Label, Status: status, Elapsed: elapsed})
			return nil
		})
	}
	_ = group.Wait()

	summary := Summarize(results)
	logger.Info("batch complete", "succeeded", summary.Succeeded, "failed", summary.Failed)
	return results
}

func (o *Orchestrator) limit(n int) int {
	return lo.Ternary(o.concurrency > 0 && o.concurrency < n, o.concurrency, n)
}

// notify calls onProgress and logs any panic it raises.
func notify(logger *slog.Logger, onProgress ProgressFunc, p Progress) {
	if onProgress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("progress callback panicked", "task", p.ID, "panic", r)
		}
	}()
	onProgress(p)
}

func (o *Orchestrator) generate(ctx context.Context, in payload.Payload, task Task) (out payload.Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	out, err = o.generator.Generate(ctx, in, task.Instruction)
	if err != nil {
		return payload.Payload{}, err
	}
	if out.IsZero() {
		return payload.Payload{}, ErrEmptyOutput
	}
	return out, nil
}
