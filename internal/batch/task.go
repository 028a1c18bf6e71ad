package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmorgan81/headshots/internal/payload"
	"github.com/samber/lo"
)

type Task struct {
	ID          int    `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Instruction string `json:"instruction" yaml:"instruction"`
}

type Result struct {
	ID          int              `json:"id"`
	Label       string           `json:"label"`
	Instruction string           `json:"instruction"`
	Output      *payload.Payload `json:"output,omitempty"`
	Failed      bool             `json:"failed"`
}

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

type Progress struct {
	ID      int           `json:"id"`
	Label   string        `json:"label"`
	Status  Status        `json:"status"`
	Elapsed time.Duration `json:"elapsed"`
}

func (p Progress) ElapsedSeconds() float64 {
	return p.Elapsed.Seconds()
}

// ProgressFunc is called once per task when it reaches a terminal status.
type ProgressFunc func(Progress)

// Chain fans a progress event out to every non-nil fn in order.
func Chain(fns ...ProgressFunc) ProgressFunc {
	fns = lo.Filter(fns, func(fn ProgressFunc, _ int) bool { return fn != nil })
	return func(p Progress) {
		for _, fn := range fns {
			fn(p)
		}
	}
}

// Generator produces one output for one input and instruction.
type Generator interface {
	Generate(context.Context, payload.Payload, string) (payload.Payload, error)
}

// TaskError is a single task's failure. It is logged and recorded as Failed, never returned from Run.
type TaskError struct {
	ID    int
	Label string
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (%s): %v", e.ID, e.Label, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

var ErrEmptyOutput = errors.New("generator returned empty output")

func Validate(tasks []Task) error {
	seen := make(map[int]struct{}, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("duplicate task id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
		if t.Instruction == "" {
			return fmt.Errorf("task %d has no instruction", t.ID)
		}
	}
	return nil
}

type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func Summarize(results []Result) Summary {
	failed := lo.CountBy(results, func(r Result) bool { return r.Failed })
	return Summary{
		Total:     len(results),
		Succeeded: len(results) - failed,
		Failed:    failed,
	}
}
