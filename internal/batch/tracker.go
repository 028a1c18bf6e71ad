package batch

import (
	"sync"

	"github.com/samber/lo"
)

// Tracker holds the live progress record of every task in a batch.
// Each task only ever updates its own entry.
type Tracker struct {
	mu      sync.Mutex
	order   []int
	records map[int]Progress
}

func NewTracker(tasks []Task) *Tracker {
	records := make(map[int]Progress, len(tasks))
	for _, t := range tasks {
		records[t.ID] = Progress{ID: t.ID, Label: t.Label, Status: StatusPending}
	}
	return &Tracker{
		order:   lo.Map(tasks, func(t Task, _ int) int { return t.ID }),
		records: records,
	}
}

// Observe records a transition. Unknown ids and updates to terminal records are ignored.
func (t *Tracker) Observe(p Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.records[p.ID]
	if !ok || cur.Status.Terminal() {
		return
	}
	cur.Status = p.Status
	cur.Elapsed = p.Elapsed
	t.records[p.ID] = cur
}

func (t *Tracker) Snapshot() []Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return lo.Map(t.order, func(id int, _ int) Progress { return t.records[id] })
}

func (t *Tracker) Counts() map[Status]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return lo.CountValuesBy(lo.Values(t.records), func(p Progress) Status { return p.Status })
}

func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return lo.EveryBy(lo.Values(t.records), func(p Progress) bool { return p.Status.Terminal() })
}
