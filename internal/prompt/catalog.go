package prompt

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/dmorgan81/headshots/internal/batch"
	"github.com/dmorgan81/headshots/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed assets/headshots.yaml
var defaultCatalog []byte

type Catalog struct {
	tasks []batch.Task
}

// NewCatalog uses the "task_lines" parameters when any are configured and falls back to the embedded headshot styles.
func NewCatalog(i *do.Injector) (*Catalog, error) {
	lines := do.MustInvokeNamed[[]string](i, "task_lines")
	if len(lines) > 0 {
		return ParseLines(lines)
	}
	return Default()
}

func Default() (*Catalog, error) {
	var tasks []batch.Task
	if err := yaml.Unmarshal(defaultCatalog, &tasks); err != nil {
		return nil, fmt.Errorf("decoding default catalog: %w", err)
	}
	return New(tasks)
}

func New(tasks []batch.Task) (*Catalog, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("empty task catalog")
	}
	if err := batch.Validate(tasks); err != nil {
		return nil, err
	}
	return &Catalog{tasks: tasks}, nil
}

// ParseLines builds a catalog from "label|instruction" lines, numbering tasks from 1.
func ParseLines(lines []string) (*Catalog, error) {
	tasks := make([]batch.Task, 0, len(lines))
	for n, line := range lines {
		label, instruction, ok := strings.Cut(line, "|")
		if !ok {
			return nil, fmt.Errorf("task line %d: expected label|instruction", n+1)
		}
		tasks = append(tasks, batch.Task{
			ID:          n + 1,
			Label:       strings.TrimSpace(label),
			Instruction: strings.TrimSpace(instruction),
		})
	}
	return New(tasks)
}

func (c *Catalog) Tasks() []batch.Task {
	return append([]batch.Task(nil), c.tasks...)
}

// Select returns the tasks with the given ids in catalog order. No ids selects everything.
func (c *Catalog) Select(ctx context.Context, ids []int) ([]batch.Task, error) {
	log.FromContextOrDiscard(ctx).WithGroup("catalog").Debug("selecting tasks", "ids", ids)
	if len(ids) == 0 {
		return c.Tasks(), nil
	}

	known := lo.Map(c.tasks, func(t batch.Task, _ int) int { return t.ID })
	if missing, _ := lo.Difference(lo.Uniq(ids), known); len(missing) > 0 {
		return nil, fmt.Errorf("unknown task ids %v", missing)
	}
	return lo.Filter(c.tasks, func(t batch.Task, _ int) bool {
		return lo.Contains(ids, t.ID)
	}), nil
}
