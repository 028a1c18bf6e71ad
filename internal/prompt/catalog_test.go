package prompt

import (
	"context"
	"testing"

	"github.com/dmorgan81/headshots/internal/batch"
	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(tasks []batch.Task) []string {
	return lo.Map(tasks, func(t batch.Task, _ int) string { return t.Label })
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	tasks := c.Tasks()
	assert.Equal(t, []string{"Corporate", "Creative Casual", "Outdoor", "Black & White"}, labels(tasks))
	for i, task := range tasks {
		assert.Equal(t, i+1, task.ID)
		assert.Contains(t, task.Instruction, "this person")
		assert.NotContains(t, task.Instruction, "\n")
	}
}

func TestParseLines(t *testing.T) {
	c, err := ParseLines([]string{"Studio | a studio portrait", "Beach|a beach portrait"})
	require.NoError(t, err)
	assert.Equal(t, []batch.Task{
		{ID: 1, Label: "Studio", Instruction: "a studio portrait"},
		{ID: 2, Label: "Beach", Instruction: "a beach portrait"},
	}, c.Tasks())

	_, err = ParseLines([]string{"no separator"})
	assert.Error(t, err)
	_, err = ParseLines([]string{"Empty|"})
	assert.Error(t, err)
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	ctx := context.Background()

	all, err := c.Select(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	some, err := c.Select(ctx, []int{4, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Creative Casual", "Black & White"}, labels(some))

	_, err = c.Select(ctx, []int{1, 9})
	assert.ErrorContains(t, err, "9")
}

func TestTasksReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	tasks := c.Tasks()
	tasks[0].Label = "changed"
	assert.Equal(t, "Corporate", c.Tasks()[0].Label)
}

func TestNewCatalogFromInjector(t *testing.T) {
	injector := do.New()
	do.ProvideNamedValue[[]string](injector, "task_lines", []string{"Only|one style"})
	c, err := NewCatalog(injector)
	require.NoError(t, err)
	assert.Equal(t, []string{"Only"}, labels(c.Tasks()))

	injector = do.New()
	do.ProvideNamedValue[[]string](injector, "task_lines", nil)
	c, err = NewCatalog(injector)
	require.NoError(t, err)
	assert.Len(t, c.Tasks(), 4)
}
