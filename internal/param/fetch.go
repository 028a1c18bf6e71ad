package param

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
)

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
	FetchAll(context.Context, string) ([]string, error)
}

// EnvFetcher reads parameters from the process environment, for running outside AWS.
type EnvFetcher struct {
	lookup  func(string) (string, bool)
	environ func() []string
}

func NewEnvFetcher() *EnvFetcher {
	return &EnvFetcher{lookup: os.LookupEnv, environ: os.Environ}
}

func (f *EnvFetcher) Fetch(_ context.Context, name string) (string, error) {
	v, ok := f.lookup(name)
	if !ok || v == "" {
		return "", fmt.Errorf("environment variable %s is not set", name)
	}
	return v, nil
}

// FetchAll returns the values of every variable whose name starts with prefix, ordered by name.
func (f *EnvFetcher) FetchAll(_ context.Context, prefix string) ([]string, error) {
	vars := lo.FilterMap(f.environ(), func(kv string, _ int) ([2]string, bool) {
		k, v, _ := strings.Cut(kv, "=")
		return [2]string{k, v}, strings.HasPrefix(k, prefix) && v != ""
	})
	sort.Slice(vars, func(a, b int) bool { return vars[a][0] < vars[b][0] })
	return lo.Map(vars, func(kv [2]string, _ int) string { return kv[1] }), nil
}
