package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/dmorgan81/headshots/internal/batch"
	"github.com/dmorgan81/headshots/internal/log"
	"github.com/samber/do"
)

//go:embed assets/results.html
var resultsTmpl string

type Item struct {
	Label  string
	Image  string
	Failed bool
}

type Params struct {
	BatchID string
	Items   []Item
	Summary batch.Summary
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func NewTemplator(*do.Injector) (*Templator, error) {
	return &Templator{}, nil
}

func (g *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("results").Parse(resultsTmpl))
	})

	log.FromContextOrDiscard(ctx).WithGroup("templator").Info("generating page", "batch", params.BatchID)

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
