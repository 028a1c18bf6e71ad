package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/dmorgan81/headshots/internal/batch"
	"github.com/dmorgan81/headshots/internal/handler"
	"github.com/fatih/color"
)

type progressPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	ok   *color.Color
	fail *color.Color
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{
		w:    w,
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed),
	}
}

func (p *progressPrinter) Print(pr batch.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pr.Status == batch.StatusDone {
		p.ok.Fprintf(p.w, "  done   %-18s %5.1fs\n", pr.Label, pr.ElapsedSeconds())
		return
	}
	p.fail.Fprintf(p.w, "  failed %-18s %5.1fs\n", pr.Label, pr.ElapsedSeconds())
}

func (p *progressPrinter) Summary(out handler.Output) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "%d of %d styles generated", out.Summary.Succeeded, out.Summary.Total)
	if out.Summary.Failed > 0 {
		p.fail.Fprintf(p.w, " (%d failed)", out.Summary.Failed)
	}
	fmt.Fprintf(p.w, "\nresults: %s\n", out.Page)
}
