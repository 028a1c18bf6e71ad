package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmorgan81/headshots/internal/batch"
	"github.com/dmorgan81/headshots/internal/log"
	"github.com/dmorgan81/headshots/internal/page"
	"github.com/dmorgan81/headshots/internal/payload"
	"github.com/dmorgan81/headshots/internal/prompt"
	"github.com/dmorgan81/headshots/internal/store"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Input struct {
	Image  string `json:"image"`
	Tasks  []int  `json:"tasks,omitempty"`
	Inline bool   `json:"inline,omitempty"`
}

type Result struct {
	ID             int     `json:"id"`
	Label          string  `json:"label"`
	Failed         bool    `json:"failed"`
	URL            string  `json:"url,omitempty"`
	DataURL        string  `json:"dataUrl,omitempty"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

type Output struct {
	BatchID string        `json:"batchId"`
	Page    string        `json:"page"`
	Results []Result      `json:"results"`
	Summary batch.Summary `json:"summary"`
}

type Handler struct {
	catalog      *prompt.Catalog
	orchestrator *batch.Orchestrator
	uploader     store.Uploader
	invalidator  store.Invalidator
	templator    *page.Templator
	newID        func() string
	progress     batch.ProgressFunc
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		catalog:      do.MustInvoke[*prompt.Catalog](i),
		orchestrator: do.MustInvoke[*batch.Orchestrator](i),
		uploader:     do.MustInvoke[store.Uploader](i),
		invalidator:  do.MustInvoke[store.Invalidator](i),
		templator:    do.MustInvoke[*page.Templator](i),
		newID:        uuid.NewString,
	}, nil
}

// WithProgress returns a copy of h that also reports every task transition to fn.
func (h *Handler) WithProgress(fn batch.ProgressFunc) *Handler {
	cp := *h
	cp.progress = fn
	return &cp
}

func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("tasks", input.Tasks, "inline", input.Inline)
	log.Info("handling lambda invocation")

	photo, err := payload.ParseDataURL(input.Image)
	if err != nil {
		return Output{}, err
	}
	return h.Generate(ctx, photo, input.Tasks, input.Inline)
}

// Generate runs the selected styles against photo, stores every successful output and the results page.
func (h *Handler) Generate(ctx context.Context, photo payload.Payload, ids []int, inline bool) (Output, error) {
	tasks, err := h.catalog.Select(ctx, ids)
	if err != nil {
		return Output{}, err
	}

	batchID := h.newID()
	logger := log.FromContextOrDiscard(ctx).With("batch", batchID)
	ctx = log.NewContext(ctx, logger)
	logger.Info("generating headshots", "styles", len(tasks))

	tracker := batch.NewTracker(tasks)
	results := h.orchestrator.Run(ctx, photo, tasks, batch.Chain(tracker.Observe, h.progress))
	summary := batch.Summarize(results)
	elapsed := lo.SliceToMap(tracker.Snapshot(), func(p batch.Progress) (int, float64) {
		return p.ID, p.ElapsedSeconds()
	})

	names := lo.Map(results, func(r batch.Result, _ int) string {
		if r.Failed {
			return ""
		}
		return strconv.Itoa(r.ID) + extension(r.Output.MediaType)
	})

	if err := h.uploadImages(ctx, batchID, results, names); err != nil {
		return Output{}, err
	}

	html, err := h.templator.Template(ctx, page.Params{
		BatchID: batchID,
		Items: lo.Map(results, func(r batch.Result, i int) page.Item {
			return page.Item{Label: r.Label, Image: names[i], Failed: r.Failed}
		}),
		Summary: summary,
	})
	if err != nil {
		return Output{}, err
	}

	pageName := batchID + "/index.html"
	if err := h.uploader.Upload(ctx, store.UploadParams{
		Name:        pageName,
		Data:        html,
		ContentType: "text/html",
		Metadata: map[string]string{
			"batch":     batchID,
			"total":     strconv.Itoa(summary.Total),
			"succeeded": strconv.Itoa(summary.Succeeded),
			"failed":    strconv.Itoa(summary.Failed),
		},
	}); err != nil {
		return Output{}, err
	}

	if err := h.invalidator.Invalidate(ctx, []string{"/" + batchID + "/*"}); err != nil {
		return Output{}, err
	}

	return Output{
		BatchID: batchID,
		Page:    h.uploader.URL(pageName),
		Results: lo.Map(results, func(r batch.Result, i int) Result {
			out := Result{ID: r.ID, Label: r.Label, Failed: r.Failed, ElapsedSeconds: elapsed[r.ID]}
			if !r.Failed {
				out.URL = h.uploader.URL(batchID + "/" + names[i])
				out.DataURL = lo.Ternary(inline, r.Output.DataURL(), "")
			}
			return out
		}),
		Summary: summary,
	}, nil
}

func (h *Handler) uploadImages(ctx context.Context, batchID string, results []batch.Result, names []string) error {
	group, ctx := errgroup.WithContext(ctx)
	for i, r := range results {
		if r.Failed {
			continue
		}
		r, name := r, names[i]
		group.Go(func() error {
			data, err := r.Output.Bytes()
			if err != nil {
				return fmt.Errorf("decoding output of task %d: %w", r.ID, err)
			}
			return h.uploader.Upload(ctx, store.UploadParams{
				Name:        batchID + "/" + name,
				Data:        data,
				ContentType: r.Output.MediaType,
				Metadata: map[string]string{
					"batch": batchID,
					"task":  strconv.Itoa(r.ID),
					"label": r.Label,
				},
			})
		})
	}
	return group.Wait()
}

func extension(mediaType string) string {
	if m := mimetype.Lookup(mediaType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}
