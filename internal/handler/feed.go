package handler

import (
	"context"

	"github.com/dmorgan81/headshots/internal/feed"
	"github.com/dmorgan81/headshots/internal/log"
	"github.com/dmorgan81/headshots/internal/store"
	"github.com/samber/do"
)

const feedName = "feed.xml"

type feedGenerator interface {
	Generate(context.Context) ([]byte, error)
}

type FeedOutput struct {
	URL   string `json:"url"`
	Bytes int    `json:"bytes"`
}

type FeedHandler struct {
	generator   feedGenerator
	uploader    store.Uploader
	invalidator store.Invalidator
}

func NewFeedHandler(i *do.Injector) (*FeedHandler, error) {
	return &FeedHandler{
		generator:   do.MustInvoke[*feed.Generator](i),
		uploader:    do.MustInvoke[store.Uploader](i),
		invalidator: do.MustInvoke[store.Invalidator](i),
	}, nil
}

func (h *FeedHandler) Handle(ctx context.Context) (FeedOutput, error) {
	log.FromContextOrDiscard(ctx).WithGroup("FeedHandler").Info("handling lambda invocation")

	rss, err := h.generator.Generate(ctx)
	if err != nil {
		return FeedOutput{}, err
	}
	if err := h.uploader.Upload(ctx, store.UploadParams{
		Name:        feedName,
		Data:        rss,
		ContentType: "application/rss+xml",
	}); err != nil {
		return FeedOutput{}, err
	}
	if err := h.invalidator.Invalidate(ctx, []string{"/" + feedName}); err != nil {
		return FeedOutput{}, err
	}
	return FeedOutput{URL: h.uploader.URL(feedName), Bytes: len(rss)}, nil
}
