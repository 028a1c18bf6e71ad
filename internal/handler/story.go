package handler

import (
	"context"

	"github.com/dmorgan81/headshots/internal/log"
	"github.com/dmorgan81/headshots/internal/story"
	"github.com/samber/do"
)

type StoryInput struct {
	Idea string `json:"idea"`
}

type StoryOutput struct {
	Story string `json:"story"`
}

type StoryHandler struct {
	writer story.Writer
}

func NewStoryHandler(i *do.Injector) (*StoryHandler, error) {
	return &StoryHandler{writer: do.MustInvoke[story.Writer](i)}, nil
}

func (h *StoryHandler) Handle(ctx context.Context, input StoryInput) (StoryOutput, error) {
	log.FromContextOrDiscard(ctx).WithGroup("StoryHandler").Info("handling lambda invocation")

	text, err := h.writer.Write(ctx, input.Idea)
	if err != nil {
		return StoryOutput{}, err
	}
	return StoryOutput{Story: text}, nil
}
