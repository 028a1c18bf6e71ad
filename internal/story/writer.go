package story

import (
	"context"
	"errors"
	"strings"

	"github.com/dmorgan81/headshots/internal/log"
	"github.com/samber/do"
	"google.golang.org/genai"
)

const systemInstruction = "You are a talented writer of romantic short stories for adults. " +
	"Your stories are passionate, detailed and evocative, with well developed characters and vivid settings. " +
	"Avoid clichés and create unique, captivating narratives. " +
	"The story must be well structured, with a beginning, middle and end. " +
	"The tone should be sensual and romantic, but tasteful."

var (
	ErrEmptyIdea = errors.New("story idea is empty")
	ErrNoStory   = errors.New("response contained no story")
)

type Writer interface {
	Write(context.Context, string) (string, error)
}

type contentGenerator interface {
	GenerateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiWriter struct {
	models contentGenerator
	model  string
}

func NewGeminiWriter(i *do.Injector) (Writer, error) {
	client := do.MustInvoke[*genai.Client](i)
	model := do.MustInvokeNamed[string](i, "story_model")
	return &GeminiWriter{models: client.Models, model: model}, nil
}

func (w *GeminiWriter) Write(ctx context.Context, idea string) (string, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return "", ErrEmptyIdea
	}

	logger := log.FromContextOrDiscard(ctx).WithGroup("story").With("model", w.model)
	logger.Info("writing story", "ideaLength", len(idea))

	resp, err := w.models.GenerateContent(ctx, w.model, genai.Text(idea), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.8),
		TopP:              genai.Ptr[float32](0.95),
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", ErrNoStory
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrNoStory
	}
	logger.Info("story written", "length", len(text))
	return text, nil
}
