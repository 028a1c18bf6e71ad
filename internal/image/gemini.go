package image

import (
	"context"
	"fmt"

	"github.com/dmorgan81/headshots/internal/log"
	"github.com/dmorgan81/headshots/internal/payload"
	"github.com/samber/do"
	"google.golang.org/genai"
)

type contentGenerator interface {
	GenerateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiGenerator struct {
	models contentGenerator
	model  string
}

func NewGeminiGenerator(i *do.Injector) (Generator, error) {
	client := do.MustInvoke[*genai.Client](i)
	model := do.MustInvokeNamed[string](i, "image_model")
	return &GeminiGenerator{models: client.Models, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, in payload.Payload, instruction string) (payload.Payload, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("gemini").With("model", g.model)
	logger.Debug("generating image", "mediaType", in.MediaType)

	raw, err := in.Bytes()
	if err != nil {
		return payload.Payload{}, err
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(raw, in.MediaType),
		genai.NewPartFromText(instruction),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return payload.Payload{}, err
	}

	out, err := firstImage(resp)
	if err != nil {
		return payload.Payload{}, err
	}
	logger.Debug("received image", "mediaType", out.MediaType)
	return out, nil
}

func firstImage(resp *genai.GenerateContentResponse) (payload.Payload, error) {
	if resp == nil {
		return payload.Payload{}, ErrNoOutput
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return payload.Payload{}, fmt.Errorf("%w: prompt blocked (%s)", ErrNoOutput, fb.BlockReason)
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return payload.FromBytes(p.InlineData.Data, p.InlineData.MIMEType), nil
			}
		}
	}
	return payload.Payload{}, ErrNoOutput
}
