package image

import (
	"context"
	"errors"
	"testing"

	"github.com/dmorgan81/headshots/internal/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	return f.resp, f.err
}

func imageResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

var photo = payload.FromBytes([]byte("photo-bytes"), "image/jpeg")

func TestGeminiGenerateSendsPhotoAndInstruction(t *testing.T) {
	models := &fakeModels{resp: imageResponse(
		genai.NewPartFromText("here you go"),
		genai.NewPartFromBytes([]byte("png-bytes"), "image/png"),
	)}
	g := &GeminiGenerator{models: models, model: "image-model"}

	out, err := g.Generate(context.Background(), photo, "make it corporate")
	require.NoError(t, err)
	assert.Equal(t, payload.FromBytes([]byte("png-bytes"), "image/png"), out)

	assert.Equal(t, "image-model", models.model)
	require.Len(t, models.contents, 1)
	parts := models.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, []byte("photo-bytes"), parts[0].InlineData.Data)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MIMEType)
	assert.Equal(t, "make it corporate", parts[1].Text)
	assert.Contains(t, models.config.ResponseModalities, "IMAGE")
}

func TestGeminiGenerateNoImage(t *testing.T) {
	for name, resp := range map[string]*genai.GenerateContentResponse{
		"nil":           nil,
		"no candidates": {},
		"text only":     imageResponse(genai.NewPartFromText("sorry")),
		"blocked": {PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
			BlockReason: genai.BlockedReasonSafety,
		}},
		"nil content": {Candidates: []*genai.Candidate{{}}},
	} {
		t.Run(name, func(t *testing.T) {
			g := &GeminiGenerator{models: &fakeModels{resp: resp}, model: "m"}
			_, err := g.Generate(context.Background(), photo, "x")
			assert.ErrorIs(t, err, ErrNoOutput)
		})
	}
}

func TestGeminiGenerateTransportError(t *testing.T) {
	boom := errors.New("unavailable")
	g := &GeminiGenerator{models: &fakeModels{err: boom}, model: "m"}
	_, err := g.Generate(context.Background(), photo, "x")
	assert.ErrorIs(t, err, boom)
}

func TestGeminiGenerateBadInput(t *testing.T) {
	g := &GeminiGenerator{models: &fakeModels{}, model: "m"}
	_, err := g.Generate(context.Background(), payload.Payload{Data: "!!", MediaType: "image/png"}, "x")
	var merr *payload.MalformedEncodingError
	assert.ErrorAs(t, err, &merr)
}
