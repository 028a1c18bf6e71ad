package image

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dmorgan81/headshots/internal/log"
	"github.com/dmorgan81/headshots/internal/payload"
	"github.com/samber/do"
)

const dezgoURL = "https://api.dezgo.com/image2image"

type DezgoGenerator struct {
	Client   *http.Client
	Key      string
	URL      string
	Strength string
}

func NewDezgoGenerator(i *do.Injector) (Generator, error) {
	return &DezgoGenerator{
		Client:   do.MustInvoke[*http.Client](i),
		Key:      do.MustInvokeNamed[string](i, "api_key"),
		URL:      dezgoURL,
		Strength: "0.6",
	}, nil
}

func (g *DezgoGenerator) Generate(ctx context.Context, in payload.Payload, instruction string) (payload.Payload, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("dezgo")
	logger.Info("generating image via api.dezgo.com")

	raw, err := in.Bytes()
	if err != nil {
		return payload.Payload{}, err
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("prompt", instruction); err != nil {
		return payload.Payload{}, err
	}
	if g.Strength != "" {
		if err := form.WriteField("strength", g.Strength); err != nil {
			return payload.Payload{}, err
		}
	}
	file, err := form.CreateFormFile("init_image", "input")
	if err != nil {
		return payload.Payload{}, err
	}
	if _, err := file.Write(raw); err != nil {
		return payload.Payload{}, err
	}
	if err := form.Close(); err != nil {
		return payload.Payload{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, &body)
	if err != nil {
		return payload.Payload{}, err
	}
	req.Header.Add("Content-Type", form.FormDataContentType())
	req.Header.Add("X-Dezgo-Key", g.Key)

	resp, err := g.Client.Do(req)
	if err != nil {
		return payload.Payload{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return payload.Payload{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return payload.Payload{}, fmt.Errorf("dezgo: %s: %s", resp.Status, bytes.TrimSpace(data))
	}
	if len(data) == 0 {
		return payload.Payload{}, ErrNoOutput
	}

	logger.Info("received image via api.dezgo.com", "seed", resp.Header.Get("x-input-seed"))
	return payload.FromBytes(data, ""), nil
}
