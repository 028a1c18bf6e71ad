package image

import (
	"context"
	"errors"

	"github.com/dmorgan81/headshots/internal/payload"
)

// ErrNoOutput means the service answered without any image part, typically a content policy rejection.
var ErrNoOutput = errors.New("response contained no image")

type Generator interface {
	Generate(context.Context, payload.Payload, string) (payload.Payload, error)
}

var (
	_ Generator = (*GeminiGenerator)(nil)
	_ Generator = (*DezgoGenerator)(nil)
)
