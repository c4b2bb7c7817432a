package client

import (
	"context"

	"github.com/menta2k/image-captioner/pkg/types"
)

// VisionClient is an image-to-text backend.
type VisionClient interface {
	// Name returns the backend name, e.g. "ollama" or "llamacpp".
	Name() string
	// Ping reports whether the backend is reachable and can serve model.
	Ping(ctx context.Context, model string) error
	// Caption returns the raw text generated for an encoded image.
	Caption(ctx context.Context, model, prompt string, img types.ModelImage, opts types.GenerateOptions) (string, error)
}
