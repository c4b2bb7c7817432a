// Package model holds the loaded vision model: the preprocessing step that
// turns an image into model input and the client that generates text from it.
package model

import (
	"context"
	"errors"
	"image"

	"github.com/menta2k/image-captioner/pkg/client"
	"github.com/menta2k/image-captioner/pkg/types"
)

// Preprocessor converts a decoded image into the base64 payload a model expects.
type Preprocessor interface {
	PrepareImageForModel(img image.Image) (string, error)
	// SendMIMEType is the media type of the payloads PrepareImageForModel produces.
	SendMIMEType() string
}

// Bundle pairs a Preprocessor with a generating VisionClient. A nil *Bundle
// means no model is loaded.
type Bundle struct {
	pre   Preprocessor
	gen   client.VisionClient
	model string
}

// NewBundle requires both halves; a bundle is never half loaded.
func NewBundle(pre Preprocessor, gen client.VisionClient, model string) (*Bundle, error) {
	if pre == nil || gen == nil {
		return nil, errors.New("model bundle requires both a preprocessor and a generator")
	}
	return &Bundle{pre: pre, gen: gen, model: model}, nil
}

// Preprocess prepares img for the model.
func (b *Bundle) Preprocess(img image.Image) (types.ModelImage, error) {
	data, err := b.pre.PrepareImageForModel(img)
	if err != nil {
		return types.ModelImage{}, err
	}
	return types.ModelImage{Data: data, MIMEType: b.pre.SendMIMEType()}, nil
}

// Generate runs the model on an already preprocessed image.
func (b *Bundle) Generate(ctx context.Context, img types.ModelImage, prompt string, opts types.GenerateOptions) (string, error) {
	return b.gen.Caption(ctx, b.model, prompt, img, opts)
}

// ModelName returns the served model name.
func (b *Bundle) ModelName() string { return b.model }

// Backend returns the backend name.
func (b *Bundle) Backend() string { return b.gen.Name() }
