package caption

import (
	"context"
	"errors"
	"fmt"
	"image"
	"regexp"
	"strings"

	"github.com/lithammer/dedent"

	"github.com/menta2k/image-captioner/pkg/model"
	"github.com/menta2k/image-captioner/pkg/types"
)

var (
	// ErrModelNotLoaded is returned when no model bundle is available
	ErrModelNotLoaded = errors.New("model not loaded")
	// ErrEmptyCaption is returned when the model produced no text
	ErrEmptyCaption = errors.New("model returned an empty caption")
)

// BeamSearch is the decoding setup for English captions
var BeamSearch = types.GenerateOptions{
	MaxTokens:     50,
	NumBeams:      4,
	EarlyStopping: true,
}

// Sampled is BeamSearch with sampling enabled at temperature 0.7
var Sampled = types.GenerateOptions{
	MaxTokens:     50,
	NumBeams:      4,
	EarlyStopping: true,
	Sample:        true,
	Temperature:   0.7,
}

// DefaultPrompt asks for a short COCO style caption
var DefaultPrompt = strings.TrimSpace(dedent.Dedent(`
	Write one short caption describing this image in plain English.
	Use lowercase, start with "a" or "an", and mention the main subject,
	its color and where it is, for example "a black dog sitting on a white couch".
	Reply with the caption only: no quotes, no punctuation at the end, no other text.
`))

// specialTokens matches tokenizer control tokens that some backends leak
var specialTokens = regexp.MustCompile(`<\|[^|>]*\|>|</?s>|<pad>|<unk>|\[(?:CLS|SEP|PAD|UNK|MASK)\]`)

// Generator turns images into English captions
type Generator struct {
	bundle *model.Bundle
	prompt string
}

// New creates a generator. bundle may be nil when no model could be loaded.
func New(bundle *model.Bundle) *Generator {
	return &Generator{bundle: bundle, prompt: DefaultPrompt}
}

// NewWithPrompt creates a generator that uses a custom prompt
func NewWithPrompt(bundle *model.Bundle, prompt string) *Generator {
	return &Generator{bundle: bundle, prompt: prompt}
}

// Loaded reports whether a model bundle is available
func (g *Generator) Loaded() bool {
	return g.bundle != nil
}

// English captions img with beam search decoding
func (g *Generator) English(ctx context.Context, img image.Image) (string, error) {
	return g.Generate(ctx, img, BeamSearch)
}

// Generate captions img with the given decoding options
func (g *Generator) Generate(ctx context.Context, img image.Image, opts types.GenerateOptions) (text string, err error) {
	if g.bundle == nil {
		return "", ErrModelNotLoaded
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("caption generation panicked: %v", r)
		}
	}()

	payload, err := g.bundle.Preprocess(img)
	if err != nil {
		return "", fmt.Errorf("preprocess image: %w", err)
	}

	raw, err := g.bundle.Generate(ctx, payload, g.prompt, opts)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	text = Clean(raw)
	if text == "" {
		return "", ErrEmptyCaption
	}
	return text, nil
}

// Clean strips special tokens and surrounding whitespace from model output
func Clean(raw string) string {
	return strings.TrimSpace(specialTokens.ReplaceAllString(raw, ""))
}
