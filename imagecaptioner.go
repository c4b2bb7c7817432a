// Package imagecaptioner describes images in English and in a rough Arabic
// rendering using a vision model served by Ollama, llama.cpp or Gemini.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		imagecaptioner "github.com/menta2k/image-captioner"
//		"github.com/menta2k/image-captioner/pkg/model"
//		"github.com/menta2k/image-captioner/pkg/processing"
//	)
//
//	func main() {
//		ctx := context.Background()
//		proc := processing.NewProcessor()
//
//		// Load the model once; a nil bundle means captions degrade to a sentinel
//		bundle := model.Load(ctx, model.Options{Backend: "ollama", Name: "llava"}, proc, nil)
//		describer := imagecaptioner.New(bundle)
//
//		img, err := proc.LoadImage("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		res := describer.Describe(ctx, img)
//		fmt.Println(res.English, res.EnglishErr)
//		fmt.Println(res.Arabic, res.ArabicErr)
//	}
//
// The package consists of four main components:
//
// 1. Model (pkg/model): loads the backend once and pairs it with image preprocessing
// 2. Caption (pkg/caption): English captions with beam search decoding
// 3. Arabic (pkg/arabic): a second, sampled caption rewritten through a phrase table
// 4. Processing (pkg/processing): image decoding, RGB normalization and URL fetching
//
// The two captions come from separate model calls, so they can describe the
// image differently.
package imagecaptioner

import (
	"context"
	"image"

	"github.com/menta2k/image-captioner/pkg/arabic"
	"github.com/menta2k/image-captioner/pkg/caption"
	"github.com/menta2k/image-captioner/pkg/model"
)

// Version of the image captioner library
const Version = "1.0.0"

// Describer produces bilingual descriptions of images
type Describer struct {
	bundle  *model.Bundle
	english *caption.Generator
	arabic  *arabic.Rewriter
}

// New creates a Describer with the default prompt and phrase table.
// bundle may be nil.
func New(bundle *model.Bundle) *Describer {
	return NewWithTable(bundle, arabic.DefaultTable())
}

// NewWithTable creates a Describer that rewrites with a custom phrase table
func NewWithTable(bundle *model.Bundle, table arabic.Table) *Describer {
	gen := caption.New(bundle)
	return &Describer{
		bundle:  bundle,
		english: gen,
		arabic:  arabic.NewRewriter(gen, table),
	}
}

// Result holds both descriptions. Each language carries its own error;
// a failed language has an empty text.
type Result struct {
	English    string
	EnglishErr error
	Arabic     string
	ArabicErr  error
}

// OK reports whether both descriptions were produced
func (r Result) OK() bool {
	return r.EnglishErr == nil && r.ArabicErr == nil
}

// Describe captions img in English, then produces the Arabic rendering
func (d *Describer) Describe(ctx context.Context, img image.Image) Result {
	var res Result
	res.English, res.EnglishErr = d.english.English(ctx, img)
	res.Arabic, res.ArabicErr = d.arabic.Arabic(ctx, img)
	return res
}

// Loaded reports whether a model is available
func (d *Describer) Loaded() bool {
	return d.bundle != nil
}

// Backend returns the backend name, or "" when no model is loaded
func (d *Describer) Backend() string {
	if d.bundle == nil {
		return ""
	}
	return d.bundle.Backend()
}

// ModelName returns the model name, or "" when no model is loaded
func (d *Describer) ModelName() string {
	if d.bundle == nil {
		return ""
	}
	return d.bundle.ModelName()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
