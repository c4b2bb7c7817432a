// Package arabic produces a rough Arabic rendering of an image caption by
// substituting a fixed vocabulary of English phrases. Words outside the
// vocabulary stay in English.
package arabic

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/menta2k/image-captioner/pkg/caption"
)

// Rewriter captions an image and rewrites the caption with a Table
type Rewriter struct {
	gen   *caption.Generator
	table Table
}

// NewRewriter creates a Rewriter. A nil table means DefaultTable.
func NewRewriter(gen *caption.Generator, table Table) *Rewriter {
	if table == nil {
		table = DefaultTable()
	}
	return &Rewriter{gen: gen, table: table}
}

// Arabic generates a fresh sampled caption for img and rewrites it.
// It returns caption.ErrModelNotLoaded when no model is available.
func (r *Rewriter) Arabic(ctx context.Context, img image.Image) (string, error) {
	if r.gen == nil || !r.gen.Loaded() {
		return "", caption.ErrModelNotLoaded
	}

	english, err := r.gen.Generate(ctx, img, caption.Sampled)
	if err != nil {
		return "", fmt.Errorf("arabic caption: %w", err)
	}

	return strings.TrimSpace(r.table.Apply(english)), nil
}

// Table returns the substitution table in use
func (r *Rewriter) Table() Table {
	return r.table
}
