package caption

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-captioner/pkg/client/clienttest"
	"github.com/menta2k/image-captioner/pkg/model"
	"github.com/menta2k/image-captioner/pkg/processing"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	return img
}

func newBundle(t *testing.T, fake *clienttest.Fake) *model.Bundle {
	t.Helper()
	b, err := model.NewBundle(processing.NewProcessor(), fake, "test-model")
	require.NoError(t, err)
	return b
}

type panickingPreprocessor struct{}

func (panickingPreprocessor) PrepareImageForModel(img image.Image) (string, error) {
	panic("tensor shape mismatch")
}

func (panickingPreprocessor) SendMIMEType() string { return "image/jpeg" }

func TestEnglishModelNotLoaded(t *testing.T) {
	g := New(nil)
	assert.False(t, g.Loaded())

	for _, size := range []int{1, 100, 640} {
		_, err := g.English(context.Background(), createTestImage(size, size))
		assert.ErrorIs(t, err, ErrModelNotLoaded)
	}
}

func TestEnglishUsesBeamSearch(t *testing.T) {
	fake := &clienttest.Fake{Captions: []string{"  a red square on a wall\n"}}
	g := New(newBundle(t, fake))

	text, err := g.English(context.Background(), createTestImage(100, 100))
	require.NoError(t, err)
	assert.Equal(t, "a red square on a wall", text)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, BeamSearch, calls[0].Opts)
	assert.Equal(t, 50, calls[0].Opts.MaxTokens)
	assert.Equal(t, 4, calls[0].Opts.NumBeams)
	assert.True(t, calls[0].Opts.EarlyStopping)
	assert.False(t, calls[0].Opts.Sample)
	assert.Equal(t, DefaultPrompt, calls[0].Prompt)
	assert.Equal(t, "test-model", calls[0].Model)
	assert.NotEmpty(t, calls[0].Image.Data)
	assert.Equal(t, "image/jpeg", calls[0].Image.MIMEType)
}

func TestGenerateWrapsBackendError(t *testing.T) {
	backendErr := errors.New("connection refused")
	g := New(newBundle(t, &clienttest.Fake{Err: backendErr}))

	_, err := g.English(context.Background(), createTestImage(10, 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
	assert.Contains(t, err.Error(), "generate")
}

func TestGenerateEmptyCaption(t *testing.T) {
	g := New(newBundle(t, &clienttest.Fake{Captions: []string{" </s> "}}))

	_, err := g.English(context.Background(), createTestImage(10, 10))
	assert.ErrorIs(t, err, ErrEmptyCaption)
}

func TestGenerateRecoversPanic(t *testing.T) {
	b, err := model.NewBundle(panickingPreprocessor{}, &clienttest.Fake{}, "m")
	require.NoError(t, err)

	_, err = New(b).English(context.Background(), createTestImage(10, 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tensor shape mismatch")
}

func TestNewWithPrompt(t *testing.T) {
	fake := &clienttest.Fake{Captions: []string{"a cat"}}
	g := NewWithPrompt(newBundle(t, fake), "describe")

	_, err := g.Generate(context.Background(), createTestImage(10, 10), Sampled)
	require.NoError(t, err)
	assert.Equal(t, "describe", fake.Calls()[0].Prompt)
	assert.Equal(t, 0.7, fake.Calls()[0].Opts.Temperature)
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "a dog", want: "a dog"},
		{in: "  a dog  ", want: "a dog"},
		{in: "<s> a dog</s>", want: "a dog"},
		{in: "[CLS] a man riding a horse [SEP]", want: "a man riding a horse"},
		{in: "a cat<|im_end|>", want: "a cat"},
		{in: "<|endoftext|>", want: ""},
		{in: "a tree <pad><pad>", want: "a tree"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.in), "input %q", tt.in)
	}
}
