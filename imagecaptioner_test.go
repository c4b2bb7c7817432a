package imagecaptioner

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-captioner/pkg/arabic"
	"github.com/menta2k/image-captioner/pkg/caption"
	"github.com/menta2k/image-captioner/pkg/client/clienttest"
	"github.com/menta2k/image-captioner/pkg/model"
	"github.com/menta2k/image-captioner/pkg/processing"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Create a pattern with a bright subject in the center
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
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

func TestNew(t *testing.T) {
	d := New(nil)
	require.NotNil(t, d)
	assert.NotNil(t, d.english)
	assert.NotNil(t, d.arabic)
	assert.False(t, d.Loaded())
	assert.Empty(t, d.Backend())
	assert.Empty(t, d.ModelName())
}

func TestDescribeModelNotLoaded(t *testing.T) {
	d := New(nil)

	for _, img := range []image.Image{createTestImage(1, 1), createTestImage(400, 300)} {
		res := d.Describe(context.Background(), img)
		assert.ErrorIs(t, res.EnglishErr, caption.ErrModelNotLoaded)
		assert.ErrorIs(t, res.ArabicErr, caption.ErrModelNotLoaded)
		assert.False(t, res.OK())
	}
}

func TestDescribe(t *testing.T) {
	fake := &clienttest.Fake{Captions: []string{"a white square on a black floor", "a white box on a floor"}}
	d := New(newBundle(t, fake))
	assert.True(t, d.Loaded())
	assert.Equal(t, "fake", d.Backend())
	assert.Equal(t, "test-model", d.ModelName())

	res := d.Describe(context.Background(), createTestImage(400, 300))
	require.True(t, res.OK())
	assert.Equal(t, "a white square on a black floor", res.English)
	assert.Equal(t, "أبيض box on أرضية", res.Arabic)

	// English first with beam search, then a separate sampled call
	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.False(t, calls[0].Opts.Sample)
	assert.True(t, calls[1].Opts.Sample)
}

func TestDescribeIndependentErrors(t *testing.T) {
	backendErr := errors.New("backend down")
	d := New(newBundle(t, &clienttest.Fake{Err: backendErr}))

	res := d.Describe(context.Background(), createTestImage(50, 50))
	assert.ErrorIs(t, res.EnglishErr, backendErr)
	assert.ErrorIs(t, res.ArabicErr, backendErr)
	assert.Empty(t, res.English)
	assert.Empty(t, res.Arabic)
}

func TestNewWithTable(t *testing.T) {
	fake := &clienttest.Fake{Captions: []string{"a fox"}}
	d := NewWithTable(newBundle(t, fake), arabic.Table{{English: "a fox", Arabic: "ثعلب"}})

	res := d.Describe(context.Background(), createTestImage(10, 10))
	require.True(t, res.OK())
	assert.Equal(t, "a fox", res.English)
	assert.Equal(t, "ثعلب", res.Arabic)
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
