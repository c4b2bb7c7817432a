package processing

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/image-captioner/pkg/types"
)

// DefaultUserAgent is sent when fetching images by URL
const DefaultUserAgent = "Image-Captioner/1.0 (+https://github.com/menta2k/image-captioner)"

// ErrUnsupportedScheme is returned for image URLs that are not http or https
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// StatusError reports a non-success HTTP status from an image host
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to download image: HTTP %d %s for url: %s", e.StatusCode, e.Status, e.URL)
}

// Config holds options for fetching images and preparing them for a model
type Config struct {
	SendFormat   string        // jpg|png
	SendSize     int           // max long side in px, 0 keeps original size
	SendQuality  int           // JPEG quality 1-100
	FetchTimeout time.Duration // 0 means no timeout
	UserAgent    string
}

// DefaultConfig returns the settings used by the server
func DefaultConfig() Config {
	return Config{
		SendFormat:   "jpg",
		SendSize:     1536,
		SendQuality:  85,
		FetchTimeout: 30 * time.Second,
		UserAgent:    DefaultUserAgent,
	}
}

// Processor handles image processing operations
type Processor struct {
	config Config
	http   *resty.Client
}

// NewProcessor creates a new image processor with default configuration
func NewProcessor() *Processor {
	return NewProcessorWithConfig(DefaultConfig())
}

// NewProcessorWithConfig creates a new image processor
func NewProcessorWithConfig(cfg Config) *Processor {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	client := resty.New().
		SetTimeout(cfg.FetchTimeout).
		SetHeader("User-Agent", cfg.UserAgent)
	return &Processor{config: cfg, http: client}
}

// LoadImageFromURL downloads an image and returns it normalized to RGB
func (p *Processor) LoadImageFromURL(ctx context.Context, imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q (only http and https are supported)", ErrUnsupportedScheme, parsedURL.Scheme)
	}

	resp, err := p.http.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{URL: imageURL, StatusCode: resp.StatusCode(), Status: statusText(resp.Status())}
	}

	return p.DecodeImage(resp.Body())
}

// LoadImageFromReader decodes an image from r and returns it normalized to RGB
func (p *Processor) LoadImageFromReader(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return p.DecodeImage(data)
}

// LoadImage loads an image from a file path and returns it normalized to RGB
func (p *Processor) LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	img, err := p.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadImageSmart loads an image from either a file path or URL
func (p *Processor) LoadImageSmart(ctx context.Context, source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(ctx, source)
	}
	return p.LoadImage(source)
}

// DecodeImage decodes image bytes with WebP support and converts the result to RGB
func (p *Processor) DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image: empty data")
	}

	// Try standard image.Decode first
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return ToRGB(img), nil
	}

	// Try WebP decode
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return ToRGB(img), nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// ToRGB returns an opaque copy of img. Alpha is discarded without
// compositing, so visible colors keep their stored values.
func ToRGB(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// GetImageInfo returns basic information about an image
func (p *Processor) GetImageInfo(img image.Image) types.ImageInfo {
	b := img.Bounds()
	return types.ImageInfo{Width: b.Dx(), Height: b.Dy()}
}

// SendMIMEType returns the media type PrepareImageForModel encodes to
func (p *Processor) SendMIMEType() string {
	if strings.ToLower(p.config.SendFormat) == "png" {
		return "image/png"
	}
	return "image/jpeg"
}

// PrepareImageForModel resizes and encodes an image to base64 for a vision model
func (p *Processor) PrepareImageForModel(img image.Image) (string, error) {
	if maxDim := p.config.SendSize; maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	switch strings.ToLower(p.config.SendFormat) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	default: // jpg
		quality := p.config.SendQuality
		if quality < 1 || quality > 100 {
			quality = jpeg.DefaultQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// statusText trims the numeric code resty keeps at the front of Status
func statusText(status string) string {
	if i := strings.IndexByte(status, ' '); i >= 0 {
		return status[i+1:]
	}
	return status
}
