package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/menta2k/image-captioner/pkg/types"
)

// DefaultModel is used when no model name is configured
const DefaultModel = "gemini-2.5-flash-lite"

// Client captions images with the Gemini API
type Client struct {
	client  *genai.Client
	timeout time.Duration
}

// NewClient creates a Gemini client authenticated with apiKey
func NewClient(ctx context.Context, apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{client: client, timeout: timeout}, nil
}

// Name implements client.VisionClient
func (c *Client) Name() string { return "gemini" }

// Ping looks the model up in the Gemini model catalog
func (c *Client) Ping(ctx context.Context, model string) error {
	if _, err := c.client.Models.Get(ctx, model, nil); err != nil {
		return fmt.Errorf("gemini model %s: %w", model, err)
	}
	return nil
}

// Caption implements client.VisionClient
func (c *Client) Caption(ctx context.Context, model, prompt string, img types.ModelImage, opts types.GenerateOptions) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents, err := userContents(prompt, img)
	if err != nil {
		return "", err
	}

	result, err := c.client.Models.GenerateContent(ctx, model, contents, generateConfig(opts))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	return result.Text(), nil
}

// userContents builds a single user turn with the prompt and the inline image
func userContents(prompt string, img types.ModelImage) ([]*genai.Content, error) {
	imgBytes, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		{InlineData: &genai.Blob{Data: imgBytes, MIMEType: img.MediaType()}},
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

// generateConfig maps generation options onto the Gemini request config.
// Gemini exposes no beam search; a single candidate is requested.
func generateConfig(opts types.GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(float32(opts.EffectiveTemperature())),
		CandidateCount: 1,
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if !opts.Sample {
		cfg.TopK = genai.Ptr(float32(1))
	}
	return cfg
}
