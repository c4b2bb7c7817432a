package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/menta2k/image-captioner/pkg/types"
)

// DefaultTimeout bounds a generation call when the caller set no deadline
const DefaultTimeout = 300 * time.Second

// Client wraps the Ollama API client
type Client struct {
	client  *api.Client
	timeout time.Duration
}

// NewClient creates a new Ollama client
func NewClient(ollamaURL string, timeout time.Duration) (*Client, error) {
	// Parse the provided URL
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", ollamaURL)
	}

	// Create base URL from the provided URL (removing path like /api/chat)
	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Create client with the specified URL, ignoring environment
	return &Client{
		client:  api.NewClient(baseURL, http.DefaultClient),
		timeout: timeout,
	}, nil
}

// Name implements client.VisionClient
func (c *Client) Name() string { return "ollama" }

// Ping checks that the server answers and has the model available locally
func (c *Client) Ping(ctx context.Context, model string) error {
	if err := c.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama heartbeat: %w", err)
	}
	if _, err := c.client.Show(ctx, &api.ShowRequest{Model: model}); err != nil {
		return fmt.Errorf("ollama show %s: %w", model, err)
	}
	return nil
}

// Pull downloads the model into the Ollama server
func (c *Client) Pull(ctx context.Context, model string) error {
	streamFalse := false
	req := &api.PullRequest{Model: model, Stream: &streamFalse}
	err := c.client.Pull(ctx, req, func(resp api.ProgressResponse) error {
		return nil
	})
	if err != nil {
		return fmt.Errorf("ollama pull %s: %w", model, err)
	}
	return nil
}

// Caption generates a free-text caption for the image
func (c *Client) Caption(ctx context.Context, model, prompt string, img types.ModelImage, opts types.GenerateOptions) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// Decode base64 image to raw bytes
	imgBytes, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 image: %w", err)
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
				Images:  []api.ImageData{api.ImageData(imgBytes)},
			},
		},
		Stream:  &streamFalse,
		Options: chatOptions(opts),
	}

	var responseContent string
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %w", err)
	}

	return responseContent, nil
}

// chatOptions maps generation options onto Ollama runner options.
// Ollama has no beam search, so NumBeams and EarlyStopping are not sent.
func chatOptions(opts types.GenerateOptions) map[string]any {
	options := map[string]any{
		"temperature": opts.EffectiveTemperature(),
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	if !opts.Sample {
		options["top_k"] = 1
	}
	return options
}
