package model

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/menta2k/image-captioner/pkg/client"
	"github.com/menta2k/image-captioner/pkg/gemini"
	"github.com/menta2k/image-captioner/pkg/llamacpp"
	"github.com/menta2k/image-captioner/pkg/ollama"
)

// Supported backends
const (
	BackendOllama   = "ollama"
	BackendLlamaCpp = "llamacpp"
	BackendGemini   = "gemini"
)

// Options selects and configures the model backend
type Options struct {
	Backend string
	URL     string
	Name    string
	APIKey  string
	Timeout time.Duration
	// Pull asks an Ollama backend to download a missing model
	Pull bool
}

// Puller is implemented by backends that can download models on demand
type Puller interface {
	Pull(ctx context.Context, model string) error
}

// DefaultURL returns the conventional server URL for a backend
func DefaultURL(backend string) string {
	switch backend {
	case BackendOllama:
		return "http://localhost:11434"
	case BackendLlamaCpp:
		return llamacpp.DefaultURL
	default:
		return ""
	}
}

// DefaultOllamaModel is the captioning model used with a local Ollama or llama.cpp server
const DefaultOllamaModel = "llava"

// DefaultModelName returns the captioning model used when none is configured
func DefaultModelName(backend string) string {
	if backend == BackendGemini {
		return gemini.DefaultModel
	}
	return DefaultOllamaModel
}

// NewClient creates the VisionClient for the configured backend
func NewClient(ctx context.Context, opts Options) (client.VisionClient, error) {
	url := opts.URL
	if url == "" {
		url = DefaultURL(opts.Backend)
	}

	switch opts.Backend {
	case BackendOllama:
		c, err := ollama.NewClient(url, opts.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return c, nil
	case BackendLlamaCpp:
		c, err := llamacpp.NewClient(url, opts.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp client: %w", err)
		}
		return c, nil
	case BackendGemini:
		c, err := gemini.NewClient(ctx, opts.APIKey, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown backend: %q (use %q, %q or %q)", opts.Backend, BackendOllama, BackendLlamaCpp, BackendGemini)
	}
}

// Load builds the model bundle once at startup. Failures are logged and
// reported as a nil bundle so the server can run degraded.
func Load(ctx context.Context, opts Options, pre Preprocessor, log *zap.Logger) *Bundle {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Name == "" {
		opts.Name = DefaultModelName(opts.Backend)
	}
	log = log.With(zap.String("backend", opts.Backend), zap.String("model", opts.Name))

	gen, err := NewClient(ctx, opts)
	if err != nil {
		log.Error("Failed to load model", zap.Error(err))
		return nil
	}
	return LoadWithClient(ctx, gen, opts, pre, log)
}

// LoadWithClient verifies gen can serve the model and wraps it in a bundle.
func LoadWithClient(ctx context.Context, gen client.VisionClient, opts Options, pre Preprocessor, log *zap.Logger) *Bundle {
	if log == nil {
		log = zap.NewNop()
	}

	if err := gen.Ping(ctx, opts.Name); err != nil {
		puller, ok := gen.(Puller)
		if !opts.Pull || !ok {
			log.Error("Failed to load model", zap.Error(err))
			return nil
		}

		log.Info("Model not available, pulling", zap.Error(err))
		if err := puller.Pull(ctx, opts.Name); err != nil {
			log.Error("Failed to pull model", zap.Error(err))
			return nil
		}
		if err := gen.Ping(ctx, opts.Name); err != nil {
			log.Error("Failed to load model after pull", zap.Error(err))
			return nil
		}
	}

	bundle, err := NewBundle(pre, gen, opts.Name)
	if err != nil {
		log.Error("Failed to load model", zap.Error(err))
		return nil
	}

	log.Info("Model loaded")
	return bundle
}
