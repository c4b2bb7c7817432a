// Package clienttest provides an in-memory VisionClient for tests.
package clienttest

import (
	"context"
	"sync"

	"github.com/menta2k/image-captioner/pkg/types"
)

// Call records one Caption invocation.
type Call struct {
	Model  string
	Prompt string
	Image  types.ModelImage
	Opts   types.GenerateOptions
}

// Fake is a scripted VisionClient. Captions are returned in order; once
// exhausted the last caption repeats.
type Fake struct {
	Captions []string
	Err      error
	PingErr  error

	mu    sync.Mutex
	calls []Call
}

// Name implements client.VisionClient.
func (f *Fake) Name() string { return "fake" }

// Ping implements client.VisionClient.
func (f *Fake) Ping(ctx context.Context, model string) error { return f.PingErr }

// Caption implements client.VisionClient.
func (f *Fake) Caption(ctx context.Context, model, prompt string, img types.ModelImage, opts types.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.calls)
	f.calls = append(f.calls, Call{Model: model, Prompt: prompt, Image: img, Opts: opts})
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Captions) == 0 {
		return "", nil
	}
	if n >= len(f.Captions) {
		n = len(f.Captions) - 1
	}
	return f.Captions[n], nil
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}
