package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-captioner/pkg/types"
)

func newTestServer(t *testing.T, chatBody *map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/show", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "llava" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"modelfile":"FROM llava"}`))
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if chatBody != nil {
			_ = json.NewDecoder(r.Body).Decode(chatBody)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llava","message":{"role":"assistant","content":"a dog on a couch"},"done":true}` + "\n"))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://localhost:11434/api/chat", 0)
	require.NoError(t, err)
	assert.Equal(t, "ollama", c.Name())
	assert.Equal(t, DefaultTimeout, c.timeout)

	_, err = NewClient("not a url", 0)
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	ts := newTestServer(t, nil)
	c, err := NewClient(ts.URL, 0)
	require.NoError(t, err)

	assert.NoError(t, c.Ping(context.Background(), "llava"))
	assert.Error(t, c.Ping(context.Background(), "missing"))
}

func TestCaption(t *testing.T) {
	var body map[string]any
	ts := newTestServer(t, &body)
	c, err := NewClient(ts.URL, 0)
	require.NoError(t, err)

	img := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	opts := types.GenerateOptions{MaxTokens: 50, NumBeams: 4, EarlyStopping: true}
	text, err := c.Caption(context.Background(), "llava", "caption this", types.ModelImage{Data: img}, opts)
	require.NoError(t, err)
	assert.Equal(t, "a dog on a couch", text)

	assert.Equal(t, "llava", body["model"])
	options, ok := body["options"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 50, options["num_predict"])
	assert.EqualValues(t, 0, options["temperature"])
	assert.NotContains(t, options, "num_beams")
}

func TestCaptionInvalidBase64(t *testing.T) {
	c, err := NewClient("http://localhost:11434", 0)
	require.NoError(t, err)

	_, err = c.Caption(context.Background(), "llava", "p", types.ModelImage{Data: "%%%"}, types.GenerateOptions{})
	assert.Error(t, err)
}

func TestChatOptions(t *testing.T) {
	greedy := chatOptions(types.GenerateOptions{MaxTokens: 50})
	assert.Equal(t, 0.0, greedy["temperature"])
	assert.Equal(t, 50, greedy["num_predict"])
	assert.Equal(t, 1, greedy["top_k"])

	sampled := chatOptions(types.GenerateOptions{MaxTokens: 50, Sample: true, Temperature: 0.7})
	assert.Equal(t, 0.7, sampled["temperature"])
	assert.NotContains(t, sampled, "top_k")

	unbounded := chatOptions(types.GenerateOptions{})
	assert.NotContains(t, unbounded, "num_predict")
}
