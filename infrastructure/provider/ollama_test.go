package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOllamaTestServer(t *testing.T, handler http.HandlerFunc) *Ollama {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOllama(OllamaConfig{
		BaseURL:     server.URL,
		VisionModel: "llava-test",
		Timeout:     5 * time.Second,
	})
}

func TestOllama_DescribeImage_ConcatenatesStream(t *testing.T) {
	var gotRequest map[string]any

	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"response":"A sunny ","done":false}` + "\n"))
		_, _ = w.Write([]byte(`{"response":"beach scene.","done":false}` + "\n"))
		_, _ = w.Write([]byte(`{"response":"","done":true}` + "\n"))
	})

	description, err := p.DescribeImage(context.Background(), []byte("fake-image"), "Describe this")
	require.NoError(t, err)
	assert.Equal(t, "A sunny beach scene.", description)

	assert.Equal(t, "llava-test", gotRequest["model"])
	assert.Equal(t, "Describe this", gotRequest["prompt"])
	images, ok := gotRequest["images"].([]any)
	require.True(t, ok)
	require.Len(t, images, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("fake-image")), images[0])
}

func TestOllama_DescribeImage_ServerError(t *testing.T) {
	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	})

	_, err := p.DescribeImage(context.Background(), []byte("img"), "prompt")
	require.Error(t, err)

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusInternalServerError, provErr.StatusCode())
	assert.Contains(t, provErr.Message(), "model not loaded")
}

func TestOllama_DescribeImage_MalformedStream(t *testing.T) {
	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json\n"))
	})

	_, err := p.DescribeImage(context.Background(), []byte("img"), "prompt")

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Contains(t, provErr.Message(), "malformed")
}

func TestOllama_EmbedText(t *testing.T) {
	var gotRequest map[string]any

	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		_, _ = w.Write([]byte(`{"embedding":[0.1,0.2,0.3]}`))
	})

	embedding, err := p.EmbedText(context.Background(), "a sunny beach")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, embedding)

	// Without a dedicated embedding model the vision model serves both.
	assert.Equal(t, "llava-test", gotRequest["model"])
	assert.Equal(t, "a sunny beach", gotRequest["prompt"])
}

func TestOllama_EmbedText_DedicatedModel(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel, _ = body["model"].(string)
		_, _ = w.Write([]byte(`{"embedding":[1]}`))
	}))
	t.Cleanup(server.Close)

	p := NewOllama(OllamaConfig{
		BaseURL:        server.URL,
		VisionModel:    "llava-test",
		EmbeddingModel: "nomic-embed-text",
		Timeout:        5 * time.Second,
	})

	_, err := p.EmbedText(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", gotModel)
}

func TestOllama_EmbedText_EmptyEmbedding(t *testing.T) {
	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[]}`))
	})

	_, err := p.EmbedText(context.Background(), "text")

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Contains(t, provErr.Message(), "no embedding")
}

func TestOllama_Models(t *testing.T) {
	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"models":[{"name":"llava-phi3:latest"},{"name":"nomic-embed-text:latest"}]}`))
	})

	models, err := p.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llava-phi3:latest", "nomic-embed-text:latest"}, models)
}

func TestOllama_Models_Unreachable(t *testing.T) {
	p := NewOllama(OllamaConfig{
		BaseURL:     "http://127.0.0.1:1",
		VisionModel: "llava-test",
		Timeout:     time.Second,
	})

	_, err := p.Models(context.Background())

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, 0, provErr.StatusCode())
}

func TestDescribeAndEmbed(t *testing.T) {
	var prompts []string
	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		prompt, _ := body["prompt"].(string)
		prompts = append(prompts, prompt)

		switch r.URL.Path {
		case "/api/generate":
			_, _ = w.Write([]byte(`{"response":"a red barn","done":true}` + "\n"))
		case "/api/embeddings":
			_, _ = w.Write([]byte(`{"embedding":[0.5,0.5]}`))
		}
	})

	description, embedding, err := DescribeAndEmbed(context.Background(), p, []byte("img"), "")
	require.NoError(t, err)
	assert.Equal(t, "a red barn", description)
	assert.Equal(t, []float64{0.5, 0.5}, embedding)

	// The default prompt describes, then the description itself is embedded.
	require.Len(t, prompts, 2)
	assert.NotEmpty(t, prompts[0])
	assert.Equal(t, "a red barn", prompts[1])
}

func TestDescribeAndEmbed_DescribeFailureIsTerminal(t *testing.T) {
	p := newOllamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream down"}`))
	})

	_, _, err := DescribeAndEmbed(context.Background(), p, []byte("img"), "prompt")

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusBadGateway, provErr.StatusCode())
}
