package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxStreamLine bounds a single streamed JSON line from the generate
// endpoint. Descriptions are short; 1 MiB is generous.
const maxStreamLine = 1 << 20

// Ollama talks to an ollama server's native HTTP API: /api/generate for
// image descriptions (streamed JSON lines concatenated until done),
// /api/embeddings for text embeddings, and /api/tags for the model list.
type Ollama struct {
	baseURL        string
	visionModel    string
	embeddingModel string
	client         *http.Client
}

// OllamaConfig holds configuration for the Ollama provider.
type OllamaConfig struct {
	BaseURL        string
	VisionModel    string
	EmbeddingModel string // empty: the vision model serves embeddings too
	Timeout        time.Duration
	Transport      http.RoundTripper
}

// NewOllama creates a new Ollama provider.
func NewOllama(cfg OllamaConfig) *Ollama {
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Transport != nil {
		client.Transport = cfg.Transport
	}

	return &Ollama{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		visionModel:    cfg.VisionModel,
		embeddingModel: cfg.EmbeddingModel,
		client:         client,
	}
}

type ollamaGenerateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

type ollamaGenerateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// DescribeImage sends the image and prompt to /api/generate and concatenates
// the streamed response chunks until the server reports completion.
func (o *Ollama) DescribeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	const op = "describe_image"

	payload := ollamaGenerateRequest{
		Model:  o.visionModel,
		Prompt: prompt,
		Images: []string{base64.StdEncoding.EncodeToString(image)},
		Stream: true,
	}

	resp, err := o.post(ctx, op, "/api/generate", payload)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk ollamaGenerateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", NewProviderError(op, resp.StatusCode, "malformed stream chunk", err)
		}
		full.WriteString(chunk.Response)
		if chunk.Done {
			return strings.TrimSpace(full.String()), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", NewProviderError(op, resp.StatusCode, "read stream", err)
	}

	// Stream ended without a done marker; treat what arrived as complete.
	return strings.TrimSpace(full.String()), nil
}

// EmbedText requests an embedding vector for text from /api/embeddings.
func (o *Ollama) EmbedText(ctx context.Context, text string) ([]float64, error) {
	const op = "embed_text"

	payload := ollamaEmbeddingRequest{
		Model:  o.embedModel(),
		Prompt: text,
	}

	resp, err := o.post(ctx, op, "/api/embeddings", payload)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var body ollamaEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, NewProviderError(op, resp.StatusCode, "malformed response", err)
	}
	if len(body.Embedding) == 0 {
		return nil, NewProviderError(op, resp.StatusCode, "response contains no embedding", nil)
	}

	return body.Embedding, nil
}

// Models lists the model names available at the server via /api/tags.
func (o *Ollama) Models(ctx context.Context) ([]string, error) {
	const op = "list_models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, NewProviderError(op, 0, "create request", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, NewProviderError(op, 0, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewProviderError(op, resp.StatusCode, readErrorBody(resp.Body), nil)
	}

	var body ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, NewProviderError(op, resp.StatusCode, "malformed response", err)
	}

	names := make([]string, len(body.Models))
	for i, m := range body.Models {
		names[i] = m.Name
	}
	return names, nil
}

// Close is a no-op for the Ollama provider.
func (o *Ollama) Close() error { return nil }

// embedModel returns the model used for text embeddings.
func (o *Ollama) embedModel() string {
	if o.embeddingModel != "" {
		return o.embeddingModel
	}
	return o.visionModel
}

// post sends a JSON payload and returns the response with a 2xx status.
// The caller owns the response body.
func (o *Ollama) post(ctx context.Context, op, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewProviderError(op, 0, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, NewProviderError(op, 0, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, NewProviderError(op, 0, "request failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		return nil, NewProviderError(op, resp.StatusCode, readErrorBody(resp.Body), nil)
	}

	return resp, nil
}

// readErrorBody extracts a short failure detail from an error response.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return "no error detail"
	}

	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("%.200s", bytes.TrimSpace(data))
}

// Ensure Ollama implements the interfaces.
var _ Provider = (*Ollama)(nil)
