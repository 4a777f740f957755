package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI talks to an OpenAI-compatible endpoint: a vision-capable chat model
// for image descriptions and an embeddings model for text vectors.
type OpenAI struct {
	client         *openai.Client
	visionModel    string
	embeddingModel string
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	VisionModel    string
	EmbeddingModel string
	Timeout        time.Duration
	Transport      http.RoundTripper
}

// NewOpenAI creates a new OpenAI-compatible provider.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Transport != nil {
		httpClient.Transport = cfg.Transport
	}
	clientCfg.HTTPClient = httpClient

	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = openai.GPT4o
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = string(openai.SmallEmbedding3)
	}

	return &OpenAI{
		client:         openai.NewClientWithConfig(clientCfg),
		visionModel:    visionModel,
		embeddingModel: embeddingModel,
	}
}

// DescribeImage sends the image and prompt to the vision chat model and
// returns the generated description.
func (p *OpenAI) DescribeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	const op = "describe_image"

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)

	req := openai.ChatCompletionRequest{
		Model: p.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: dataURL,
						},
					},
				},
			},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", p.wrapError(op, err)
	}
	if len(resp.Choices) == 0 {
		return "", NewProviderError(op, 0, "no choices in response", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// EmbedText requests an embedding vector for text.
func (p *OpenAI) EmbedText(ctx context.Context, text string) ([]float64, error) {
	const op = "embed_text"

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.embeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, p.wrapError(op, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, NewProviderError(op, 0, "response contains no embedding", nil)
	}

	embedding := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		embedding[i] = float64(v)
	}
	return embedding, nil
}

// Models lists the model identifiers available at the endpoint.
func (p *OpenAI) Models(ctx context.Context) ([]string, error) {
	const op = "list_models"

	resp, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, p.wrapError(op, err)
	}

	names := make([]string, len(resp.Models))
	for i, m := range resp.Models {
		names[i] = m.ID
	}
	return names, nil
}

// Close is a no-op for the OpenAI provider.
func (p *OpenAI) Close() error { return nil }

// wrapError wraps a go-openai error into a ProviderError.
func (p *OpenAI) wrapError(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(operation, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError(operation, reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	return NewProviderError(operation, 0, err.Error(), err)
}

// Ensure OpenAI implements the interfaces.
var _ Provider = (*OpenAI)(nil)
