// Package provider adapts external model-serving endpoints that turn images
// into descriptions and texts into embedding vectors.
package provider

import (
	"context"
	"fmt"

	"github.com/photolens/photolens/internal/config"
)

// Describer generates a text description of an image.
type Describer interface {
	// DescribeImage sends the canonical image bytes and a prompt to the
	// description-generation endpoint and returns the generated text.
	DescribeImage(ctx context.Context, image []byte, prompt string) (string, error)
}

// Embedder converts text into an embedding vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// ModelLister lists the model identifiers available at the endpoint.
type ModelLister interface {
	Models(ctx context.Context) ([]string, error)
}

// Provider is the full model-serving endpoint contract.
type Provider interface {
	Describer
	Embedder
	ModelLister

	// Close releases any resources held by the provider.
	Close() error
}

// DescribeAndEmbed generates a description of the image and embeds that
// description. Embeddings are always derived from the generated text, never
// from pixels, so image queries and text queries share one embedding space.
// An empty prompt selects the default describe prompt. No implicit retry:
// a failed call surfaces to the caller, who decides whether to retry.
func DescribeAndEmbed(ctx context.Context, p Provider, image []byte, prompt string) (string, []float64, error) {
	if prompt == "" {
		prompt = config.DefaultDescribePrompt
	}

	description, err := p.DescribeImage(ctx, image, prompt)
	if err != nil {
		return "", nil, err
	}

	embedding, err := p.EmbedText(ctx, description)
	if err != nil {
		return "", nil, err
	}

	return description, embedding, nil
}

// ProviderError represents a failure of a remote model call: a network
// error, a non-2xx status, or a malformed response body.
type ProviderError struct {
	operation  string
	statusCode int
	message    string
	err        error
}

// NewProviderError creates a new ProviderError.
func NewProviderError(operation string, statusCode int, message string, err error) *ProviderError {
	return &ProviderError{
		operation:  operation,
		statusCode: statusCode,
		message:    message,
		err:        err,
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.statusCode != 0 {
		return fmt.Sprintf("provider: %s failed (status %d): %s", e.operation, e.statusCode, e.message)
	}
	return fmt.Sprintf("provider: %s failed: %s", e.operation, e.message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error { return e.err }

// Operation returns the name of the failed remote operation.
func (e *ProviderError) Operation() string { return e.operation }

// StatusCode returns the HTTP status, or 0 when the call never completed.
func (e *ProviderError) StatusCode() int { return e.statusCode }

// Message returns the failure detail.
func (e *ProviderError) Message() string { return e.message }
