package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts generative-AI providers for document extraction.
type Client interface {
	// ExtractDocument sends one multimodal request (instruction plus
	// image bytes, or instruction plus text) and returns the model's
	// raw JSON output.
	ExtractDocument(ctx context.Context, input ExtractInput) (json.RawMessage, error)
	// ListModels returns the model identifiers available to the
	// configured credentials.
	ListModels(ctx context.Context) ([]string, error)
}

// ExtractInput captures the payload for one extraction request.
// Exactly one of ImageData or Text should be set.
type ExtractInput struct {
	ImageData []byte
	MimeType  string
	Text      string
}

// ErrNotConfigured is returned when no provider credentials are present.
var ErrNotConfigured = errors.New("AI provider not configured")

// Unconfigured is the client used when no API key is available; every
// call fails cleanly instead of proceeding with undefined behavior.
type Unconfigured struct{}

// ExtractDocument returns ErrNotConfigured.
func (Unconfigured) ExtractDocument(ctx context.Context, input ExtractInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotConfigured
}

// ListModels returns ErrNotConfigured.
func (Unconfigured) ListModels(ctx context.Context) ([]string, error) {
	_ = ctx
	return nil, ErrNotConfigured
}
