// Package vision provides clients for image classification and embedding
// generation against external multimodal AI services.
package vision

import (
	"context"
	"encoding/json"
)

// Client classifies food images and produces embedding vectors for them.
type Client interface {
	// Classify describes the contents of an image. The returned JSON is the
	// provider's raw response document.
	Classify(ctx context.Context, image []byte, contentType string) (json.RawMessage, error)

	// Embed produces a fixed-dimension embedding vector for an image.
	Embed(ctx context.Context, image []byte) ([]float64, error)

	// Name identifies the provider for payload provenance.
	Name() string
}

// Config configures a provider client.
type Config struct {
	BaseURL            string
	ProjectID          string
	Location           string
	Model              string
	EmbedModel         string
	ServiceAccountJSON []byte
	Timeout            int // seconds
}
