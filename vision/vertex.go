package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/nutrilog/foodvision/core"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// VertexClient calls Vertex AI over REST: Gemini for classification and
// multimodalembedding for image embeddings.
type VertexClient struct {
	baseURL    string
	projectID  string
	location   string
	model      string
	embedModel string
	tokens     oauth2.TokenSource
	client     *http.Client
}

// NewVertexClient creates a client authenticated with the service account
// JSON in cfg.
func NewVertexClient(cfg Config) (*VertexClient, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("vertex: %w: missing project ID", core.ErrInvalidConfig)
	}
	if len(cfg.ServiceAccountJSON) == 0 {
		return nil, fmt.Errorf("vertex: %w: missing service account credentials", core.ErrInvalidConfig)
	}

	creds, err := google.CredentialsFromJSON(context.Background(), cfg.ServiceAccountJSON, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("vertex: load credentials: %w", err)
	}

	return NewVertexClientWithTokenSource(cfg, creds.TokenSource), nil
}

// NewVertexClientWithTokenSource creates a client with an externally supplied
// token source. Useful for tests and pre-built credentials.
func NewVertexClientWithTokenSource(cfg Config, tokens oauth2.TokenSource) *VertexClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://us-central1-aiplatform.googleapis.com"
	}
	location := cfg.Location
	if location == "" {
		location = "us-central1"
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	embedModel := cfg.EmbedModel
	if embedModel == "" {
		embedModel = "multimodalembedding@001"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60
	}

	return &VertexClient{
		baseURL:    baseURL,
		projectID:  cfg.ProjectID,
		location:   location,
		model:      model,
		embedModel: embedModel,
		tokens:     tokens,
		client:     &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// Name returns the provenance tag stored alongside classified foods.
func (c *VertexClient) Name() string {
	return "google_vertex_ai"
}

// Classify sends the image to the Gemini multimodal endpoint and returns the
// raw response JSON, which carries the labels/description of the image.
func (c *VertexClient) Classify(ctx context.Context, image []byte, contentType string) (json.RawMessage, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}

	reqBody := map[string]any{
		"contents": []map[string]any{
			{
				"role": "user",
				"parts": []map[string]any{
					{
						"inline_data": map[string]any{
							"mime_type": contentType,
							"data":      base64.StdEncoding.EncodeToString(image),
						},
					},
				},
			},
		},
	}

	url := c.modelURL(c.model, "generateContent")
	body, err := c.post(ctx, "classify", url, reqBody)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Embed sends the image to the multimodal embedding endpoint and extracts the
// image embedding vector from the response.
func (c *VertexClient) Embed(ctx context.Context, image []byte) ([]float64, error) {
	reqBody := map[string]any{
		"instances": []map[string]any{
			{
				"image": map[string]any{
					"bytesBase64Encoded": base64.StdEncoding.EncodeToString(image),
				},
			},
		},
	}

	url := c.modelURL(c.embedModel, "predict")
	body, err := c.post(ctx, "embed", url, reqBody)
	if err != nil {
		return nil, err
	}

	var result struct {
		Predictions []struct {
			ImageEmbedding []float64 `json:"imageEmbedding"`
		} `json:"predictions"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &core.ProviderError{Op: "vertex embed", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(result.Predictions) == 0 || len(result.Predictions[0].ImageEmbedding) == 0 {
		return nil, &core.ProviderError{Op: "vertex embed", Err: core.ErrMissingEmbedding}
	}

	return result.Predictions[0].ImageEmbedding, nil
}

func (c *VertexClient) modelURL(model, method string) string {
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:%s",
		c.baseURL, c.projectID, c.location, model, method)
}

func (c *VertexClient) post(ctx context.Context, op, url string, reqBody any) ([]byte, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("vertex %s: marshal request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("vertex %s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Token()
	if err != nil {
		return nil, &core.ProviderError{Op: "vertex " + op, Err: fmt.Errorf("fetch token: %w", err)}
	}
	token.SetAuthHeader(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &core.ProviderError{Op: "vertex " + op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.ProviderError{Op: "vertex " + op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &core.ProviderError{Op: "vertex " + op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
