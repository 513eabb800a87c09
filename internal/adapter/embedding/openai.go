package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"dilr/config"
	"dilr/internal/domain"
)

// Client embeds text through an OpenAI-compatible /embeddings endpoint.
type Client struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	batchSize int
	client    *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// The endpoint returns either the OpenAI shape ("data") or a bare
// "embeddings" array; both are accepted.
type embeddingResponse struct {
	Data       []embeddingData `json:"data"`
	Embeddings [][]float32     `json:"embeddings"`
	Error      *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewClient builds an embedding client from config. Connection parameters
// are validated here so a misconfigured client fails before any network
// call is attempted.
func NewClient(cfg config.EmbeddingConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &domain.ConfigurationError{Param: "embedding.base_url"}
	}
	if cfg.APIKeyEnv == "" {
		return nil, &domain.ConfigurationError{Param: "embedding.api_key_env"}
	}
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, &domain.ConfigurationError{Param: cfg.APIKeyEnv}
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	dimension := cfg.Dimension
	if dimension == 0 {
		dimension = modelDimension(cfg.Model)
	}

	return &Client{
		apiKey:    apiKey,
		model:     cfg.Model,
		baseURL:   cfg.BaseURL,
		dimension: dimension,
		batchSize: batchSize,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Embed generates embeddings for the given texts, batching requests when
// the input exceeds the configured batch size. Either every text gets a
// vector or an error is returned and no vectors are valid.
func (c *Client) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += c.batchSize {
		end := i + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := c.embedBatch(texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, embeddings...)
	}

	return all, nil
}

func (c *Client) embedBatch(texts []string) ([][]float32, error) {
	endpoint := c.baseURL + "/embeddings"

	jsonData, err := json.Marshal(embeddingRequest{Input: texts, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Endpoint: endpoint, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Endpoint: endpoint, Detail: "failed to read response: " + err.Error()}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &domain.AuthenticationError{Endpoint: endpoint}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Detail:   preview(body),
		}
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, &domain.UpstreamError{
			Endpoint: endpoint,
			Detail:   fmt.Sprintf("unparseable response (body: %s): %v", preview(body), err),
		}
	}

	if embResp.Error != nil {
		return nil, &domain.UpstreamError{Endpoint: endpoint, Detail: embResp.Error.Message}
	}

	switch {
	case len(embResp.Data) > 0:
		embeddings := make([][]float32, len(texts))
		for _, data := range embResp.Data {
			if data.Index < len(embeddings) {
				embeddings[data.Index] = data.Embedding
			}
		}
		for i, e := range embeddings {
			if e == nil {
				return nil, &domain.UpstreamError{
					Endpoint: endpoint,
					Detail:   fmt.Sprintf("response missing embedding for input %d", i),
				}
			}
		}
		return embeddings, nil

	case len(embResp.Embeddings) > 0:
		if len(embResp.Embeddings) != len(texts) {
			return nil, &domain.UpstreamError{
				Endpoint: endpoint,
				Detail:   fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(embResp.Embeddings)),
			}
		}
		return embResp.Embeddings, nil

	default:
		return nil, &domain.UpstreamError{
			Endpoint: endpoint,
			Detail:   "response has neither data nor embeddings field",
		}
	}
}

func modelDimension(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	default:
		return 1536
	}
}

func (c *Client) Dimension() int {
	return c.dimension
}

func (c *Client) ModelName() string {
	return c.model
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
