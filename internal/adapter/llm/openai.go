package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"dilr/config"
	"dilr/internal/domain"
)

// truncationNote is appended when the model ran out of tokens mid-answer.
const truncationNote = "\n\n[NOTE: Response was truncated. The solution may be incomplete. " +
	"Consider rephrasing the question or using a model with higher token limits.]"

// Client calls an OpenAI-compatible chat completions endpoint and parses
// the answer into the four solution styles.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewClient builds a chat client from config, validating connection
// parameters up front.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &domain.ConfigurationError{Param: "llm.base_url"}
	}
	if cfg.APIKeyEnv == "" {
		return nil, &domain.ConfigurationError{Param: "llm.api_key_env"}
	}
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, &domain.ConfigurationError{Param: cfg.APIKeyEnv}
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 16000
	}

	return &Client{
		apiKey:      apiKey,
		model:       cfg.Model,
		baseURL:     cfg.BaseURL,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		client: &http.Client{
			Timeout: 180 * time.Second,
		},
	}, nil
}

// Explain sends the prompts and parses the model's JSON answer into the
// four styles. Non-JSON answers fall back to the raw content in every
// field rather than failing the request.
func (c *Client) Explain(systemPrompt, userPrompt string) (domain.Explanation, error) {
	endpoint := c.baseURL + "/chat/completions"

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	// JSON mode is an OpenAI extension; other compatible providers reject it.
	if strings.Contains(strings.ToLower(c.baseURL), "openai") {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return domain.Explanation{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return domain.Explanation{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Explanation{}, &domain.UpstreamError{Endpoint: endpoint, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Explanation{}, &domain.UpstreamError{Endpoint: endpoint, Detail: "failed to read response: " + err.Error()}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return domain.Explanation{}, &domain.AuthenticationError{Endpoint: endpoint}
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Explanation{}, &domain.UpstreamError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Detail:   preview(body),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return domain.Explanation{}, &domain.UpstreamError{
			Endpoint: endpoint,
			Detail:   fmt.Sprintf("unparseable response (body: %s): %v", preview(body), err),
		}
	}
	if chatResp.Error != nil {
		return domain.Explanation{}, &domain.UpstreamError{Endpoint: endpoint, Detail: chatResp.Error.Message}
	}
	if len(chatResp.Choices) == 0 {
		return domain.Explanation{}, &domain.UpstreamError{Endpoint: endpoint, Detail: "response has no choices"}
	}

	choice := chatResp.Choices[0]
	content := choice.Message.Content
	if choice.FinishReason == "length" {
		content += truncationNote
	}

	return parseExplanation(content), nil
}

func (c *Client) ModelName() string {
	return c.model
}

// parseExplanation extracts the four styles from the model's answer. The
// model sometimes returns nested objects or arrays where strings were
// asked for; those are flattened rather than rejected.
func parseExplanation(content string) domain.Explanation {
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		// Not JSON at all: surface the raw text in every field so the
		// caller still sees what the model said.
		return domain.Explanation{
			Direct:     content,
			StepByStep: content,
			Intuitive:  content,
			Shortcut:   content,
		}
	}

	return domain.Explanation{
		Direct:     coerceString(raw["direct"]),
		StepByStep: coerceString(raw["step_by_step"]),
		Intuitive:  coerceString(raw["intuitive"]),
		Shortcut:   coerceString(raw["shortcut"]),
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, coerceString(val[k])))
		}
		return strings.Join(lines, "\n")
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			lines = append(lines, coerceString(item))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("%v", val)
	}
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
