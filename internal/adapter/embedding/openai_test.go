package embedding

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dilr/config"
	"dilr/internal/domain"
)

func testConfig(t *testing.T, baseURL string) config.EmbeddingConfig {
	t.Setenv("TEST_EMBED_KEY", "secret")
	return config.EmbeddingConfig{
		Model:     "text-embedding-3-small",
		BaseURL:   baseURL,
		APIKeyEnv: "TEST_EMBED_KEY",
		BatchSize: 100,
	}
}

func TestNewClient_MissingCredential(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "")

	_, err := NewClient(config.EmbeddingConfig{
		BaseURL:   "https://example.com/v1",
		APIKeyEnv: "TEST_EMBED_KEY",
	})
	var confErr *domain.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestNewClient_MissingBaseURL(t *testing.T) {
	_, err := NewClient(config.EmbeddingConfig{APIKeyEnv: "TEST_EMBED_KEY"})
	var confErr *domain.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestEmbed_OpenAIShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req embeddingRequest
		json.NewDecoder(r.Body).Decode(&req)

		// Respond out of order to verify index-based reassembly.
		resp := map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0, 1}, "index": 1},
				{"embedding": []float32{1, 0}, "index": 0},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(t, srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	embeddings, err := client.Embed([]string{"first", "second"})
	if err != nil {
		t.Fatal(err)
	}
	if len(embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(embeddings))
	}
	if embeddings[0][0] != 1 || embeddings[1][1] != 1 {
		t.Errorf("embeddings not reordered by index: %v", embeddings)
	}
}

func TestEmbed_BareArrayShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.5, 0.5}},
		})
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(t, srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	embeddings, err := client.Embed([]string{"only"})
	if err != nil {
		t.Fatal(err)
	}
	if len(embeddings) != 1 || embeddings[0][0] != 0.5 {
		t.Errorf("unexpected embeddings: %v", embeddings)
	}
}

func TestEmbed_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(t, srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Embed([]string{"text"})
	var authErr *domain.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
}

func TestEmbed_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "missing vector field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"usage": map[string]int{"total_tokens": 3}})
			},
		},
		{
			name: "wrong embedding count",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{1}, {2}}})
			},
		},
		{
			name: "api error payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"message": "model overloaded"},
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client, err := NewClient(testConfig(t, srv.URL))
			if err != nil {
				t.Fatal(err)
			}

			_, err = client.Embed([]string{"text"})
			var upErr *domain.UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
		})
	}
}

func TestEmbed_EmptyInput(t *testing.T) {
	client, err := NewClient(testConfig(t, "http://unused.invalid"))
	if err != nil {
		t.Fatal(err)
	}

	embeddings, err := client.Embed(nil)
	if err != nil {
		t.Fatal(err)
	}
	if embeddings != nil {
		t.Errorf("expected nil for empty input, got %v", embeddings)
	}
}

func TestMockEmbedder(t *testing.T) {
	e := NewMockEmbedder(8)
	embeddings, err := e.Embed([]string{"ab", "cd"})
	if err != nil {
		t.Fatal(err)
	}
	if len(embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(embeddings))
	}
	for _, v := range embeddings {
		if len(v) != 8 {
			t.Errorf("expected dimension 8, got %d", len(v))
		}
	}
}
