package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Retrieve.TopK != 4 {
		t.Errorf("expected TopK=4, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Retrieve.Mode != "semantic" {
		t.Errorf("expected mode=semantic, got %s", cfg.Retrieve.Mode)
	}
	if cfg.Embedding.BatchSize != 100 {
		t.Errorf("expected BatchSize=100, got %d", cfg.Embedding.BatchSize)
	}
	if !cfg.Embedding.Normalize {
		t.Error("expected Normalize=true by default")
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("expected Temperature=0.2, got %f", cfg.LLM.Temperature)
	}
	if cfg.Prompt.MaxContextChars != 5000 {
		t.Errorf("expected MaxContextChars=5000, got %d", cfg.Prompt.MaxContextChars)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "dilr.yaml")

	content := `
retrieve:
  top_k: 8
  mode: hybrid
embedding:
  model: mock
  dimension: 32
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Retrieve.TopK != 8 {
		t.Errorf("expected TopK=8, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Retrieve.Mode != "hybrid" {
		t.Errorf("expected mode=hybrid, got %s", cfg.Retrieve.Mode)
	}
	if cfg.Embedding.Model != "mock" {
		t.Errorf("expected model=mock, got %s", cfg.Embedding.Model)
	}
	// Untouched sections keep their defaults.
	if cfg.LLM.MaxTokens != 16000 {
		t.Errorf("expected MaxTokens=16000, got %d", cfg.LLM.MaxTokens)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "dilr.yaml")

	content := `
server:
  addr: ":9090"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr=:9090, got %s", cfg.Server.Addr)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "dilr.yaml")

	cfg := DefaultConfig()
	cfg.Retrieve.TopK = 12
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Retrieve.TopK != 12 {
		t.Errorf("expected TopK=12 after round trip, got %d", loaded.Retrieve.TopK)
	}
}
