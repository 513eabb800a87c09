package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the explainer.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Server    ServerConfig    `yaml:"server"`
}

// DatasetConfig selects the seed JSONL files.
type DatasetConfig struct {
	Paths []string `yaml:"paths"` // doublestar glob patterns
}

// StoreConfig locates the vector store snapshot.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig holds embedding API configuration.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-large"
	BaseURL   string `yaml:"base_url"`    // OpenAI-compatible endpoint base
	APIKeyEnv string `yaml:"api_key_env"` // environment variable for API key
	Dimension int    `yaml:"dimension"`   // 0 = infer from model
	BatchSize int    `yaml:"batch_size"`
	Normalize bool   `yaml:"normalize"` // L2-normalize vectors before insertion
}

// LLMConfig holds chat completion API configuration.
type LLMConfig struct {
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK         int     `yaml:"top_k"`
	Mode         string  `yaml:"mode"` // "semantic", "lexical", or "hybrid"
	RRFK         int     `yaml:"rrf_k"`
	BM25Weight   float64 `yaml:"bm25_weight"`
	K1           float64 `yaml:"k1"`
	B            float64 `yaml:"b"`
	MMRLambda    float64 `yaml:"mmr_lambda"`
	DedupJaccard float64 `yaml:"dedup_jaccard"`
	MinScore     float64 `yaml:"min_score"` // filter results below this score (0 = disabled)
}

// PromptConfig holds prompt building configuration.
type PromptConfig struct {
	MaxContextChars int `yaml:"max_context_chars"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Paths: []string{"data/seed_*.jsonl"},
		},
		Store: StoreConfig{
			Path: filepath.Join("data", "store.db"),
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-large",
			BaseURL:   "https://api.openai.com/v1",
			APIKeyEnv: "EMBED_API_KEY",
			BatchSize: 100,
			Normalize: true,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			BaseURL:     "https://api.openai.com/v1",
			APIKeyEnv:   "LLM_API_KEY",
			Temperature: 0.2,
			MaxTokens:   16000,
		},
		Retrieve: RetrieveConfig{
			TopK:         4,
			Mode:         "semantic",
			RRFK:         60,
			BM25Weight:   0.5,
			K1:           1.2,
			B:            0.75,
			MMRLambda:    0.7,
			DedupJaccard: 0.9,
		},
		Prompt: PromptConfig{
			MaxContextChars: 5000,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load loads configuration from a YAML file, overlaying the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for dilr.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "dilr.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".dilr", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
