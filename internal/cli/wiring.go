package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"dilr/config"
	"dilr/internal/adapter/analyzer"
	"dilr/internal/adapter/embedding"
	"dilr/internal/adapter/memstore"
	"dilr/internal/adapter/retriever"
	"dilr/internal/adapter/store"
	"dilr/internal/port"
)

// storePath resolves the snapshot location against the root directory.
func storePath(cfg *config.Config, root string) string {
	if filepath.IsAbs(cfg.Store.Path) {
		return cfg.Store.Path
	}
	return filepath.Join(root, cfg.Store.Path)
}

// openIndex loads the snapshot built by `dilr build`.
func openIndex(cfg *config.Config, root string) (*memstore.FlatIndex, store.Meta, error) {
	path := storePath(cfg, root)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, store.Meta{}, fmt.Errorf("no vector store at %s. Run 'dilr build' first", path)
	}

	index, meta, err := store.Load(path)
	if err != nil {
		return nil, store.Meta{}, fmt.Errorf("failed to load vector store: %w", err)
	}
	return index, meta, nil
}

// newRetriever builds the retriever selected by retrieve.mode. The
// lexical and hybrid modes index the problems already held by the flat
// index, so no extra state is loaded.
func newRetriever(cfg *config.Config, index *memstore.FlatIndex, embedder port.Embedder) (port.Retriever, error) {
	tokenizer := analyzer.NewTokenizer()
	_, problems := index.Entries()

	switch cfg.Retrieve.Mode {
	case "", "semantic":
		return retriever.NewSemanticRetriever(index, embedder, cfg.Embedding.Normalize), nil
	case "lexical":
		return retriever.NewLexicalRetriever(problems, tokenizer, cfg.Retrieve.K1, cfg.Retrieve.B), nil
	case "hybrid":
		lexical := retriever.NewLexicalRetriever(problems, tokenizer, cfg.Retrieve.K1, cfg.Retrieve.B)
		semantic := retriever.NewSemanticRetriever(index, embedder, cfg.Embedding.Normalize)
		return retriever.NewHybridRetriever(lexical, semantic, cfg.Retrieve.RRFK, cfg.Retrieve.BM25Weight), nil
	default:
		return nil, fmt.Errorf("unknown retrieve mode: %s", cfg.Retrieve.Mode)
	}
}

// newEmbedder constructs the embedding client, or the mock when the
// model is literally "mock" (offline development and tests).
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	if cfg.Embedding.Model == "mock" {
		dim := cfg.Embedding.Dimension
		if dim <= 0 {
			dim = 64
		}
		return embedding.NewMockEmbedder(dim), nil
	}
	return embedding.NewClient(cfg.Embedding)
}

// newReranker builds the MMR reranker from config, or nil when disabled.
func newReranker(cfg *config.Config) *retriever.MMRReranker {
	if cfg.Retrieve.MMRLambda <= 0 {
		return nil
	}
	return retriever.NewMMRReranker(analyzer.NewTokenizer(), cfg.Retrieve.MMRLambda, cfg.Retrieve.DedupJaccard)
}
