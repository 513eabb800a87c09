package retriever

import (
	"fmt"

	"dilr/internal/adapter/memstore"
	"dilr/internal/domain"
	"dilr/internal/port"
)

// SemanticRetriever embeds the query and searches the flat vector index.
type SemanticRetriever struct {
	index     *memstore.FlatIndex
	embedder  port.Embedder
	normalize bool
}

// NewSemanticRetriever creates a semantic retriever. When normalize is
// set, the query vector is scaled to unit norm to match the vectors the
// build pipeline inserted.
func NewSemanticRetriever(index *memstore.FlatIndex, embedder port.Embedder, normalize bool) *SemanticRetriever {
	return &SemanticRetriever{
		index:     index,
		embedder:  embedder,
		normalize: normalize,
	}
}

func (r *SemanticRetriever) Search(query string, k int) ([]domain.ScoredProblem, error) {
	embeddings, err := r.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	vector := embeddings[0]
	if r.normalize {
		memstore.Normalize(vector)
	}

	results, err := r.index.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	scored := make([]domain.ScoredProblem, 0, len(results))
	for _, result := range results {
		scored = append(scored, domain.ScoredProblem{
			Problem: result.Problem,
			Score:   result.Score,
		})
	}

	return scored, nil
}
