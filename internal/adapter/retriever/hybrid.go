package retriever

import (
	"sort"

	"dilr/internal/domain"
	"dilr/internal/port"
)

// HybridRetriever fuses lexical BM25 and semantic rankings with
// Reciprocal Rank Fusion.
type HybridRetriever struct {
	lexical    port.Retriever
	semantic   port.Retriever
	rrfK       int
	bm25Weight float64
}

// NewHybridRetriever creates a hybrid retriever.
func NewHybridRetriever(lexical, semantic port.Retriever, rrfK int, bm25Weight float64) *HybridRetriever {
	if rrfK <= 0 {
		rrfK = 60 // Standard default
	}
	if bm25Weight < 0 || bm25Weight > 1 {
		bm25Weight = 0.5 // Equal weighting
	}

	return &HybridRetriever{
		lexical:    lexical,
		semantic:   semantic,
		rrfK:       rrfK,
		bm25Weight: bm25Weight,
	}
}

// Search runs both retrievers over an expanded candidate pool and fuses
// the rankings. If one side fails, the other's results are returned alone.
func (r *HybridRetriever) Search(query string, k int) ([]domain.ScoredProblem, error) {
	candidateK := k * 3
	if candidateK < 20 {
		candidateK = 20
	}

	lexResults, lexErr := r.lexical.Search(query, candidateK)
	semResults, semErr := r.semantic.Search(query, candidateK)

	if lexErr != nil && semErr != nil {
		return nil, semErr
	}
	if semErr != nil {
		return limit(lexResults, k), nil
	}
	if lexErr != nil {
		return limit(semResults, k), nil
	}

	fused := r.rrfFuse(lexResults, semResults)
	return limit(fused, k), nil
}

// rrfFuse combines two rankings: each problem scores
// weight / (rrfK + rank) per list it appears in.
func (r *HybridRetriever) rrfFuse(lexical, semantic []domain.ScoredProblem) []domain.ScoredProblem {
	type fusedEntry struct {
		problem domain.Problem
		score   float64
		order   int
	}

	entries := make(map[string]*fusedEntry)
	next := 0

	accumulate := func(results []domain.ScoredProblem, weight float64) {
		for rank, res := range results {
			e, ok := entries[res.Problem.ID]
			if !ok {
				e = &fusedEntry{problem: res.Problem, order: next}
				next++
				entries[res.Problem.ID] = e
			}
			e.score += weight / float64(r.rrfK+rank+1)
		}
	}

	accumulate(lexical, r.bm25Weight)
	accumulate(semantic, 1-r.bm25Weight)

	fused := make([]fusedEntry, 0, len(entries))
	for _, e := range entries {
		fused = append(fused, *e)
	}
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		return fused[i].order < fused[j].order
	})

	results := make([]domain.ScoredProblem, len(fused))
	for i, e := range fused {
		results[i] = domain.ScoredProblem{Problem: e.problem, Score: e.score}
	}
	return results
}

func limit(results []domain.ScoredProblem, k int) []domain.ScoredProblem {
	if len(results) > k {
		return results[:k]
	}
	return results
}
