package retriever

import (
	"dilr/internal/adapter/analyzer"
	"dilr/internal/domain"
)

// MMRReranker diversifies retrieved worked examples with Maximal Marginal
// Relevance so near-duplicate problems don't crowd the prompt budget.
type MMRReranker struct {
	tokenizer    *analyzer.Tokenizer
	lambda       float64
	dedupJaccard float64
}

// NewMMRReranker creates a new MMR reranker.
func NewMMRReranker(tokenizer *analyzer.Tokenizer, lambda, dedupJaccard float64) *MMRReranker {
	return &MMRReranker{
		tokenizer:    tokenizer,
		lambda:       lambda,
		dedupJaccard: dedupJaccard,
	}
}

// Rerank applies MMR to diversify the results.
// MMR(c) = λ * relevance(c) - (1-λ) * max_similarity(c, selected)
func (r *MMRReranker) Rerank(candidates []domain.ScoredProblem, k int) []domain.ScoredProblem {
	if len(candidates) == 0 {
		return nil
	}

	if k > len(candidates) {
		k = len(candidates)
	}

	tokens := make([][]string, len(candidates))
	for i, c := range candidates {
		tokens[i] = r.tokenizer.Tokenize(c.Problem.Question)
	}

	// Normalize scores to [0, 1] for fair comparison
	maxScore := candidates[0].Score
	for _, c := range candidates {
		if c.Score > maxScore {
			maxScore = c.Score
		}
	}
	// A zero or negative divisor would erase or invert the relevance
	// ordering, so fall back to the raw scores.
	if maxScore <= 0 {
		maxScore = 1
	}

	type indexed struct {
		result domain.ScoredProblem
		tokens []string
	}

	remaining := make([]indexed, len(candidates))
	for i, c := range candidates {
		remaining[i] = indexed{result: c, tokens: tokens[i]}
	}

	var selected []indexed
	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestMMR := -1e9

		for i, candidate := range remaining {
			relevance := candidate.result.Score / maxScore

			maxSim := 0.0
			for _, sel := range selected {
				sim := jaccardSimilarity(candidate.tokens, sel.tokens)
				if sim > maxSim {
					maxSim = sim
				}
			}

			// Hard dedup: skip anything too similar to a selection.
			if maxSim > r.dedupJaccard {
				continue
			}

			mmr := r.lambda*relevance - (1-r.lambda)*maxSim
			if mmr > bestMMR {
				bestMMR = mmr
				bestIdx = i
			}
		}

		if bestIdx == -1 {
			// Everything left is too similar to what's already selected.
			break
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	results := make([]domain.ScoredProblem, len(selected))
	for i, s := range selected {
		results[i] = s.result
	}
	return results
}

// jaccardSimilarity computes intersection over union of the token sets.
func jaccardSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
