package retriever

import (
	"math"
	"sort"

	"dilr/internal/adapter/analyzer"
	"dilr/internal/domain"
)

// LexicalRetriever scores problems against the query with BM25 over
// tokenized question text. The postings are built once from the loaded
// dataset and live entirely in memory; the corpus is tens to low hundreds
// of problems.
type LexicalRetriever struct {
	tokenizer *analyzer.Tokenizer
	problems  []domain.Problem
	postings  map[string][]posting
	docLens   []int
	avgDocLen float64
	k1        float64
	b         float64
}

type posting struct {
	doc int
	tf  int
}

// NewLexicalRetriever builds the postings for the given problems.
func NewLexicalRetriever(problems []domain.Problem, tokenizer *analyzer.Tokenizer, k1, b float64) *LexicalRetriever {
	r := &LexicalRetriever{
		tokenizer: tokenizer,
		problems:  problems,
		postings:  make(map[string][]posting),
		docLens:   make([]int, len(problems)),
		k1:        k1,
		b:         b,
	}

	var totalLen int
	for i, p := range problems {
		tokens := tokenizer.Tokenize(p.Question)
		r.docLens[i] = len(tokens)
		totalLen += len(tokens)

		counts := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
		}
		for term, tf := range counts {
			r.postings[term] = append(r.postings[term], posting{doc: i, tf: tf})
		}
	}
	if len(problems) > 0 {
		r.avgDocLen = float64(totalLen) / float64(len(problems))
	}

	return r
}

func (r *LexicalRetriever) Search(query string, k int) ([]domain.ScoredProblem, error) {
	queryTokens := r.tokenizer.Tokenize(query)
	if len(queryTokens) == 0 || len(r.problems) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(queryTokens))
	scores := make(map[int]float64)
	N := float64(len(r.problems))

	for _, term := range queryTokens {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		postings := r.postings[term]
		if len(postings) == 0 {
			continue
		}

		n := float64(len(postings))
		idf := math.Log((N-n+0.5)/(n+0.5) + 1)

		for _, pst := range postings {
			dl := float64(r.docLens[pst.doc])
			tf := float64(pst.tf)
			scores[pst.doc] += idf * (tf * (r.k1 + 1)) / (tf + r.k1*(1-r.b+r.b*dl/r.avgDocLen))
		}
	}

	results := make([]domain.ScoredProblem, 0, len(scores))
	for doc, score := range scores {
		results = append(results, domain.ScoredProblem{
			Problem: r.problems[doc],
			Score:   score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Problem.ID < results[j].Problem.ID
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}
