package port

import "dilr/internal/domain"

// Retriever finds worked examples relevant to a question.
type Retriever interface {
	// Search returns up to k problems ranked by relevance to the query.
	Search(query string, k int) ([]domain.ScoredProblem, error)
}
