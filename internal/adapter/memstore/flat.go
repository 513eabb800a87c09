package memstore

import (
	"fmt"
	"math"
	"sort"

	"dilr/internal/domain"
)

// FlatIndex is an append-only flat vector index scored by inner product.
// The i-th vector and i-th problem always correspond. The index holds no
// locks: it is populated once by a bulk Add and read-only afterwards.
// Concurrent Search calls are safe only while no Add is in flight.
type FlatIndex struct {
	dimension int
	vectors   [][]float32
	problems  []domain.Problem
}

// Result is one search hit.
type Result struct {
	Score   float64
	Problem domain.Problem
}

// New creates an empty index fixed to the given vector dimension.
func New(dimension int) (*FlatIndex, error) {
	if dimension <= 0 {
		return nil, &domain.InvalidArgumentError{
			Reason: fmt.Sprintf("dimension must be positive, got %d", dimension),
		}
	}
	return &FlatIndex{dimension: dimension}, nil
}

// Dimension returns the vector dimension the index was created with.
func (ix *FlatIndex) Dimension() int {
	return ix.dimension
}

// Len returns the number of stored entries.
func (ix *FlatIndex) Len() int {
	return len(ix.vectors)
}

// Add appends vectors and their corresponding problems. Validation happens
// up front so a failed Add leaves the index unchanged.
func (ix *FlatIndex) Add(vectors [][]float32, problems []domain.Problem) error {
	if len(vectors) != len(problems) {
		return &domain.InvalidArgumentError{
			Reason: fmt.Sprintf("got %d vectors for %d problems", len(vectors), len(problems)),
		}
	}
	for i, v := range vectors {
		if len(v) != ix.dimension {
			return &domain.InvalidArgumentError{
				Reason: fmt.Sprintf("vector %d has dimension %d, index expects %d", i, len(v), ix.dimension),
			}
		}
	}

	ix.vectors = append(ix.vectors, vectors...)
	ix.problems = append(ix.problems, problems...)
	return nil
}

// Search scores the query against every stored vector by inner product and
// returns up to topK results sorted by descending score. Ties are broken by
// insertion order, lowest index first, so repeated searches are
// deterministic. An empty index returns no results.
func (ix *FlatIndex) Search(query []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, &domain.InvalidArgumentError{
			Reason: fmt.Sprintf("topK must be positive, got %d", topK),
		}
	}
	if len(query) != ix.dimension {
		return nil, &domain.InvalidArgumentError{
			Reason: fmt.Sprintf("query has dimension %d, index expects %d", len(query), ix.dimension),
		}
	}

	if len(ix.vectors) == 0 {
		return nil, nil
	}

	results := make([]Result, len(ix.vectors))
	for i, v := range ix.vectors {
		results[i] = Result{
			Score:   innerProduct(query, v),
			Problem: ix.problems[i],
		}
	}

	// Stable sort over insertion order gives the documented tie-break.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Entries exposes the stored vectors and problems for snapshot persistence.
// Callers must not mutate the returned slices.
func (ix *FlatIndex) Entries() ([][]float32, []domain.Problem) {
	return ix.vectors, ix.problems
}

// innerProduct accumulates in float64 to keep scores stable across
// input order.
func innerProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Normalize scales a vector to unit L2 norm in place. With unit vectors
// the index's inner product equals cosine similarity. Zero vectors are
// left untouched.
func Normalize(v []float32) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return
	}
	inv := 1 / math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
