package usecase

import (
	"fmt"

	"dilr/internal/adapter/memstore"
	"dilr/internal/domain"
	"dilr/internal/port"
)

// BuildProgress reports embedding progress to the caller, which renders
// it however it likes (the CLI draws a progress bar).
type BuildProgress func(embedded, total int)

// BuildUseCase turns a loaded dataset into a searchable vector index.
type BuildUseCase struct {
	embedder  port.Embedder
	batchSize int
	normalize bool
}

// NewBuildUseCase creates a build use case. When normalize is set, every
// vector is scaled to unit norm before insertion so inner-product search
// scores cosine similarity.
func NewBuildUseCase(embedder port.Embedder, batchSize int, normalize bool) *BuildUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BuildUseCase{
		embedder:  embedder,
		batchSize: batchSize,
		normalize: normalize,
	}
}

// Build embeds every problem and returns the populated index. The index
// dimension comes from the first returned vector, which also guards
// against a remote model that disagrees with the configured dimension.
func (u *BuildUseCase) Build(problems []domain.Problem, progress BuildProgress) (*memstore.FlatIndex, error) {
	if len(problems) == 0 {
		return nil, fmt.Errorf("dataset is empty, nothing to build")
	}

	texts := make([]string, len(problems))
	for i, p := range problems {
		texts[i] = p.EmbeddingText()
	}

	var vectors [][]float32
	for start := 0; start < len(texts); start += u.batchSize {
		end := start + u.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := u.embedder.Embed(texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d failed: %w", start, end, err)
		}
		vectors = append(vectors, batch...)

		if progress != nil {
			progress(len(vectors), len(texts))
		}
	}

	if u.normalize {
		for _, v := range vectors {
			memstore.Normalize(v)
		}
	}

	index, err := memstore.New(len(vectors[0]))
	if err != nil {
		return nil, err
	}
	if err := index.Add(vectors, problems); err != nil {
		return nil, err
	}

	return index, nil
}
