package usecase

import (
	"fmt"

	"dilr/internal/adapter/cleanup"
	"dilr/internal/adapter/retriever"
	"dilr/internal/domain"
	"dilr/internal/port"
	"dilr/internal/prompt"
)

// SolveUseCase runs the full pipeline: retrieve similar worked examples,
// build the teaching prompt, call the model, and repair the step-by-step
// output.
type SolveUseCase struct {
	retriever port.Retriever
	reranker  *retriever.MMRReranker
	builder   *prompt.Builder
	llm       port.LLM
	minScore  float64
}

// NewSolveUseCase wires the pipeline. reranker may be nil to skip MMR
// deduplication.
func NewSolveUseCase(
	ret port.Retriever,
	reranker *retriever.MMRReranker,
	builder *prompt.Builder,
	llm port.LLM,
	minScore float64,
) *SolveUseCase {
	return &SolveUseCase{
		retriever: ret,
		reranker:  reranker,
		builder:   builder,
		llm:       llm,
		minScore:  minScore,
	}
}

// Retrieve returns the worked examples that would inform an explanation,
// without calling the model. Used by the query command and as the first
// stage of Solve.
func (u *SolveUseCase) Retrieve(question string, topK int) ([]domain.ScoredProblem, error) {
	if topK <= 0 {
		return nil, &domain.InvalidArgumentError{
			Reason: fmt.Sprintf("topK must be positive, got %d", topK),
		}
	}

	candidateK := topK
	if u.reranker != nil {
		candidateK = topK * 2
	}

	candidates, err := u.retriever.Search(question, candidateK)
	if err != nil {
		return nil, err
	}

	if u.minScore > 0 {
		filtered := make([]domain.ScoredProblem, 0, len(candidates))
		for _, c := range candidates {
			if c.Score >= u.minScore {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	if u.reranker != nil {
		candidates = u.reranker.Rerank(candidates, topK)
	} else if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	return candidates, nil
}

// Solve answers a question in the four styles.
func (u *SolveUseCase) Solve(question string, topK int) (domain.SolveResult, error) {
	retrieved, err := u.Retrieve(question, topK)
	if err != nil {
		return domain.SolveResult{}, err
	}
	if len(retrieved) == 0 {
		return domain.SolveResult{}, &domain.NotFoundError{Reason: "no similar problems found for the question"}
	}

	contexts := make([]domain.Problem, len(retrieved))
	ids := make([]string, len(retrieved))
	for i, r := range retrieved {
		contexts[i] = r.Problem
		ids[i] = r.Problem.ID
	}

	userPrompt, err := u.builder.User(question, contexts)
	if err != nil {
		return domain.SolveResult{}, err
	}

	explanation, err := u.llm.Explain(u.builder.System(), userPrompt)
	if err != nil {
		return domain.SolveResult{}, err
	}

	explanation.StepByStep = cleanup.Repair(question, explanation.StepByStep)

	return domain.SolveResult{
		Explanation:  explanation,
		RetrievedIDs: ids,
	}, nil
}
