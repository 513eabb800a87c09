package port

import "dilr/internal/domain"

// LLM generates a four-style explanation from a system and user prompt.
type LLM interface {
	// Explain sends the prompts to the model and parses its answer into
	// the four solution styles.
	Explain(systemPrompt, userPrompt string) (domain.Explanation, error)

	// ModelName returns the name of the model.
	ModelName() string
}
