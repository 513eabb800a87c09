package domain

// Problem is one worked example from the seed dataset: a DILR puzzle
// together with its four solution styles.
type Problem struct {
	ID         string      `json:"id"`
	Question   string      `json:"question"`
	Solutions  SolutionSet `json:"solutions"`
	Source     string      `json:"source,omitempty"`
	Topic      string      `json:"topic,omitempty"`
	Difficulty string      `json:"difficulty,omitempty"`
}

// SolutionSet holds the four teaching styles attached to a problem.
type SolutionSet struct {
	Direct     string `json:"direct"`
	StepByStep string `json:"step_by_step"`
	Intuitive  string `json:"intuitive"`
	Shortcut   string `json:"shortcut"`
}

// Validate checks the fields required of every dataset record.
func (p Problem) Validate() error {
	if p.ID == "" {
		return &InvalidArgumentError{Reason: "problem missing id"}
	}
	if p.Question == "" {
		return &InvalidArgumentError{Reason: "problem " + p.ID + " missing question"}
	}
	return nil
}

// EmbeddingText builds the text that gets embedded for retrieval:
// the question combined with all four solution styles.
func (p Problem) EmbeddingText() string {
	return p.Question + "\n\n" +
		"Direct: " + p.Solutions.Direct + "\n" +
		"Step-by-step: " + p.Solutions.StepByStep + "\n" +
		"Intuitive: " + p.Solutions.Intuitive + "\n" +
		"Shortcut: " + p.Solutions.Shortcut
}

// ScoredProblem is a retrieval result.
type ScoredProblem struct {
	Problem Problem
	Score   float64
}

// Explanation is the model's answer in the four styles.
type Explanation struct {
	Direct     string `json:"direct"`
	StepByStep string `json:"step_by_step"`
	Intuitive  string `json:"intuitive"`
	Shortcut   string `json:"shortcut"`
}

// SolveResult is an explanation plus the worked examples that informed it.
type SolveResult struct {
	Explanation
	RetrievedIDs []string `json:"retrieved_ids"`
}
