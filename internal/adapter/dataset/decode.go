package dataset

import (
	"encoding/json"
	"fmt"

	"dilr/internal/domain"
)

// decodeProblem parses one JSONL record and validates it at the point of
// construction, so downstream code never re-checks required fields.
func decodeProblem(data []byte) (domain.Problem, error) {
	var p domain.Problem
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Problem{}, fmt.Errorf("malformed record: %w", err)
	}
	if err := p.Validate(); err != nil {
		return domain.Problem{}, err
	}
	return p, nil
}
