package domain

import "time"

// Stats describes the work a single planning call performed.
type Stats struct {
	Nodes      int           `json:"nodes"`       // Agenda states visited
	Expansions int           `json:"expansions"`  // Compound tasks decomposed
	Backtracks int           `json:"backtracks"`  // Applicable methods whose subtree failed
	Rejections int           `json:"rejections"`  // Operators whose precondition failed
	MaxDepth   int           `json:"max_depth"`
	Duration   time.Duration `json:"duration"`
}

// Result is the outcome of a planning call.
// Found is false when the search space was exhausted without a plan; that is not an error.
type Result[S any] struct {
	Goal  string  `json:"goal"`
	Plan  Plan[S] `json:"-"`
	Found bool    `json:"found"`
	Stats Stats   `json:"stats"`
}

// Steps is a convenience for r.Plan.Steps().
func (r *Result[S]) Steps() []Step {
	return r.Plan.Steps()
}
