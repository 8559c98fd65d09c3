package domain

import (
	"slices"
	"time"
)

// PlanRecord is a plan handed to an agent for execution, with its progress.
type PlanRecord struct {
	ID        string    `json:"id"`
	Agent     string    `json:"agent"`
	Goal      string    `json:"goal"`
	Steps     []Step    `json:"steps"`
	Cursor    int       `json:"cursor"` // Index of the next step to execute
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Done reports whether every step has been executed.
func (r *PlanRecord) Done() bool { return r.Cursor >= len(r.Steps) }

// Remaining returns the steps not yet executed.
func (r *PlanRecord) Remaining() []Step {
	if r.Done() {
		return nil
	}
	return r.Steps[r.Cursor:]
}

// Clone returns a deep copy.
func (r *PlanRecord) Clone() *PlanRecord {
	c := *r
	c.Steps = make([]Step, len(r.Steps))
	for i, s := range r.Steps {
		c.Steps[i] = Step{Operator: s.Operator, Params: slices.Clone(s.Params)}
	}
	return &c
}
