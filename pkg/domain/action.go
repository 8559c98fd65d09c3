package domain

import (
	"fmt"
	"strings"
)

// Action is an operator bound to a signature-valid parameter list.
type Action[S any] struct {
	Operator *Operator[S]
	Params   Params
}

// Name returns the operator name.
func (a Action[S]) Name() string { return a.Operator.Name }

// Step returns the serializable form of the action.
func (a Action[S]) Step() Step { return Step{Operator: a.Operator.Name, Params: a.Params} }

func (a Action[S]) String() string { return a.Step().String() }

// Step is the executor-facing view of an action: an operator name and its arguments.
type Step struct {
	Operator string `json:"operator"`
	Params   Params `json:"params"`
}

func (s Step) String() string {
	return fmt.Sprintf("%s(%s)", s.Operator, s.Params)
}

// Plan is an ordered sequence of actions.
type Plan[S any] []Action[S]

// Steps returns the (operator, params) pairs in order.
func (p Plan[S]) Steps() []Step {
	steps := make([]Step, len(p))
	for i, a := range p {
		steps[i] = a.Step()
	}
	return steps
}

// Names returns the operator names in order.
func (p Plan[S]) Names() []string {
	names := make([]string, len(p))
	for i, a := range p {
		names[i] = a.Name()
	}
	return names
}

// Replay applies every action to state in order and returns the final state.
// A step whose precondition no longer holds yields ErrPreconditionFailed.
func (p Plan[S]) Replay(state S) (S, error) {
	for i, a := range p {
		next, ok, err := a.Operator.Apply(state, a.Params)
		if err != nil {
			return state, fmt.Errorf("step %d: %w", i, err)
		}
		if !ok {
			return state, fmt.Errorf("step %d (%s): %w", i, a, ErrPreconditionFailed)
		}
		state = next
	}
	return state, nil
}

func (p Plan[S]) String() string {
	parts := make([]string, len(p))
	for i, a := range p {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
