package script

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/facts"
)

// Assignment is the source form of one effect step.
type Assignment struct {
	Relation string
	Key      string
	Value    string
	Unset    bool
}

type step struct {
	relation string
	key      *Expression
	value    *Expression
	unset    bool
}

// Effect is a compiled sequence of assignments.
type Effect struct {
	steps []step
}

// CompileEffect compiles the assignments in order.
func CompileEffect(assignments []Assignment) (*Effect, error) {
	e := &Effect{steps: make([]step, 0, len(assignments))}
	for i, a := range assignments {
		if a.Relation == "" {
			return nil, fmt.Errorf("effect %d: missing relation", i)
		}
		key, err := CompileExpression(a.Key)
		if err != nil {
			return nil, fmt.Errorf("effect %d (%s) key: %w", i, a.Relation, err)
		}
		st := step{relation: a.Relation, key: key, unset: a.Unset}
		if !a.Unset {
			st.value, err = CompileExpression(a.Value)
			if err != nil {
				return nil, fmt.Errorf("effect %d (%s) value: %w", i, a.Relation, err)
			}
		}
		e.steps = append(e.steps, st)
	}
	return e, nil
}

// Len reports the number of assignments.
func (e *Effect) Len() int { return len(e.steps) }

// Run applies the assignments to state in order. Each step sees the writes
// of the steps before it. state must already be a private copy.
func (e *Effect) Run(state facts.Facts, names []string, params domain.Params) error {
	for i, st := range e.steps {
		env := NewEnv(state, names, params)
		rawKey, err := st.key.Eval(env)
		if err != nil {
			return fmt.Errorf("effect %d (%s): %w", i, st.relation, err)
		}
		key, ok := rawKey.(string)
		if !ok {
			key = fmt.Sprint(rawKey)
		}
		if st.unset {
			state.Delete(st.relation, key)
			continue
		}
		value, err := st.value.Eval(env)
		if err != nil {
			return fmt.Errorf("effect %d (%s): %w", i, st.relation, err)
		}
		state.Set(st.relation, key, value)
	}
	return nil
}

// Effect adapts the assignments to an operator effect. The planner hands
// effects a cloned state, so the steps write to it directly.
func (e *Effect) Effect(names []string) domain.Effect[facts.Facts] {
	if e == nil || len(e.steps) == 0 {
		return nil
	}
	return func(s facts.Facts, params domain.Params) (facts.Facts, error) {
		if s == nil {
			s = facts.New()
		}
		if err := e.Run(s, names, params); err != nil {
			return nil, err
		}
		return s, nil
	}
}
