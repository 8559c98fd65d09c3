package domain

// Method is one way of decomposing a compound task into an ordered list of subtasks.
type Method[S any] struct {
	Name string
	// Signature, when non-nil, is checked against the parameters of the task
	// being decomposed. A mismatch aborts planning.
	Signature    Signature
	Precondition Precondition[S]
	Subtasks     []TaskRef[S]
}

// Applicable reports whether the method's precondition holds. A nil precondition
// always holds.
func (m *Method[S]) Applicable(state S, params Params) (bool, error) {
	if m.Precondition == nil {
		return true, nil
	}
	ok, err := m.Precondition(state, params)
	if err != nil {
		return false, &CallbackError{Name: m.Name, Phase: PhasePrecondition, Err: err}
	}
	return ok, nil
}

// Expand returns the method's subtasks paired with the arguments each receives.
func (m *Method[S]) Expand(state S, params Params) ([]Params, error) {
	out := make([]Params, len(m.Subtasks))
	for i, sub := range m.Subtasks {
		args, err := sub.Args(state, params)
		if err != nil {
			return nil, &CallbackError{Name: m.Name + "/" + sub.Name(), Phase: PhaseArgs, Err: err}
		}
		out[i] = args
	}
	return out, nil
}
