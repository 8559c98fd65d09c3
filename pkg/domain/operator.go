package domain

// Precondition decides whether an operator or method applies to a state.
// A non-nil error is a defect and aborts planning.
type Precondition[S any] func(state S, params Params) (bool, error)

// Effect produces the successor state. It receives a clone when S is a Cloner.
type Effect[S any] func(state S, params Params) (S, error)

// Operator is a primitive task: a guarded state transformation.
// Operators are immutable once registered.
type Operator[S any] struct {
	Name         string
	Signature    Signature
	Precondition Precondition[S]
	Effect       Effect[S]
}

// Apply evaluates the precondition and, when it holds, the effect.
// A false precondition is a soft failure reported as ok == false with a nil error.
// params are expected to satisfy the signature already.
func (o *Operator[S]) Apply(state S, params Params) (S, bool, error) {
	var zero S
	if o.Precondition != nil {
		ok, err := o.Precondition(state, params)
		if err != nil {
			return zero, false, &CallbackError{Name: o.Name, Phase: PhasePrecondition, Err: err}
		}
		if !ok {
			return zero, false, nil
		}
	}
	if o.Effect == nil {
		return state, true, nil
	}
	next, err := o.Effect(CloneState(state), params)
	if err != nil {
		return zero, false, &CallbackError{Name: o.Name, Phase: PhaseEffect, Err: err}
	}
	return next, true, nil
}

// Always is a precondition that always holds.
func Always[S any]() Precondition[S] {
	return func(S, Params) (bool, error) { return true, nil }
}

// When adapts an infallible predicate.
func When[S any](fn func(state S, params Params) bool) Precondition[S] {
	return func(state S, params Params) (bool, error) {
		return fn(state, params), nil
	}
}

// Pure adapts an infallible effect.
func Pure[S any](fn func(state S, params Params) S) Effect[S] {
	return func(state S, params Params) (S, error) {
		return fn(state, params), nil
	}
}
