package domain

import "slices"

// CompoundTask is a named goal decomposed through methods tried in declaration order.
type CompoundTask[S any] struct {
	Name string
	// Signature, when non-nil, is checked before any method is tried.
	Signature Signature
	Methods   []Method[S]
}

// RefKind discriminates TaskRef.
type RefKind uint8

const (
	RefInvalid RefKind = iota
	RefOperator
	RefCompound
	RefName
)

func (k RefKind) String() string {
	switch k {
	case RefOperator:
		return "operator"
	case RefCompound:
		return "compound"
	case RefName:
		return "name"
	default:
		return "invalid"
	}
}

// ArgMapper computes a subtask's arguments from the state and the parent's parameters.
type ArgMapper[S any] func(state S, parent Params) (Params, error)

// TaskRef is an entry of a plan agenda: an operator, a compound task, or a bare name
// resolved against the domain at planning time. By default it forwards the parent's
// parameters; With and Map override that.
type TaskRef[S any] struct {
	kind     RefKind
	op       *Operator[S]
	task     *CompoundTask[S]
	name     string
	fixed    Params
	hasFixed bool
	mapper   ArgMapper[S]
}

// OperatorRef references an operator directly.
func OperatorRef[S any](op *Operator[S]) TaskRef[S] {
	return TaskRef[S]{kind: RefOperator, op: op, name: op.Name}
}

// CompoundRef references a compound task directly.
func CompoundRef[S any](t *CompoundTask[S]) TaskRef[S] {
	return TaskRef[S]{kind: RefCompound, task: t, name: t.Name}
}

// NameRef references a task by name. Use it for recursion and forward references.
func NameRef[S any](name string) TaskRef[S] {
	return TaskRef[S]{kind: RefName, name: name}
}

// With returns a copy of r that passes exactly values to the subtask.
func (r TaskRef[S]) With(values ...Value) TaskRef[S] {
	r.fixed = slices.Clone(values)
	r.hasFixed = true
	r.mapper = nil
	return r
}

// Map returns a copy of r whose arguments are computed by fn at expansion time.
func (r TaskRef[S]) Map(fn ArgMapper[S]) TaskRef[S] {
	r.mapper = fn
	r.fixed = nil
	r.hasFixed = false
	return r
}

// Kind returns the reference kind.
func (r TaskRef[S]) Kind() RefKind { return r.kind }

// Name returns the referenced task or operator name.
func (r TaskRef[S]) Name() string { return r.name }

// Operator returns the referenced operator, or nil.
func (r TaskRef[S]) Operator() *Operator[S] { return r.op }

// Compound returns the referenced compound task, or nil.
func (r TaskRef[S]) Compound() *CompoundTask[S] { return r.task }

// IsZero reports whether r is the zero reference.
func (r TaskRef[S]) IsZero() bool { return r.kind == RefInvalid }

// Fixed returns the fixed arguments, if any.
func (r TaskRef[S]) Fixed() (Params, bool) { return r.fixed, r.hasFixed }

// Args computes the parameters the referenced task receives.
func (r TaskRef[S]) Args(state S, parent Params) (Params, error) {
	switch {
	case r.mapper != nil:
		return r.mapper(state, parent)
	case r.hasFixed:
		return slices.Clone(r.fixed), nil
	default:
		return parent, nil
	}
}

