package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// OperatorBuilder configures a single operator.
type OperatorBuilder[S any] struct {
	op      domain.Operator[S]
	builder *Builder[S]
}

// Params declares the operator's signature. Params() with no kinds
// declares zero parameters, unlike leaving it unset.
func (ob *OperatorBuilder[S]) Params(kinds ...domain.Kind) *OperatorBuilder[S] {
	sig, err := domain.NewSignature(kinds...)
	if err != nil {
		ob.builder.fail(fmt.Errorf("operator %q: %w", ob.op.Name, err))
		return ob
	}
	if sig == nil {
		sig = domain.Signature{}
	}
	ob.op.Signature = sig
	return ob
}

// When sets a fallible precondition.
func (ob *OperatorBuilder[S]) When(pre domain.Precondition[S]) *OperatorBuilder[S] {
	ob.op.Precondition = pre
	return ob
}

// If sets an infallible precondition.
func (ob *OperatorBuilder[S]) If(fn func(S, domain.Params) bool) *OperatorBuilder[S] {
	ob.op.Precondition = domain.When(fn)
	return ob
}

// Do sets a fallible effect.
func (ob *OperatorBuilder[S]) Do(eff domain.Effect[S]) *OperatorBuilder[S] {
	ob.op.Effect = eff
	return ob
}

// Then sets an infallible effect.
func (ob *OperatorBuilder[S]) Then(fn func(S, domain.Params) S) *OperatorBuilder[S] {
	ob.op.Effect = domain.Pure(fn)
	return ob
}

// TaskBuilder configures a compound task and its methods.
type TaskBuilder[S any] struct {
	name    string
	sig     domain.Signature
	methods []*MethodBuilder[S]
	builder *Builder[S]
}

// Params declares the task's signature, checked before any method is tried.
// Params() with no kinds declares zero parameters.
func (tb *TaskBuilder[S]) Params(kinds ...domain.Kind) *TaskBuilder[S] {
	sig, err := domain.NewSignature(kinds...)
	if err != nil {
		tb.builder.fail(fmt.Errorf("task %q: %w", tb.name, err))
		return tb
	}
	if sig == nil {
		sig = domain.Signature{}
	}
	tb.sig = sig
	return tb
}

// Method appends a method. Methods are tried in the order they are declared.
func (tb *TaskBuilder[S]) Method(name string) *MethodBuilder[S] {
	mb := &MethodBuilder[S]{method: domain.Method[S]{Name: name}, task: tb}
	tb.methods = append(tb.methods, mb)
	return mb
}

// MethodBuilder configures a single method.
type MethodBuilder[S any] struct {
	method domain.Method[S]
	task   *TaskBuilder[S]
}

// When sets a fallible precondition.
func (mb *MethodBuilder[S]) When(pre domain.Precondition[S]) *MethodBuilder[S] {
	mb.method.Precondition = pre
	return mb
}

// If sets an infallible precondition.
func (mb *MethodBuilder[S]) If(fn func(S, domain.Params) bool) *MethodBuilder[S] {
	mb.method.Precondition = domain.When(fn)
	return mb
}

// Do appends subtasks by name, each forwarding the method's parameters.
func (mb *MethodBuilder[S]) Do(names ...string) *MethodBuilder[S] {
	for _, name := range names {
		mb.method.Subtasks = append(mb.method.Subtasks, domain.NameRef[S](name))
	}
	return mb
}

// DoWith appends a subtask called with fixed arguments.
func (mb *MethodBuilder[S]) DoWith(name string, values ...domain.Value) *MethodBuilder[S] {
	mb.method.Subtasks = append(mb.method.Subtasks, domain.NameRef[S](name).With(values...))
	return mb
}

// DoMapped appends a subtask whose arguments are computed at expansion time.
func (mb *MethodBuilder[S]) DoMapped(name string, fn domain.ArgMapper[S]) *MethodBuilder[S] {
	mb.method.Subtasks = append(mb.method.Subtasks, domain.NameRef[S](name).Map(fn))
	return mb
}

// Ref appends an arbitrary reference.
func (mb *MethodBuilder[S]) Ref(ref domain.TaskRef[S]) *MethodBuilder[S] {
	mb.method.Subtasks = append(mb.method.Subtasks, ref)
	return mb
}

// Method starts the next method of the same task.
func (mb *MethodBuilder[S]) Method(name string) *MethodBuilder[S] {
	return mb.task.Method(name)
}

// Done returns to the domain builder.
func (mb *MethodBuilder[S]) Done() *Builder[S] {
	return mb.task.builder
}
