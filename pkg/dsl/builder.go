package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// Builder manages the domain construction.
type Builder[S any] struct {
	name  string
	ops   []*OperatorBuilder[S]
	tasks []*TaskBuilder[S]
	byOp  map[string]*OperatorBuilder[S]
	byTk  map[string]*TaskBuilder[S]
	errs  []error
}

// New creates a new domain builder.
func New[S any](name string) *Builder[S] {
	return &Builder[S]{
		name: name,
		byOp: make(map[string]*OperatorBuilder[S]),
		byTk: make(map[string]*TaskBuilder[S]),
	}
}

// Operator declares a primitive task.
// If the operator already exists, it returns the existing builder.
func (b *Builder[S]) Operator(name string) *OperatorBuilder[S] {
	if ob, ok := b.byOp[name]; ok {
		return ob
	}
	ob := &OperatorBuilder[S]{op: domain.Operator[S]{Name: name}, builder: b}
	b.byOp[name] = ob
	b.ops = append(b.ops, ob)
	return ob
}

// Task declares a compound task.
// If the task already exists, it returns the existing builder so methods can be appended.
func (b *Builder[S]) Task(name string) *TaskBuilder[S] {
	if tb, ok := b.byTk[name]; ok {
		return tb
	}
	tb := &TaskBuilder[S]{name: name, builder: b}
	b.byTk[name] = tb
	b.tasks = append(b.tasks, tb)
	return tb
}

// Build registers everything into a new Domain, in declaration order.
func (b *Builder[S]) Build() (*domain.Domain[S], error) {
	errs := append([]error(nil), b.errs...)
	d := domain.New[S]()
	d.Name = b.name

	for _, ob := range b.ops {
		op := ob.op
		if err := d.AddOperator(&op); err != nil {
			errs = append(errs, fmt.Errorf("operator %q: %w", op.Name, err))
		}
	}
	for _, tb := range b.tasks {
		task := &domain.CompoundTask[S]{Name: tb.name, Signature: tb.sig}
		for _, mb := range tb.methods {
			task.Methods = append(task.Methods, mb.method)
		}
		if err := d.AddCompoundTask(task); err != nil {
			errs = append(errs, fmt.Errorf("task %q: %w", tb.name, err))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to build domain %q: %w", b.name, errors.Join(errs...))
	}
	return d, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder[S]) MustBuild() *domain.Domain[S] {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

func (b *Builder[S]) fail(err error) {
	b.errs = append(b.errs, err)
}
