package domain

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Domain is the registry of operators and compound tasks the planner searches over.
// Names are unique across both registries. Once sealed, a Domain is read-only and
// safe for concurrent planning.
type Domain[S any] struct {
	Name string

	mu        sync.RWMutex
	operators map[string]*Operator[S]
	tasks     map[string]*CompoundTask[S]
	sealed    atomic.Bool
}

// New creates an empty domain.
func New[S any]() *Domain[S] {
	return &Domain[S]{
		operators: make(map[string]*Operator[S]),
		tasks:     make(map[string]*CompoundTask[S]),
	}
}

// RegisterOperator adds an operator under name.
func (d *Domain[S]) RegisterOperator(name string, pre Precondition[S], eff Effect[S], sig Signature) (*Operator[S], error) {
	op := &Operator[S]{Name: name, Signature: sig, Precondition: pre, Effect: eff}
	if err := d.AddOperator(op); err != nil {
		return nil, err
	}
	return op, nil
}

// AddOperator registers a fully built operator.
func (d *Domain[S]) AddOperator(op *Operator[S]) error {
	if err := d.checkName(op.Name); err != nil {
		return err
	}
	if err := op.Signature.Validate(); err != nil {
		return &SignatureError{Subject: "operator", Name: op.Name, Err: err}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkUniqueLocked(op.Name); err != nil {
		return err
	}
	d.operators[op.Name] = op
	return nil
}

// RegisterCompoundTask adds a compound task with methods in priority order.
func (d *Domain[S]) RegisterCompoundTask(name string, methods ...Method[S]) (*CompoundTask[S], error) {
	task := &CompoundTask[S]{Name: name, Methods: methods}
	if err := d.AddCompoundTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// AddCompoundTask registers a fully built compound task.
func (d *Domain[S]) AddCompoundTask(task *CompoundTask[S]) error {
	if err := d.checkName(task.Name); err != nil {
		return err
	}
	if err := task.Signature.Validate(); err != nil {
		return &SignatureError{Subject: "task", Name: task.Name, Err: err}
	}
	for _, m := range task.Methods {
		if err := m.Signature.Validate(); err != nil {
			return &SignatureError{Subject: "method", Name: task.Name + "." + m.Name, Err: err}
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkUniqueLocked(task.Name); err != nil {
		return err
	}
	d.tasks[task.Name] = task
	return nil
}

func (d *Domain[S]) checkName(name string) error {
	if d.sealed.Load() {
		return ErrSealed
	}
	if name == "" {
		return ErrEmptyName
	}
	return nil
}

func (d *Domain[S]) checkUniqueLocked(name string) error {
	if _, ok := d.operators[name]; ok {
		return &DuplicateNameError{Name: name, Existing: "operator"}
	}
	if _, ok := d.tasks[name]; ok {
		return &DuplicateNameError{Name: name, Existing: "task"}
	}
	return nil
}

// Seal makes the domain read-only. It is idempotent.
func (d *Domain[S]) Seal() { d.sealed.Store(true) }

// Sealed reports whether Seal has been called.
func (d *Domain[S]) Sealed() bool { return d.sealed.Load() }

// Resolve looks a name up in both registries.
func (d *Domain[S]) Resolve(name string) (TaskRef[S], error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if op, ok := d.operators[name]; ok {
		return OperatorRef(op), nil
	}
	if task, ok := d.tasks[name]; ok {
		return CompoundRef(task), nil
	}
	return TaskRef[S]{}, &UnknownTaskError{Name: name}
}

// Ref is shorthand for NameRef.
func (d *Domain[S]) Ref(name string) TaskRef[S] { return NameRef[S](name) }

// Operator returns the operator registered under name.
func (d *Domain[S]) Operator(name string) (*Operator[S], bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	op, ok := d.operators[name]
	return op, ok
}

// Task returns the compound task registered under name.
func (d *Domain[S]) Task(name string) (*CompoundTask[S], bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tasks[name]
	return t, ok
}

// SignatureOf returns the declared signature of an operator or compound task.
// Compound tasks without a task-level signature report the first declared method signature.
func (d *Domain[S]) SignatureOf(name string) (Signature, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if op, ok := d.operators[name]; ok {
		return op.Signature, true
	}
	t, ok := d.tasks[name]
	if !ok {
		return nil, false
	}
	if t.Signature != nil {
		return t.Signature, true
	}
	for _, m := range t.Methods {
		if m.Signature != nil {
			return m.Signature, true
		}
	}
	return nil, false
}

// Operators lists registered operators sorted by name.
func (d *Domain[S]) Operators() []*Operator[S] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Operator[S], 0, len(d.operators))
	for _, op := range d.operators {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tasks lists registered compound tasks sorted by name.
func (d *Domain[S]) Tasks() []*CompoundTask[S] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*CompoundTask[S], 0, len(d.tasks))
	for _, t := range d.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names lists every registered name sorted.
func (d *Domain[S]) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.operators)+len(d.tasks))
	for name := range d.operators {
		out = append(out, name)
	}
	for name := range d.tasks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
