package file

import (
	"fmt"

	"github.com/aretw0/arbor/internal/dto"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/facts"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/aretw0/arbor/pkg/script"
)

// Bundle is a compiled data-defined domain.
type Bundle struct {
	// Domain holds every operator and task. It is not sealed.
	Domain *domain.Domain[facts.Facts]
	// Root is the default goal, empty when no document declared one.
	Root string
	// Params records the named parameter list of every operator and task.
	Params map[string]schema.Schema
	// Descriptions holds the optional description of each declaration.
	Descriptions map[string]string
}

// Schema returns the declared parameters of name.
func (b *Bundle) Schema(name string) (schema.Schema, bool) {
	s, ok := b.Params[name]
	return s, ok
}

// Compile turns decoded documents into a domain. Operators of every document
// are registered before tasks, so subtasks may reference declarations in
// any file. All problems are reported together as a *schema.AggregateError.
func Compile(docs ...*dto.DomainFile) (*Bundle, error) {
	b := &Bundle{
		Domain:       domain.New[facts.Facts](),
		Params:       make(map[string]schema.Schema),
		Descriptions: make(map[string]string),
	}
	var errs []error

	for _, doc := range docs {
		if b.Domain.Name == "" {
			b.Domain.Name = doc.Domain
		}
		if b.Root == "" {
			b.Root = doc.Root
		}
		for _, spec := range doc.Operators {
			if err := b.addOperator(spec); err != nil {
				errs = append(errs, fmt.Errorf("operator %q: %w", spec.Name, err))
			}
		}
	}
	for _, doc := range docs {
		for _, spec := range doc.Tasks {
			if err := b.addTask(spec); err != nil {
				errs = append(errs, fmt.Errorf("task %q: %w", spec.Name, err))
			}
		}
	}

	if err := schema.Collect(errs); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) addOperator(spec dto.OperatorSpec) error {
	params, err := schema.Parse(spec.Params)
	if err != nil {
		return err
	}
	names := params.Names()

	pre, err := script.CompilePredicate(spec.Pre)
	if err != nil {
		return err
	}

	assignments := make([]script.Assignment, len(spec.Effects))
	for i, e := range spec.Effects {
		assignments[i] = script.Assignment{Relation: e.Set, Key: e.Key, Value: e.Value, Unset: e.Unset}
	}
	eff, err := script.CompileEffect(assignments)
	if err != nil {
		return err
	}

	if _, err := b.Domain.RegisterOperator(spec.Name, pre.Precondition(names), eff.Effect(names), params.Signature()); err != nil {
		return err
	}
	b.record(spec.Name, params, spec.Description)
	return nil
}

func (b *Bundle) addTask(spec dto.TaskSpec) error {
	params, err := schema.Parse(spec.Params)
	if err != nil {
		return err
	}
	names := params.Names()

	task := &domain.CompoundTask[facts.Facts]{
		Name:      spec.Name,
		Signature: params.Signature(),
		Methods:   make([]domain.Method[facts.Facts], 0, len(spec.Methods)),
	}
	for i, m := range spec.Methods {
		method, err := compileMethod(m, names)
		if err != nil {
			label := m.Name
			if label == "" {
				label = fmt.Sprintf("#%d", i)
			}
			return fmt.Errorf("method %s: %w", label, err)
		}
		task.Methods = append(task.Methods, method)
	}

	if err := b.Domain.AddCompoundTask(task); err != nil {
		return err
	}
	b.record(spec.Name, params, spec.Description)
	return nil
}

func compileMethod(spec dto.MethodSpec, names []string) (domain.Method[facts.Facts], error) {
	pre, err := script.CompilePredicate(spec.Pre)
	if err != nil {
		return domain.Method[facts.Facts]{}, err
	}
	subtasks := make([]domain.TaskRef[facts.Facts], 0, len(spec.Subtasks))
	for _, sub := range spec.Subtasks {
		if sub.Task == "" {
			return domain.Method[facts.Facts]{}, fmt.Errorf("subtask without a task name")
		}
		ref := domain.NameRef[facts.Facts](sub.Task)
		if !sub.Forwards() {
			exprs := make([]*script.Expression, len(sub.Args))
			for i, src := range sub.Args {
				if exprs[i], err = script.CompileExpression(src); err != nil {
					return domain.Method[facts.Facts]{}, fmt.Errorf("subtask %s arg %d: %w", sub.Task, i, err)
				}
			}
			ref = ref.Map(script.Mapper(names, exprs))
		}
		subtasks = append(subtasks, ref)
	}
	return domain.Method[facts.Facts]{
		Name:         spec.Name,
		Precondition: pre.Precondition(names),
		Subtasks:     subtasks,
	}, nil
}

func (b *Bundle) record(name string, params schema.Schema, description string) {
	b.Params[name] = params
	if description != "" {
		b.Descriptions[name] = description
	}
}
