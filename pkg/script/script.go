// Package script compiles the expr-lang expressions used by data-defined
// domains into preconditions, effects and argument mappers over a fact base.
package script

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/facts"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Reserved environment names.
const (
	EnvArgs  = "args"
	EnvFacts = "facts"
	EnvDig   = "dig"
)

// NewEnv builds the evaluation environment for a state and a parameter list.
// Relations are exposed by name, then parameters by their declared names
// (shadowing relations), then the reserved args, facts and dig entries.
//
// Indexing a missing key yields nil, but indexing into a missing relation or
// row is an evaluation error. dig(rel, k1, k2...) walks nested keys and
// returns nil as soon as one is missing: dig(dist, from, to) ?? 99.
func NewEnv(state facts.Facts, names []string, params domain.Params) map[string]any {
	env := make(map[string]any, len(state)+len(names)+2)
	whole := make(map[string]any, len(state))
	for rel, table := range state {
		env[rel] = table
		whole[rel] = table
	}
	values := params.Interfaces()
	for i, name := range names {
		if i < len(values) {
			env[name] = values[i]
		}
	}
	env[EnvArgs] = values
	env[EnvFacts] = whole
	env[EnvDig] = lookup
	return env
}

// lookup indexes v by each key in turn, returning nil once a level is missing.
func lookup(v any, keys ...any) any {
	for _, k := range keys {
		key := fmt.Sprint(k)
		switch m := v.(type) {
		case map[string]any:
			v = m[key]
		case facts.Facts:
			row, ok := m[key]
			if !ok {
				return nil
			}
			v = row
		default:
			return nil
		}
	}
	return v
}

// Predicate is a compiled boolean expression.
// An empty source always holds.
type Predicate struct {
	source  string
	program *vm.Program
}

// CompilePredicate compiles src as a boolean expression.
func CompilePredicate(src string) (*Predicate, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return &Predicate{}, nil
	}
	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("invalid condition %q: %w", src, err)
	}
	return &Predicate{source: src, program: program}, nil
}

// Source returns the expression text.
func (p *Predicate) Source() string { return p.source }

// Eval runs the predicate. A nil result counts as false; any other
// non-bool result is an error.
func (p *Predicate) Eval(env map[string]any) (bool, error) {
	if p == nil || p.program == nil {
		return true, nil
	}
	out, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("expression evaluation failed: %w", err)
	}
	switch v := out.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("condition %q returned %T, want bool", p.source, out)
	}
}

// Precondition adapts the predicate to an operator or method precondition.
// names are the declared parameter names, in order.
func (p *Predicate) Precondition(names []string) domain.Precondition[facts.Facts] {
	if p == nil || p.program == nil {
		return nil
	}
	return func(s facts.Facts, params domain.Params) (bool, error) {
		return p.Eval(NewEnv(s, names, params))
	}
}

// Expression is a compiled expression producing a planner value.
type Expression struct {
	source  string
	program *vm.Program
}

// CompileExpression compiles src as a value expression.
func CompileExpression(src string) (*Expression, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("empty expression")
	}
	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", src, err)
	}
	return &Expression{source: src, program: program}, nil
}

// Source returns the expression text.
func (e *Expression) Source() string { return e.source }

// Eval runs the expression and returns its raw result.
func (e *Expression) Eval(env map[string]any) (any, error) {
	out, err := expr.Run(e.program, env)
	if err != nil {
		return nil, fmt.Errorf("expression evaluation failed: %w", err)
	}
	return out, nil
}

// Value runs the expression and converts the result to a planner value.
func (e *Expression) Value(env map[string]any) (domain.Value, error) {
	out, err := e.Eval(env)
	if err != nil {
		return domain.Value{}, err
	}
	v, err := domain.ValueOf(out)
	if err != nil {
		return domain.Value{}, fmt.Errorf("expression %q: %w", e.source, err)
	}
	return v, nil
}

// Mapper builds a subtask argument mapper from a list of expressions
// evaluated in the parent environment.
func Mapper(names []string, exprs []*Expression) domain.ArgMapper[facts.Facts] {
	return func(s facts.Facts, parent domain.Params) (domain.Params, error) {
		env := NewEnv(s, names, parent)
		out := make(domain.Params, 0, len(exprs))
		for _, e := range exprs {
			v, err := e.Value(env)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
}
