package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// Lookup returns the declared parameters of a task, when known.
type Lookup func(name string) (Schema, bool)

// MalformedError reports arguments that could not be read at all.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string { return "malformed args: " + e.Err.Error() }
func (e *MalformedError) Unwrap() error { return e.Err }

// ForGoal resolves the parameters of goal. lookup is consulted first, then the
// domain signature. declared is false for tasks without a signature, which
// accept any scalar arguments.
func ForGoal[S any](d *domain.Domain[S], lookup Lookup, goal string) (s Schema, declared bool, err error) {
	if _, err := d.Resolve(goal); err != nil {
		return nil, false, err
	}
	if lookup != nil {
		if s, ok := lookup(goal); ok {
			return s, true, nil
		}
	}
	sig, _ := d.SignatureOf(goal)
	return FromSignature(sig), sig != nil, nil
}

// BindJSON converts JSON arguments for goal. raw may be empty, null, a
// positional list or an object keyed by parameter name.
func BindJSON[S any](d *domain.Domain[S], lookup Lookup, goal string, raw []byte) (domain.Params, error) {
	s, declared, err := ForGoal(d, lookup, goal)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if !declared {
			return nil, nil
		}
		return s.Coerce(nil)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if trimmed[0] == '{' {
		var named map[string]any
		if err := dec.Decode(&named); err != nil {
			return nil, &MalformedError{Err: err}
		}
		if !declared {
			return nil, &MalformedError{Err: fmt.Errorf("%s declares no parameter names", goal)}
		}
		return s.CoerceNamed(named)
	}

	var list []any
	if err := dec.Decode(&list); err != nil {
		return nil, &MalformedError{Err: err}
	}
	if !declared {
		params, err := domain.NewParams(list...)
		if err != nil {
			return nil, &MalformedError{Err: err}
		}
		return params, nil
	}
	return s.Coerce(list)
}

// BindStrings converts textual arguments for goal, e.g. repeated CLI flags.
// Undeclared parameters are passed as text.
func BindStrings[S any](d *domain.Domain[S], lookup Lookup, goal string, args []string) (domain.Params, error) {
	s, declared, err := ForGoal(d, lookup, goal)
	if err != nil {
		return nil, err
	}
	if !declared {
		params := make(domain.Params, len(args))
		for i, a := range args {
			params[i] = domain.Text(a)
		}
		return params, nil
	}
	return s.ParseArgs(args)
}
