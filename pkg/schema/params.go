package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Param is a named, typed parameter declaration.
type Param struct {
	Name string
	Type Type
}

func (p Param) String() string { return p.Name + ":" + p.Type.Name() }

// Schema is an ordered parameter list.
// Example: {{"who", Text()}, {"from", Text()}, {"to", Text()}}
type Schema []Param

// ParseParam parses "name:type". A bare name defaults to text.
func ParseParam(s string) (Param, error) {
	name, typ, found := strings.Cut(strings.TrimSpace(s), ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return Param{}, fmt.Errorf("parameter %q: missing name", s)
	}
	if !found {
		return Param{Name: name, Type: Text()}, nil
	}
	t, err := ParseType(typ)
	if err != nil {
		return Param{}, fmt.Errorf("parameter %s: %w", name, err)
	}
	return Param{Name: name, Type: t}, nil
}

// Parse converts a list of "name:type" declarations into a Schema.
// Names must be unique and the list must fit domain.MaxParams.
func Parse(decls []string) (Schema, error) {
	if len(decls) > domain.MaxParams {
		return nil, &domain.CapacityError{Max: domain.MaxParams, Got: len(decls)}
	}
	out := make(Schema, 0, len(decls))
	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		p, err := ParseParam(d)
		if err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, domain.ErrDuplicateName)
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out, nil
}

// FromSignature returns an unnamed schema for sig. Parameters are named p0, p1...
func FromSignature(sig domain.Signature) Schema {
	out := make(Schema, len(sig))
	for i, k := range sig {
		t, err := ForKind(k)
		if err != nil {
			t = Text()
		}
		out[i] = Param{Name: "p" + strconv.Itoa(i), Type: t}
	}
	return out
}

// Names lists the parameter names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Name
	}
	return out
}

// Signature returns the kinds of the parameters.
func (s Schema) Signature() domain.Signature {
	out := make(domain.Signature, len(s))
	for i, p := range s {
		out[i] = p.Type.Kind()
	}
	return out
}

// Strings returns the "name:type" declarations.
func (s Schema) Strings() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.String()
	}
	return out
}

// Coerce converts positional values. All failures are reported together.
func (s Schema) Coerce(values []any) (domain.Params, error) {
	if len(values) != len(s) {
		return nil, &domain.ArityError{Want: len(s), Got: len(values)}
	}
	out := make(domain.Params, len(s))
	var errs []error
	for i, p := range s {
		v, err := p.Type.Coerce(values[i])
		if err != nil {
			errs = append(errs, &ValidationError{Key: p.Name, Reason: err.Error(), Value: values[i]})
			continue
		}
		out[i] = v
	}
	if err := Collect(errs); err != nil {
		return nil, err
	}
	return out, nil
}

// CoerceNamed converts values keyed by parameter name.
// Missing and undeclared names are errors.
func (s Schema) CoerceNamed(values map[string]any) (domain.Params, error) {
	out := make(domain.Params, len(s))
	var errs []error
	declared := make(map[string]bool, len(s))
	for i, p := range s {
		declared[p.Name] = true
		raw, ok := values[p.Name]
		if !ok {
			errs = append(errs, &ValidationError{Key: p.Name, Reason: "required"})
			continue
		}
		v, err := p.Type.Coerce(raw)
		if err != nil {
			errs = append(errs, &ValidationError{Key: p.Name, Reason: err.Error(), Value: raw})
			continue
		}
		out[i] = v
	}
	for name := range values {
		if !declared[name] {
			errs = append(errs, &ValidationError{Key: name, Reason: "not declared"})
		}
	}
	if err := Collect(errs); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseArgs converts textual values, e.g. repeated CLI flags.
func (s Schema) ParseArgs(args []string) (domain.Params, error) {
	if len(args) != len(s) {
		return nil, &domain.ArityError{Want: len(s), Got: len(args)}
	}
	out := make(domain.Params, len(s))
	var errs []error
	for i, p := range s {
		v, err := p.Type.Parse(args[i])
		if err != nil {
			errs = append(errs, &ValidationError{Key: p.Name, Reason: err.Error()})
			continue
		}
		out[i] = v
	}
	if err := Collect(errs); err != nil {
		return nil, err
	}
	return out, nil
}
