package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Type defines the contract for a parameter type.
// Implementations validate loosely typed input (decoded JSON/YAML, CLI flags)
// and turn it into planner values.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "text", "int").
	Name() string
	// Kind returns the planner kind values of this type carry.
	Kind() domain.Kind
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// Coerce converts a conforming value.
	Coerce(value any) (domain.Value, error)
	// Parse converts the textual form of a value, e.g. a CLI flag.
	Parse(s string) (domain.Value, error)
}

// --- Built-in Type Implementations ---

// TextType validates string values.
type TextType struct{}

func (t *TextType) Name() string      { return "text" }
func (t *TextType) Kind() domain.Kind { return domain.KindText }

func (t *TextType) Validate(value any) error {
	_, err := t.Coerce(value)
	return err
}

func (t *TextType) Coerce(value any) (domain.Value, error) {
	switch v := value.(type) {
	case string:
		return domain.Text(v), nil
	case domain.Value:
		if s, ok := v.AsText(); ok {
			return domain.Text(s), nil
		}
	}
	return domain.Value{}, fmt.Errorf("expected text, got %T", value)
}

func (t *TextType) Parse(s string) (domain.Value, error) { return domain.Text(s), nil }

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string      { return "int" }
func (t *IntType) Kind() domain.Kind { return domain.KindInt }

func (t *IntType) Validate(value any) error {
	_, err := t.Coerce(value)
	return err
}

func (t *IntType) Coerce(value any) (domain.Value, error) {
	switch v := value.(type) {
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == math.Trunc(v) {
			return domain.Int(int(v)), nil
		}
		return domain.Value{}, fmt.Errorf("expected int, got float (not a whole number)")
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return domain.Value{}, fmt.Errorf("expected int, got %q", v.String())
		}
		return domain.Int(int(i)), nil
	case string, bool, nil:
		return domain.Value{}, fmt.Errorf("expected int, got %T", value)
	}
	out, err := domain.ValueOf(value)
	if err != nil || out.Kind() != domain.KindInt {
		return domain.Value{}, fmt.Errorf("expected int, got %T", value)
	}
	return out, nil
}

func (t *IntType) Parse(s string) (domain.Value, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return domain.Value{}, fmt.Errorf("expected int, got %q", s)
	}
	return domain.Int(i), nil
}

// FloatType validates floating-point values. Integers are widened.
type FloatType struct{}

func (t *FloatType) Name() string      { return "float" }
func (t *FloatType) Kind() domain.Kind { return domain.KindFloat }

func (t *FloatType) Validate(value any) error {
	_, err := t.Coerce(value)
	return err
}

func (t *FloatType) Coerce(value any) (domain.Value, error) {
	switch value.(type) {
	case string, bool, nil:
		return domain.Value{}, fmt.Errorf("expected float, got %T", value)
	}
	out, err := domain.ValueOf(value)
	if err != nil {
		return domain.Value{}, fmt.Errorf("expected float, got %T", value)
	}
	switch out.Kind() {
	case domain.KindFloat:
		return out, nil
	case domain.KindInt:
		i, _ := out.AsInt()
		return domain.Float(float64(i)), nil
	}
	return domain.Value{}, fmt.Errorf("expected float, got %T", value)
}

func (t *FloatType) Parse(s string) (domain.Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return domain.Value{}, fmt.Errorf("expected float, got %q", s)
	}
	return domain.Float(f), nil
}

// --- Factory Functions ---

// Text creates a text type.
func Text() Type { return &TextType{} }

// Int creates an integer type.
func Int() Type { return &IntType{} }

// Float creates a float type.
func Float() Type { return &FloatType{} }

// ForKind returns the type carrying values of kind k.
func ForKind(k domain.Kind) (Type, error) {
	switch k {
	case domain.KindInt:
		return Int(), nil
	case domain.KindFloat:
		return Float(), nil
	case domain.KindText:
		return Text(), nil
	default:
		return nil, fmt.Errorf("unsupported kind: %s", k)
	}
}

// ParseType converts a type name to a Type.
// Supports "int", "float" and "text" ("string" is accepted as an alias).
func ParseType(typeStr string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(typeStr)) {
	case "text", "string":
		return Text(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}
