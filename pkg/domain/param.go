package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the type tag of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindText
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindInt:     "int",
	KindFloat:   "float",
	KindText:    "text",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// KindByName returns the Kind whose String() is name.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && k != KindInvalid {
			return k, true
		}
	}
	return KindInvalid, false
}

// Value is a tagged union of int, float64 and string.
// The zero Value is invalid.
type Value struct {
	kind Kind
	i    int
	f    float64
	s    string
}

// Int creates an integer Value.
func Int(v int) Value { return Value{kind: KindInt, i: v} }

// Float creates a floating point Value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Text creates a string Value.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// ValueOf converts a Go scalar into a Value.
// Signed and unsigned integers become KindInt, floats KindFloat and strings KindText.
func ValueOf(v any) (Value, error) {
	switch t := v.(type) {
	case Value:
		if !t.IsValid() {
			return Value{}, fmt.Errorf("invalid value")
		}
		return t, nil
	case int:
		return Int(t), nil
	case int8:
		return Int(int(t)), nil
	case int16:
		return Int(int(t)), nil
	case int32:
		return Int(int(t)), nil
	case int64:
		return intInRange(t >= math.MinInt && t <= math.MaxInt, int(t), v)
	case uint:
		return intInRange(uint64(t) <= math.MaxInt, int(t), v)
	case uint8:
		return Int(int(t)), nil
	case uint16:
		return Int(int(t)), nil
	case uint32:
		return intInRange(uint64(t) <= math.MaxInt, int(t), v)
	case uint64:
		return intInRange(t <= math.MaxInt, int(t), v)
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return Text(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return intInRange(i >= math.MinInt && i <= math.MaxInt, int(i), t)
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return Float(f), nil
	default:
		return Value{}, fmt.Errorf("unsupported parameter type %T", v)
	}
}

func intInRange(ok bool, i int, orig any) (Value, error) {
	if !ok {
		return Value{}, fmt.Errorf("integer %v overflows int", orig)
	}
	return Int(i), nil
}

// Kind returns the type tag.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds one of the supported types.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsInt returns the integer payload and whether v is an int.
func (v Value) AsInt() (int, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float payload and whether v is a float.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsText returns the string payload and whether v is text.
func (v Value) AsText() (string, bool) { return v.s, v.kind == KindText }

// Interface returns the payload as int, float64 or string (nil when invalid).
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	default:
		return nil
	}
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.i == o.i && v.f == o.f && v.s == o.s
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.i)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	default:
		return "<invalid>"
	}
}

type wireValue struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the value as {"kind": "...", "value": ...}.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid value")
	}
	raw, err := json.Marshal(v.Interface())
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireValue{Kind: v.kind.String(), Value: raw})
}

// UnmarshalJSON decodes the tagged representation produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, ok := KindByName(w.Kind)
	if !ok {
		return fmt.Errorf("unknown value kind %q", w.Kind)
	}
	switch kind {
	case KindInt:
		var i int
		if err := json.Unmarshal(w.Value, &i); err != nil {
			return fmt.Errorf("decode int value: %w", err)
		}
		*v = Int(i)
	case KindFloat:
		var f float64
		if err := json.Unmarshal(w.Value, &f); err != nil {
			return fmt.Errorf("decode float value: %w", err)
		}
		*v = Float(f)
	case KindText:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return fmt.Errorf("decode text value: %w", err)
		}
		*v = Text(s)
	}
	return nil
}

// Params is an ordered, positional list of values.
type Params []Value

// NewParams converts Go scalars into Params using ValueOf.
func NewParams(values ...any) (Params, error) {
	p := make(Params, 0, len(values))
	for i, raw := range values {
		v, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		p = append(p, v)
	}
	return p, nil
}

// MustParams is like NewParams but panics on error. Intended for literals.
func MustParams(values ...any) Params {
	p, err := NewParams(values...)
	if err != nil {
		panic(err)
	}
	return p
}

// Kinds returns the signature the list satisfies.
func (p Params) Kinds() Signature {
	sig := make(Signature, len(p))
	for i, v := range p {
		sig[i] = v.Kind()
	}
	return sig
}

// Interfaces returns the payloads in order.
func (p Params) Interfaces() []any {
	out := make([]any, len(p))
	for i, v := range p {
		out[i] = v.Interface()
	}
	return out
}

// Equal compares two lists element by element.
func (p Params) Equal(o Params) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !p[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Int returns the integer at position i.
func (p Params) Int(i int) (int, error) { return Get[int](p, i) }

// Float returns the float at position i.
func (p Params) Float(i int) (float64, error) { return Get[float64](p, i) }

// Text returns the string at position i.
func (p Params) Text(i int) (string, error) { return Get[string](p, i) }

func (p Params) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Get extracts the value at position i as T.
// It fails with *TypeMismatchError when the stored tag is not T's kind
// and with *ArityError when i is out of range.
func Get[T int | float64 | string](p Params, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(p) {
		return zero, &ArityError{Want: i + 1, Got: len(p)}
	}
	v := p[i]
	switch any(zero).(type) {
	case int:
		if n, ok := v.AsInt(); ok {
			return any(n).(T), nil
		}
		return zero, &TypeMismatchError{Position: i, Want: KindInt, Got: v.Kind()}
	case float64:
		if f, ok := v.AsFloat(); ok {
			return any(f).(T), nil
		}
		return zero, &TypeMismatchError{Position: i, Want: KindFloat, Got: v.Kind()}
	default:
		if s, ok := v.AsText(); ok {
			return any(s).(T), nil
		}
		return zero, &TypeMismatchError{Position: i, Want: KindText, Got: v.Kind()}
	}
}
