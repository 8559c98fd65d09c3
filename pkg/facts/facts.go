// Package facts provides a ready-made planning state: a set of named relations,
// each mapping a key to a scalar or nested value. It is the state type used by
// domains declared in YAML or JSON.
package facts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Facts maps relation names to key/value tables, e.g. loc["me"] = "home".
type Facts map[string]map[string]any

// New returns an empty fact base.
func New() Facts { return make(Facts) }

// Clone returns a deep copy. Nested maps and slices are copied too.
func (f Facts) Clone() Facts {
	out := make(Facts, len(f))
	for rel, table := range f {
		cp := make(map[string]any, len(table))
		for k, v := range table {
			cp[k] = cloneValue(v)
		}
		out[rel] = cp
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		cp := make(map[string]any, len(t))
		for k, inner := range t {
			cp[k] = cloneValue(inner)
		}
		return cp
	case []any:
		cp := make([]any, len(t))
		for i, inner := range t {
			cp[i] = cloneValue(inner)
		}
		return cp
	default:
		return v
	}
}

// Get returns the value of key in relation rel.
func (f Facts) Get(rel, key string) (any, bool) {
	table, ok := f[rel]
	if !ok {
		return nil, false
	}
	v, ok := table[key]
	return v, ok
}

// Set stores value under key in relation rel, creating the relation if needed.
func (f Facts) Set(rel, key string, value any) {
	table, ok := f[rel]
	if !ok {
		table = make(map[string]any)
		f[rel] = table
	}
	table[key] = value
}

// Delete removes key from relation rel.
func (f Facts) Delete(rel, key string) {
	if table, ok := f[rel]; ok {
		delete(table, key)
	}
}

// Relations lists relation names sorted.
func (f Facts) Relations() []string {
	out := make([]string, 0, len(f))
	for rel := range f {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// Decode reads a fact base from YAML or JSON.
func Decode(r io.Reader) (Facts, error) {
	var raw map[string]map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to decode facts: %w", err)
	}
	f := make(Facts, len(raw))
	for rel, table := range raw {
		if table == nil {
			table = make(map[string]any)
		}
		f[rel] = table
	}
	return f, nil
}

// LoadFile reads a fact base from a YAML or JSON file.
func LoadFile(path string) (Facts, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	f, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// DecodeJSON reads a fact base from JSON. Integral numbers decode as int so
// that they compare equal to values written by effects.
func DecodeJSON(r io.Reader) (Facts, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]map[string]any
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to decode facts: %w", err)
	}
	f := make(Facts, len(raw))
	for rel, table := range raw {
		cp := make(map[string]any, len(table))
		for k, v := range table {
			cp[k] = normalizeNumber(v)
		}
		f[rel] = cp
	}
	return f, nil
}

func normalizeNumber(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		if fl, err := t.Float64(); err == nil {
			return fl
		}
		return t.String()
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeNumber(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalizeNumber(inner)
		}
		return t
	default:
		return v
	}
}
