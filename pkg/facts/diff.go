package facts

import "reflect"

// Diff describes the relations changed between two fact bases.
// For deletions, the key is present with a nil value.
// It is designed to be serialized to JSON next to a plan so clients can see
// what the plan is expected to achieve.
type Diff map[string]map[string]any

// Compare calculates the difference between old and new.
// If old is nil, every fact in new is reported. It returns nil when nothing changed.
func Compare(old, new Facts) Diff {
	delta := make(Diff)

	for rel, table := range new {
		for k, v := range table {
			prev, ok := old.Get(rel, k)
			if !ok || !reflect.DeepEqual(prev, v) {
				delta.put(rel, k, v)
			}
		}
	}

	for rel, table := range old {
		for k := range table {
			if _, ok := new.Get(rel, k); !ok {
				delta.put(rel, k, nil)
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func (d Diff) put(rel, key string, value any) {
	table, ok := d[rel]
	if !ok {
		table = make(map[string]any)
		d[rel] = table
	}
	table[key] = value
}

// IsEmpty checks if the diff contains any changes.
func (d Diff) IsEmpty() bool {
	return len(d) == 0
}
