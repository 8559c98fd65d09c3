package domain

// Cloner is implemented by state types that hold references (maps, slices, pointers).
// The planner clones such states before every effect so that a failed branch
// never leaks mutations into its siblings.
type Cloner[S any] interface {
	Clone() S
}

// CloneState returns s.Clone() when S implements Cloner, otherwise s itself.
func CloneState[S any](s S) S {
	if c, ok := any(s).(Cloner[S]); ok {
		return c.Clone()
	}
	return s
}
