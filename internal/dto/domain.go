// Package dto holds the wire shapes of data-defined domains. Fields carry
// "mapstructure" tags so YAML and JSON documents decode through the same path.
package dto

// DomainFile is one domain document. A domain may be split across files.
type DomainFile struct {
	Domain      string         `json:"domain" mapstructure:"domain"`
	Description string         `json:"description" mapstructure:"description"`
	Root        string         `json:"root" mapstructure:"root"`
	Operators   []OperatorSpec `json:"operators" mapstructure:"operators"`
	Tasks       []TaskSpec     `json:"tasks" mapstructure:"tasks"`
}

// OperatorSpec declares a primitive task.
type OperatorSpec struct {
	Name        string       `json:"name" mapstructure:"name"`
	Description string       `json:"description" mapstructure:"description"`
	Params      []string     `json:"params" mapstructure:"params"`
	Pre         string       `json:"pre" mapstructure:"pre"`
	Effects     []EffectSpec `json:"effects" mapstructure:"effects"`
}

// EffectSpec is a single assignment: relation[key] = value, or a deletion.
type EffectSpec struct {
	Set   string `json:"set" mapstructure:"set"`
	Key   string `json:"key" mapstructure:"key"`
	Value string `json:"value" mapstructure:"value"`
	Unset bool   `json:"unset" mapstructure:"unset"`
}

// TaskSpec declares a compound task.
type TaskSpec struct {
	Name        string       `json:"name" mapstructure:"name"`
	Description string       `json:"description" mapstructure:"description"`
	Params      []string     `json:"params" mapstructure:"params"`
	Methods     []MethodSpec `json:"methods" mapstructure:"methods"`
}

// MethodSpec declares one way of decomposing a task.
type MethodSpec struct {
	Name     string        `json:"name" mapstructure:"name"`
	Pre      string        `json:"pre" mapstructure:"pre"`
	Subtasks []SubtaskSpec `json:"subtasks" mapstructure:"subtasks"`
}

// SubtaskSpec references a task by name. A plain string in the document
// decodes to a SubtaskSpec with only Task set.
type SubtaskSpec struct {
	Task string   `json:"task" mapstructure:"task"`
	Args []string `json:"args" mapstructure:"args"`
}

// Forwards reports whether the subtask receives the parent's parameters.
func (s SubtaskSpec) Forwards() bool { return s.Args == nil }
