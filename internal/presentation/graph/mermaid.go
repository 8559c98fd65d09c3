package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Overlay contains plan data to visualize on the graph.
type Overlay struct {
	// Goal is highlighted as the starting task.
	Goal string
	// Steps lists the operators of a found plan.
	Steps []domain.Step
}

// GenerateMermaid produces a Mermaid flowchart of the domain's decomposition.
// It applies semantic styling:
// - Root goal: ((Circle))
// - Operator: [[Subroutine]]
// - Compound task: [Rectangle]
// - Unknown reference: [/Parallelogram/]
// Each method contributes one labeled edge per subtask, numbered by position.
func GenerateMermaid[S any](d *domain.Domain[S], root string, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	known := make(map[string]bool)
	for _, name := range d.Names() {
		known[name] = true
	}

	for _, op := range d.Operators() {
		sb.WriteString(node(op.Name, op.Name == root, "[[", "]]"))
	}

	dangling := make(map[string]bool)
	for _, task := range d.Tasks() {
		sb.WriteString(node(task.Name, task.Name == root, "[", "]"))

		for mi, m := range task.Methods {
			label := m.Name
			if label == "" {
				label = fmt.Sprintf("#%d", mi)
			}
			label = strings.ReplaceAll(label, "\"", "'")
			for si, sub := range m.Subtasks {
				target := sub.Name()
				if !known[target] {
					dangling[target] = true
				}
				fmt.Fprintf(&sb, "    %s -- \"%s.%d\" --> %s\n",
					sanitizeMermaidID(task.Name), label, si+1, sanitizeMermaidID(target))
			}
		}
	}

	missing := make([]string, 0, len(dangling))
	for name := range dangling {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	for _, name := range missing {
		fmt.Fprintf(&sb, "    %s[/\"%s ?\"/]\n", sanitizeMermaidID(name), name)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef planned fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef goal fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, step := range overlay.Steps {
			id := sanitizeMermaidID(step.Operator)
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s planned;\n", id)
			}
		}
		if overlay.Goal != "" {
			fmt.Fprintf(&sb, "    class %s goal;\n", sanitizeMermaidID(overlay.Goal))
		}
	}

	return sb.String()
}

func node(name string, root bool, opener, closer string) string {
	if root {
		opener, closer = "((", "))"
	}
	return fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(name), opener, name, closer)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
