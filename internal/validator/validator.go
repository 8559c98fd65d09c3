package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding about a domain.
type Issue struct {
	Severity Severity `json:"severity"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Subject, i.Message)
}

// Report collects the issues found by ValidateDomain.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Errors returns the issues with error severity.
func (r Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the issues with warning severity.
func (r Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Err summarizes the error-severity issues, or returns nil when there are none.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Subject + ": " + e.Message
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

// ValidateDomain checks for references to undeclared tasks, fixed arguments
// that cannot satisfy their target's signature, tasks without methods and,
// when root is set, declarations unreachable from root.
func ValidateDomain[S any](d *domain.Domain[S], root string) Report {
	var r Report
	add := func(sev Severity, subject, format string, args ...any) {
		r.Issues = append(r.Issues, Issue{Severity: sev, Subject: subject, Message: fmt.Sprintf(format, args...)})
	}

	for _, task := range d.Tasks() {
		if len(task.Methods) == 0 {
			add(SeverityWarning, task.Name, "task has no methods and can never be achieved")
		}
		for mi, m := range task.Methods {
			subject := task.Name + "." + methodLabel(m, mi)
			for si, sub := range m.Subtasks {
				target := sub.Name()
				sig, known := d.SignatureOf(target)
				if _, err := d.Resolve(target); err != nil {
					add(SeverityError, subject, "subtask %d references undeclared task %q", si+1, target)
					continue
				}
				fixed, ok := sub.Fixed()
				if ok && known && sig != nil {
					if _, err := sig.Bind(fixed); err != nil {
						add(SeverityError, subject, "subtask %d: %v", si+1, err)
					}
				}
			}
		}
	}

	if root == "" {
		return r
	}
	if _, err := d.Resolve(root); err != nil {
		add(SeverityError, root, "root task is not declared")
		return r
	}

	visited := map[string]bool{}
	queue := []string{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		task, ok := d.Task(current)
		if !ok {
			continue
		}
		for _, m := range task.Methods {
			for _, sub := range m.Subtasks {
				if !visited[sub.Name()] {
					queue = append(queue, sub.Name())
				}
			}
		}
	}

	var unreachable []string
	for _, name := range d.Names() {
		if !visited[name] {
			unreachable = append(unreachable, name)
		}
	}
	sort.Strings(unreachable)
	for _, name := range unreachable {
		add(SeverityWarning, name, "not reachable from root %q", root)
	}
	return r
}

func methodLabel[S any](m domain.Method[S], index int) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("#%d", index)
}
