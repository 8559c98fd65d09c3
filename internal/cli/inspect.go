package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/schema"
)

// RunValidate loads the project at dir and reports every issue to out.
// Warnings are printed but only errors fail.
func RunValidate(dir string, out io.Writer) error {
	project, err := LoadProject(dir)
	if err != nil {
		return err
	}
	report := validator.ValidateDomain(project.Bundle.Domain, project.Bundle.Root)
	for _, w := range report.Warnings() {
		fmt.Fprintln(out, w)
	}
	return report.Err()
}

// RunGraph writes the Mermaid decomposition graph of the project at dir.
func RunGraph(dir string, out io.Writer) error {
	project, err := LoadProject(dir)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, graph.GenerateMermaid(project.Bundle.Domain, project.Bundle.Root, nil))
	return err
}

// RunTasks lists operators and compound tasks with their parameters.
func RunTasks(dir string, out io.Writer) error {
	project, err := LoadProject(dir)
	if err != nil {
		return err
	}
	b := project.Bundle
	params := func(name string) string {
		s, _, err := schema.ForGoal(b.Domain, b.Schema, name)
		if err != nil {
			return "?"
		}
		return "(" + strings.Join(s.Strings(), ", ") + ")"
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tPARAMS\tDESCRIPTION")
	for _, op := range b.Domain.Operators() {
		fmt.Fprintf(tw, "operator\t%s\t%s\t%s\n", op.Name, params(op.Name), b.Descriptions[op.Name])
	}
	for _, t := range b.Domain.Tasks() {
		kind := "task"
		if t.Name == b.Root {
			kind = "task*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", kind, t.Name, params(t.Name), b.Descriptions[t.Name])
	}
	return tw.Flush()
}
