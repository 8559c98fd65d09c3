package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
)

func sampleDomain() *domain.Domain[int] {
	d := domain.New[int]()
	d.RegisterOperator("walk-fast", nil, nil, nil)
	d.RegisterOperator("pay.driver", nil, nil, nil)
	d.RegisterCompoundTask("travel",
		domain.Method[int]{Name: "by_foot", Subtasks: []domain.TaskRef[int]{domain.NameRef[int]("walk-fast")}},
		domain.Method[int]{Name: `say "hi"`, Subtasks: []domain.TaskRef[int]{
			domain.NameRef[int]("call_taxi"),
			domain.NameRef[int]("pay.driver"),
		}},
	)
	return d
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name: "Root Shape",
			root: "travel",
			contains: []string{
				`travel(("travel"))`,
			},
		},
		{
			name: "Operator Shape And Sanitization",
			contains: []string{
				`walk_fast[["walk-fast"]]`,
				`pay_driver[["pay.driver"]]`,
				`travel["travel"]`,
			},
		},
		{
			name: "Method Edges",
			contains: []string{
				`travel -- "by_foot.1" --> walk_fast`,
				`travel -- "say 'hi'.2" --> pay_driver`,
			},
		},
		{
			name: "Dangling Reference",
			contains: []string{
				`call_taxi[/"call_taxi ?"/]`,
			},
		},
		{
			name: "Overlay",
			overlay: &graph.Overlay{
				Goal:  "travel",
				Steps: []domain.Step{{Operator: "walk-fast"}, {Operator: "walk-fast"}},
			},
			contains: []string{
				"class walk_fast planned;",
				"class travel goal;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(sampleDomain(), tt.root, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}

func TestGenerateMermaid_OverlayDeduplicates(t *testing.T) {
	got := graph.GenerateMermaid(sampleDomain(), "", &graph.Overlay{
		Steps: []domain.Step{{Operator: "walk-fast"}, {Operator: "walk-fast"}},
	})
	if n := strings.Count(got, "class walk_fast planned;"); n != 1 {
		t.Errorf("expected one planned class line, got %d", n)
	}
}
