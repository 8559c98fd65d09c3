package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
)

func TestPlanMarkdown(t *testing.T) {
	op := &domain.Operator[int]{Name: "walk"}
	params := domain.MustParams("me", "home", "park")
	res := &domain.Result[int]{
		Goal:  "travel",
		Found: true,
		Plan:  domain.Plan[int]{{Operator: op, Params: params}},
		Stats: domain.Stats{Nodes: 3, Expansions: 1},
	}

	md := PlanMarkdown(res, params)
	for _, want := range []string{"# travel(me, home, park)", "1. `walk(me, home, park)`", "| 3 | 1 | 0 | 0 | 0 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("PlanMarkdown() = \n%s\nWant substring: %s", md, want)
		}
	}

	res.Found, res.Plan = false, nil
	if md := PlanMarkdown(res, params); !strings.Contains(md, "No plan found") {
		t.Errorf("not found rendering: %s", md)
	}

	res.Found = true
	if md := PlanMarkdown(res, nil); !strings.Contains(md, "Already satisfied") {
		t.Errorf("empty plan rendering: %s", md)
	}
}

func TestRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render("# Title\n\nbody")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, "body") {
		t.Errorf("rendered output lost content: %q", out)
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	if !strings.Contains(buf.String(), `|_.__/`) {
		t.Errorf("banner missing art: %q", buf.String())
	}
}
