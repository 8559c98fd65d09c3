package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a markdown renderer styled for the current terminal.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PlanMarkdown describes a planning result as markdown.
func PlanMarkdown[S any](res *domain.Result[S], params domain.Params) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s(%s)\n\n", res.Goal, params)

	switch {
	case !res.Found:
		sb.WriteString("**No plan found.** Every decomposition failed.\n\n")
	case len(res.Plan) == 0:
		sb.WriteString("**Already satisfied.** The plan is empty.\n\n")
	default:
		for i, step := range res.Steps() {
			fmt.Fprintf(&sb, "%d. `%s`\n", i+1, step)
		}
		sb.WriteString("\n")
	}

	st := res.Stats
	sb.WriteString("| nodes | expansions | backtracks | rejections | depth | time |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d | %d | %d | %s |\n",
		st.Nodes, st.Expansions, st.Backtracks, st.Rejections, st.MaxDepth, st.Duration.Round(time.Microsecond))
	return sb.String()
}
