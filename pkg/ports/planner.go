package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// Planner is the driving port used by the HTTP and MCP adapters.
// arbor.Planner satisfies it.
type Planner[S any] interface {
	// PlanTask plans the named goal from state.
	PlanTask(ctx context.Context, state S, goal string, params ...domain.Value) (*domain.Result[S], error)

	// Domain returns the sealed domain being planned over, for introspection.
	Domain() *domain.Domain[S]
}
