package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// PlanStore defines the interface for persisting submitted plans.
// Records are keyed by agent: an agent has at most one active plan, and its
// cursor is what allows execution to stop and resume.
type PlanStore interface {
	// Save persists the record for the given agent, replacing any previous one.
	Save(ctx context.Context, agent string, rec *domain.PlanRecord) error

	// Load retrieves the record for the given agent.
	// Returns domain.ErrPlanNotFound if the agent has no plan.
	Load(ctx context.Context, agent string) (*domain.PlanRecord, error)

	// Delete removes the record for the given agent.
	Delete(ctx context.Context, agent string) error

	// List returns the agents that currently hold a plan.
	List(ctx context.Context) ([]string, error)
}
