package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// StepDispatcher applies a planned step to the real world.
// The executor emits steps in plan order and the host implements this
// interface to carry them out; pkg/registry provides a name-based one.
type StepDispatcher interface {
	Execute(ctx context.Context, operator string, params domain.Params) error
}
