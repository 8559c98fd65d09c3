package arbor

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// Request is one entry of a batch planning call.
type Request[S any] struct {
	ID     string
	State  S
	Goal   string
	Params domain.Params
}

// Outcome pairs a request with its result or fatal error.
type Outcome[S any] struct {
	ID     string
	Result *domain.Result[S]
	Err    error
}

// PlanAll plans every request concurrently, at most limit at a time (limit <= 0 means
// unbounded). Outcomes are returned in request order. A fatal error in one request
// does not stop the others; the returned error is only set when ctx ends.
func (p *Planner[S]) PlanAll(ctx context.Context, reqs []Request[S], limit int) ([]Outcome[S], error) {
	out := make([]Outcome[S], len(reqs))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			res, err := p.PlanTask(ctx, req.State, req.Goal, req.Params...)
			out[i] = Outcome[S]{ID: req.ID, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}
