package executor

import (
	"context"
	"errors"

	"github.com/aretw0/arbor/pkg/domain"
)

// ErrDenied is returned when an interceptor blocks a step.
var ErrDenied = errors.New("step denied by policy")

// ErrInvalidCursor is returned for a stored record whose cursor lies outside its steps.
var ErrInvalidCursor = errors.New("plan cursor out of range")

// Interceptor is a middleware that can block a step before it runs.
// It returns true if execution should proceed.
type Interceptor func(ctx context.Context, step domain.Step) (bool, error)

// Chain runs interceptors in order and stops at the first denial or error.
func Chain(interceptors ...Interceptor) Interceptor {
	return func(ctx context.Context, step domain.Step) (bool, error) {
		for _, interceptor := range interceptors {
			allowed, err := interceptor(ctx, step)
			if err != nil {
				return false, err
			}
			if !allowed {
				return false, nil
			}
		}
		return true, nil
	}
}

// AutoApprove allows everything.
func AutoApprove() Interceptor {
	return func(context.Context, domain.Step) (bool, error) { return true, nil }
}

// Deny blocks the listed operators.
func Deny(operators ...string) Interceptor {
	blocked := make(map[string]bool, len(operators))
	for _, op := range operators {
		blocked[op] = true
	}
	return func(_ context.Context, step domain.Step) (bool, error) {
		return !blocked[step.Operator], nil
	}
}
