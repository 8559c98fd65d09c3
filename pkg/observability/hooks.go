package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// Compose fans each event out to every hook set, in order.
func Compose(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		if h.OnExpand != nil {
			out.OnExpand = chain(out.OnExpand, h.OnExpand)
		}
		if h.OnMethod != nil {
			out.OnMethod = chain(out.OnMethod, h.OnMethod)
		}
		if h.OnOperator != nil {
			out.OnOperator = chain(out.OnOperator, h.OnOperator)
		}
		if h.OnBacktrack != nil {
			out.OnBacktrack = chain(out.OnBacktrack, h.OnBacktrack)
		}
	}
	return out
}

func chain[E any](first, next func(context.Context, E)) func(context.Context, E) {
	if first == nil {
		return next
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		next(ctx, e)
	}
}

// LogHooks writes every event to logger at Debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExpand: func(ctx context.Context, e *domain.ExpandEvent) {
			logger.DebugContext(ctx, string(e.Type),
				"goal", e.Goal, "depth", e.Depth,
				"task", e.Task, "params", e.Params.String(), "methods", e.Methods,
			)
		},
		OnMethod: func(ctx context.Context, e *domain.MethodEvent) {
			logger.DebugContext(ctx, string(e.Type),
				"goal", e.Goal, "depth", e.Depth,
				"task", e.Task, "method", e.Method, "applicable", e.Applicable,
			)
		},
		OnOperator: func(ctx context.Context, e *domain.OperatorEvent) {
			logger.DebugContext(ctx, string(e.Type),
				"goal", e.Goal, "depth", e.Depth,
				"operator", e.Operator, "params", e.Params.String(), "applied", e.Applied,
			)
		},
		OnBacktrack: func(ctx context.Context, e *domain.BacktrackEvent) {
			logger.DebugContext(ctx, string(e.Type),
				"goal", e.Goal, "depth", e.Depth,
				"task", e.Task, "method", e.Method,
			)
		},
	}
}
