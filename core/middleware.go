package core

import (
	"context"
)

// ExecFunc is the function type for the next step in the middleware chain.
type ExecFunc func(ctx context.Context, req Request) Outcome

// Middleware intercepts statements run by an Executor.
type Middleware interface {
	Name() string
	Process(ctx context.Context, req Request, next ExecFunc) Outcome
}

func chain(middlewares []Middleware, final ExecFunc) ExecFunc {
	next := final
	for i := len(middlewares) - 1; i >= 0; i-- {
		m, n := middlewares[i], next
		next = func(ctx context.Context, req Request) Outcome {
			return m.Process(ctx, req, n)
		}
	}
	return next
}
