package resilience

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Group collapses concurrent loads of one key into a single call of fn.
// The shared call keeps the first caller's values but not its cancellation;
// each caller stops waiting when its own context is done.
type Group[T any] struct {
	group singleflight.Group
}

// Do reports whether the result was handed to more than one caller.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, bool, error) {
	detached := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Shared, res.Err
		}
		value, _ := res.Val.(T)
		return value, res.Shared, nil
	}
}

// Forget drops key so the next Do starts a fresh call.
func (g *Group[T]) Forget(key string) {
	g.group.Forget(key)
}
