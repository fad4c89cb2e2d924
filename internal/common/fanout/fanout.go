// Package fanout runs independent operations concurrently and merges their
// results by input position once every operation has finished.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map calls fn for every input concurrently and returns the results in input
// order. When fn fails for an input, fallback(input, err) is stored in its slot
// instead; the error never reaches the caller. limit <= 0 means unbounded.
//
// Map returns only after every call has resolved.
func Map[In, Out any](
	ctx context.Context,
	inputs []In,
	limit int,
	fn func(ctx context.Context, in In) (Out, error),
	fallback func(in In, err error) Out,
) []Out {
	out := make([]Out, len(inputs))
	if len(inputs) == 0 {
		return out
	}
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range inputs {
		g.Go(func() error {
			res, err := fn(ctx, inputs[i])
			if err != nil {
				res = fallback(inputs[i], err)
			}
			out[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Result pairs a value with the error that produced it, for callers that
// need to tell a degraded slot from a successful one.
type Result[T any] struct {
	Value T
	Err   error
}

// Settle is Map with the error kept in each slot instead of a fallback.
func Settle[In, Out any](
	ctx context.Context,
	inputs []In,
	limit int,
	fn func(ctx context.Context, in In) (Out, error),
) []Result[Out] {
	return Map(ctx, inputs, limit,
		func(ctx context.Context, in In) (Result[Out], error) {
			v, err := fn(ctx, in)
			if err != nil {
				return Result[Out]{}, err
			}
			return Result[Out]{Value: v}, nil
		},
		func(_ In, err error) Result[Out] { return Result[Out]{Err: err} },
	)
}
