package query

import "github.com/ritamzico/propgraph/internal/value"

// ScalarOperand is the terminal node of an aggregation: its own evaluation
// runs the parent stream's full evaluation and reduces it to one value, per
// the empty-aggregation policy documented in SPEC_FULL.md (Count -> 0,
// every other reduction -> an error on an empty stream).
type ScalarOperand[T any] struct {
	compute func(*evalCtx) (value.Value, error)
}

func newScalar[T any](compute func(*evalCtx) (value.Value, error)) *ScalarOperand[T] {
	return &ScalarOperand[T]{compute: compute}
}

func (s *ScalarOperand[T]) Evaluate(ctx *Context) (value.Value, error) {
	return s.compute(newEvalCtx(ctx))
}
