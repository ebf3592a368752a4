package query

import (
	"math"
	"sort"

	"github.com/ritamzico/propgraph/internal/errs"
	"github.com/ritamzico/propgraph/internal/value"
)

// ValueStream is a per-entity value derived from an entity operand — either
// an attribute's value (EntityOperand.Attribute) or the entity's own index
// (EntityOperand.Index). It unifies what the original design splits into
// separate WithIndex attribute/index operand hierarchies: both reduce to
// "one value per surviving entity, narrowing the owning entity operand",
// so this implementation gives them one generic type (see DESIGN.md).
// Predicate methods narrow the *owning* entity operand in place — the
// operand core is a shared handle, so `n.Attribute("age").GreaterThan(...)`
// mutates the same core `n` still holds.
type ValueStream[T any] struct {
	target  *operandCore[T]
	valueOf func(*evalCtx, T) (value.Value, bool)
}

func newValueStream[T any](target *operandCore[T], valueOf func(*evalCtx, T) (value.Value, bool)) *ValueStream[T] {
	return &ValueStream[T]{target: target, valueOf: valueOf}
}

// Evaluate materializes the stream's current values, after the target
// entity operand's own operations and merges have run.
func (v *ValueStream[T]) Evaluate(ctx *Context) ([]value.Value, error) {
	return v.collect(newEvalCtx(ctx))
}

func (v *ValueStream[T]) collect(ec *evalCtx) ([]value.Value, error) {
	items, err := v.target.evaluate(ec)
	if err != nil {
		return nil, err
	}
	vals := make([]value.Value, 0, len(items))
	for _, it := range items {
		if val, ok := v.valueOf(ec, it); ok {
			vals = append(vals, val)
		}
	}
	return vals, nil
}

func (v *ValueStream[T]) filter(pred func(value.Value) (bool, error)) *ValueStream[T] {
	v.target.pushOperation(func(stream []T, ec *evalCtx) ([]T, error) {
		out := stream[:0]
		for _, it := range stream {
			val, ok := v.valueOf(ec, it)
			if !ok {
				continue
			}
			keep, err := pred(val)
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, it)
			}
		}
		return out, nil
	})
	return v
}

func (v *ValueStream[T]) transform(f func(value.Value) (value.Value, error)) *ValueStream[T] {
	prev := v.valueOf
	return &ValueStream[T]{target: v.target, valueOf: func(ec *evalCtx, it T) (value.Value, bool) {
		val, ok := prev(ec, it)
		if !ok {
			return value.Value{}, false
		}
		out, err := f(val)
		if err != nil {
			return value.Value{}, false
		}
		return out, true
	}}
}

// Comparison predicates.

func (v *ValueStream[T]) GreaterThan(x value.Value) *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.Compare(x) == value.Greater, nil })
}

func (v *ValueStream[T]) GreaterThanOrEqualTo(x value.Value) *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) {
		o := val.Compare(x)
		return o == value.Greater || o == value.Equal, nil
	})
}

func (v *ValueStream[T]) LessThan(x value.Value) *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.Compare(x) == value.Less, nil })
}

func (v *ValueStream[T]) LessThanOrEqualTo(x value.Value) *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) {
		o := val.Compare(x)
		return o == value.Less || o == value.Equal, nil
	})
}

func (v *ValueStream[T]) EqualTo(x value.Value) *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.Equal(x), nil })
}

func (v *ValueStream[T]) NotEqualTo(x value.Value) *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return !val.Equal(x), nil })
}

func (v *ValueStream[T]) StartsWith(x value.Value) *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.StartsWith(x) })
}

func (v *ValueStream[T]) EndsWith(x value.Value) *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.EndsWith(x) })
}

func (v *ValueStream[T]) Contains(x value.Value) *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.Contains(x) })
}

func (v *ValueStream[T]) IsIn(xs []value.Value) *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) {
		for _, x := range xs {
			if val.Equal(x) {
				return true, nil
			}
		}
		return false, nil
	})
}

func (v *ValueStream[T]) IsNotIn(xs []value.Value) *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) {
		for _, x := range xs {
			if val.Equal(x) {
				return false, nil
			}
		}
		return true, nil
	})
}

func (v *ValueStream[T]) IsNull() *ValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.IsNull(), nil })
}

// Transforms.

func (v *ValueStream[T]) Add(x value.Value) *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Add(x) })
}
func (v *ValueStream[T]) Sub(x value.Value) *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Sub(x) })
}
func (v *ValueStream[T]) Mul(x value.Value) *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Mul(x) })
}
func (v *ValueStream[T]) Pow(x value.Value) *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Pow(x) })
}
func (v *ValueStream[T]) Mod(x value.Value) *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Mod(x) })
}
func (v *ValueStream[T]) Abs() *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Abs() })
}
func (v *ValueStream[T]) Trim() *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Trim() })
}
func (v *ValueStream[T]) TrimStart() *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.TrimStart() })
}
func (v *ValueStream[T]) TrimEnd() *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.TrimEnd() })
}
func (v *ValueStream[T]) Lowercase() *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Lowercase() })
}
func (v *ValueStream[T]) Uppercase() *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Uppercase() })
}
func (v *ValueStream[T]) Slice(start, end int) *ValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Slice(start, end) })
}

// Aggregations — each constructs a new terminal ScalarOperand whose own
// evaluation runs the parent stream's full evaluation and reduces it; they
// are not entries in the parent's operations, since they don't preserve
// element type (spec's two-pass design treats aggregation as a distinct
// construction step, not a forward-pass filter/transform). The reduction
// logic itself lives in the package-level reduce* functions below so that
// GroupedValueStream (group.go) can apply the same reductions per partition
// instead of duplicating them.

func valueKeyBytes(v value.Value) []byte { return []byte(v.Kind.String() + ":" + v.String()) }

func stableSortValues(ec *evalCtx, vals []value.Value) {
	sort.SliceStable(vals, func(i, j int) bool {
		return ec.orderKey(valueKeyBytes(vals[i])) < ec.orderKey(valueKeyBytes(vals[j]))
	})
}

func reduceMax(ec *evalCtx, vals []value.Value) (value.Value, error) {
	if len(vals) == 0 {
		return value.Value{}, errEmptyAggregation("max")
	}
	stableSortValues(ec, vals)
	best := vals[0]
	for _, val := range vals[1:] {
		if val.Compare(best) == value.Greater {
			best = val
		}
	}
	return best, nil
}

func reduceMin(ec *evalCtx, vals []value.Value) (value.Value, error) {
	if len(vals) == 0 {
		return value.Value{}, errEmptyAggregation("min")
	}
	stableSortValues(ec, vals)
	best := vals[0]
	for _, val := range vals[1:] {
		if val.Compare(best) == value.Less {
			best = val
		}
	}
	return best, nil
}

func reduceCount(vals []value.Value) value.Value {
	return value.Int(int64(len(vals)))
}

func reduceSum(vals []value.Value) (value.Value, error) {
	if len(vals) == 0 {
		return value.Value{}, errEmptyAggregation("sum")
	}
	sum := vals[0]
	for _, val := range vals[1:] {
		var err error
		sum, err = sum.Add(val)
		if err != nil {
			return value.Value{}, err
		}
	}
	return sum, nil
}

func toNumeric(vals []value.Value, kind string) ([]float64, error) {
	if len(vals) == 0 {
		return nil, errEmptyAggregation(kind)
	}
	nums := make([]float64, len(vals))
	for i, val := range vals {
		f, ok := val.AsFloat()
		if !ok {
			return nil, errs.Conversion("%s requires numeric values, got %v", kind, val.Kind)
		}
		nums[i] = f
	}
	return nums, nil
}

func reduceMean(vals []value.Value) (value.Value, error) {
	nums, err := toNumeric(vals, "mean")
	if err != nil {
		return value.Value{}, err
	}
	return value.Float(mean(nums)), nil
}

func reduceMedian(vals []value.Value) (value.Value, error) {
	nums, err := toNumeric(vals, "median")
	if err != nil {
		return value.Value{}, err
	}
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return value.Float(sorted[n/2]), nil
	}
	return value.Float((sorted[n/2-1] + sorted[n/2]) / 2), nil
}

func reduceMode(ec *evalCtx, vals []value.Value) (value.Value, error) {
	if len(vals) == 0 {
		return value.Value{}, errEmptyAggregation("mode")
	}
	stableSortValues(ec, vals)
	counts := make(map[string]int, len(vals))
	first := make(map[string]value.Value, len(vals))
	for _, val := range vals {
		key := string(valueKeyBytes(val))
		counts[key]++
		if _, ok := first[key]; !ok {
			first[key] = val
		}
	}
	var best value.Value
	bestCount := -1
	for _, val := range vals {
		key := string(valueKeyBytes(val))
		if counts[key] > bestCount {
			bestCount = counts[key]
			best = first[key]
		}
	}
	return best, nil
}

func reduceStd(vals []value.Value) (value.Value, error) {
	nums, err := toNumeric(vals, "std")
	if err != nil {
		return value.Value{}, err
	}
	return value.Float(math.Sqrt(variance(nums))), nil
}

func reduceVar(vals []value.Value) (value.Value, error) {
	nums, err := toNumeric(vals, "var")
	if err != nil {
		return value.Value{}, err
	}
	return value.Float(variance(nums)), nil
}

func reduceRandom(ec *evalCtx, vals []value.Value) (value.Value, error) {
	if len(vals) == 0 {
		return value.Value{}, errEmptyAggregation("random")
	}
	stableSortValues(ec, vals)
	return vals[0], nil
}

func (v *ValueStream[T]) Max() *ScalarOperand[T] {
	return newScalar[T](func(ec *evalCtx) (value.Value, error) {
		vals, err := v.collect(ec)
		if err != nil {
			return value.Value{}, err
		}
		return reduceMax(ec, vals)
	})
}

func (v *ValueStream[T]) Min() *ScalarOperand[T] {
	return newScalar[T](func(ec *evalCtx) (value.Value, error) {
		vals, err := v.collect(ec)
		if err != nil {
			return value.Value{}, err
		}
		return reduceMin(ec, vals)
	})
}

func (v *ValueStream[T]) Count() *ScalarOperand[T] {
	return newScalar[T](func(ec *evalCtx) (value.Value, error) {
		vals, err := v.collect(ec)
		if err != nil {
			return value.Value{}, err
		}
		return reduceCount(vals), nil
	})
}

func (v *ValueStream[T]) Sum() *ScalarOperand[T] {
	return newScalar[T](func(ec *evalCtx) (value.Value, error) {
		vals, err := v.collect(ec)
		if err != nil {
			return value.Value{}, err
		}
		return reduceSum(vals)
	})
}

func (v *ValueStream[T]) Mean() *ScalarOperand[T] {
	return newScalar[T](func(ec *evalCtx) (value.Value, error) {
		vals, err := v.collect(ec)
		if err != nil {
			return value.Value{}, err
		}
		return reduceMean(vals)
	})
}

func (v *ValueStream[T]) Median() *ScalarOperand[T] {
	return newScalar[T](func(ec *evalCtx) (value.Value, error) {
		vals, err := v.collect(ec)
		if err != nil {
			return value.Value{}, err
		}
		return reduceMedian(vals)
	})
}

func (v *ValueStream[T]) Mode() *ScalarOperand[T] {
	return newScalar[T](func(ec *evalCtx) (value.Value, error) {
		vals, err := v.collect(ec)
		if err != nil {
			return value.Value{}, err
		}
		return reduceMode(ec, vals)
	})
}

func (v *ValueStream[T]) Std() *ScalarOperand[T] {
	return newScalar[T](func(ec *evalCtx) (value.Value, error) {
		vals, err := v.collect(ec)
		if err != nil {
			return value.Value{}, err
		}
		return reduceStd(vals)
	})
}

func (v *ValueStream[T]) Var() *ScalarOperand[T] {
	return newScalar[T](func(ec *evalCtx) (value.Value, error) {
		vals, err := v.collect(ec)
		if err != nil {
			return value.Value{}, err
		}
		return reduceVar(vals)
	})
}

func (v *ValueStream[T]) Random() *ScalarOperand[T] {
	return newScalar[T](func(ec *evalCtx) (value.Value, error) {
		vals, err := v.collect(ec)
		if err != nil {
			return value.Value{}, err
		}
		return reduceRandom(ec, vals)
	})
}

func mean(nums []float64) float64 {
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total / float64(len(nums))
}

func variance(nums []float64) float64 {
	m := mean(nums)
	total := 0.0
	for _, n := range nums {
		d := n - m
		total += d * d
	}
	return total / float64(len(nums))
}
