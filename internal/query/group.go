package query

import (
	"sort"

	"github.com/ritamzico/propgraph/internal/groupmap"
	"github.com/ritamzico/propgraph/internal/value"
)

// GroupedEntityOperand partitions an EntityOperand's evaluated stream by a
// discriminator (an attribute key; entities lacking that attribute fall in
// no partition) at the group boundary, eagerly, per the
// design notes' "grouped iterators are materialized eagerly at the group
// boundary" guidance. It wraps the SAME EntityOperand (shared handle, not a
// copy): every filtering method it exposes (HasAttribute, InGroup, Exclude,
// EitherOr) delegates straight to the underlying entity operand, so a
// predicate added "on the grouped view" narrows the ungrouped view too —
// this is what makes Ungroup's round-trip exact by construction rather than
// by re-derivation.
type GroupedEntityOperand[T comparable] struct {
	entity *EntityOperand[T]
	keyOf  func(*evalCtx, T) (value.Value, bool)
}

// GroupBy partitions the stream by the value of an attribute key.
func (e *EntityOperand[T]) GroupBy(key string) *GroupedEntityOperand[T] {
	return &GroupedEntityOperand[T]{
		entity: e,
		keyOf: func(ec *evalCtx, it T) (value.Value, bool) {
			attrs, ok := e.acc.attrs(ec.Context, it)
			if !ok {
				return value.Value{}, false
			}
			v, ok := attrs[key]
			return v, ok
		},
	}
}

func (g *GroupedEntityOperand[T]) HasAttribute(key string) *GroupedEntityOperand[T] {
	g.entity.HasAttribute(key)
	return g
}

func (g *GroupedEntityOperand[T]) WithoutAttribute(key string) *GroupedEntityOperand[T] {
	g.entity.WithoutAttribute(key)
	return g
}

func (g *GroupedEntityOperand[T]) InGroup(groups ...groupmap.Group) *GroupedEntityOperand[T] {
	g.entity.InGroup(groups...)
	return g
}

// Exclude mirrors EntityOperand.Exclude: the grouped dual still narrows the
// shared underlying entity before partitioning, so excluded elements drop
// out of every partition.
func (g *GroupedEntityOperand[T]) Exclude(build func(*GroupedEntityOperand[T])) *GroupedEntityOperand[T] {
	g.entity.Exclude(func(sub *EntityOperand[T]) {
		build(&GroupedEntityOperand[T]{entity: sub, keyOf: g.keyOf})
	})
	return g
}

// EitherOr mirrors EntityOperand.EitherOr, lifted to the grouped view.
func (g *GroupedEntityOperand[T]) EitherOr(a, b func(*GroupedEntityOperand[T])) *GroupedEntityOperand[T] {
	g.entity.EitherOr(
		func(sub *EntityOperand[T]) { a(&GroupedEntityOperand[T]{entity: sub, keyOf: g.keyOf}) },
		func(sub *EntityOperand[T]) { b(&GroupedEntityOperand[T]{entity: sub, keyOf: g.keyOf}) },
	)
	return g
}

// Ungroup returns the underlying entity operand, narrowed by whatever this
// grouped view (or the original, pre-group_by operand) added — since both
// views share the same operandCore, Q.group_by(d).ungroup().evaluate(G)
// is always exactly Q.evaluate(G), fulfilling the ungroup round-trip
// property without a separate merge-back edge.
func (g *GroupedEntityOperand[T]) Ungroup() *EntityOperand[T] {
	return g.entity
}

// Partition is one (key, members) pair of a grouped evaluation.
type Partition[T any] struct {
	Key   value.Value
	Items []T
}

// Evaluate materializes every partition: the entity operand's own
// operations/merges run once, then the survivors are bucketed by key in
// first-seen order (distinct keys produce distinct entries, per
// spec.md's grouped-evaluation ordering guarantee; order within a
// partition is otherwise unspecified).
func (g *GroupedEntityOperand[T]) Evaluate(ctx *Context) ([]Partition[T], error) {
	return g.partitions(newEvalCtx(ctx))
}

func (g *GroupedEntityOperand[T]) partitions(ec *evalCtx) ([]Partition[T], error) {
	items, err := g.entity.core.evaluate(ec)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0)
	keyVal := make(map[string]value.Value)
	buckets := make(map[string][]T)

	for _, it := range items {
		v, ok := g.keyOf(ec, it)
		if !ok {
			continue
		}
		k := string(valueKeyBytes(v))
		if _, seen := keyVal[k]; !seen {
			order = append(order, k)
			keyVal[k] = v
		}
		buckets[k] = append(buckets[k], it)
	}

	out := make([]Partition[T], len(order))
	for i, k := range order {
		out[i] = Partition[T]{Key: keyVal[k], Items: buckets[k]}
	}
	return out, nil
}

// Attribute derives a GroupedValueStream over the given attribute key,
// scoped per-partition.
func (g *GroupedEntityOperand[T]) Attribute(key string) *GroupedValueStream[T] {
	return &GroupedValueStream[T]{group: g, valueOf: func(ec *evalCtx, it T) (value.Value, bool) {
		attrs, ok := g.entity.acc.attrs(ec.Context, it)
		if !ok {
			return value.Value{}, false
		}
		v, ok := attrs[key]
		return v, ok
	}}
}

// Index derives a GroupedValueStream over the entity's own index value.
func (g *GroupedEntityOperand[T]) Index() *GroupedValueStream[T] {
	return &GroupedValueStream[T]{group: g, valueOf: func(ec *evalCtx, it T) (value.Value, bool) {
		return g.entity.acc.indexValue(it), true
	}}
}

// GroupedValueStream is the grouped dual of ValueStream: every comparison,
// transform and reduction (Max/Min/Count/Sum/Mean/Median/Mode/Std/Var/Random)
// ValueStream exposes is mirrored here too, so a grouped attribute can be
// filtered or transformed the same way an ungrouped one can — predicates
// narrow the shared underlying entity before partitioning, reductions run
// once per partition, preserving the partition key in the result.
type GroupedValueStream[T comparable] struct {
	group   *GroupedEntityOperand[T]
	valueOf func(*evalCtx, T) (value.Value, bool)
}

// filter and transform mirror ValueStream's of the same name: a predicate
// narrows the shared underlying entity (so it applies before partitioning),
// while a transform derives a new GroupedValueStream without touching the
// entity operand.

func (v *GroupedValueStream[T]) filter(pred func(value.Value) (bool, error)) *GroupedValueStream[T] {
	v.group.entity.core.pushOperation(func(stream []T, ec *evalCtx) ([]T, error) {
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

func (v *GroupedValueStream[T]) transform(f func(value.Value) (value.Value, error)) *GroupedValueStream[T] {
	prev := v.valueOf
	return &GroupedValueStream[T]{group: v.group, valueOf: func(ec *evalCtx, it T) (value.Value, bool) {
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

// Comparison predicates, lifted from ValueStream.

func (v *GroupedValueStream[T]) GreaterThan(x value.Value) *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.Compare(x) == value.Greater, nil })
}

func (v *GroupedValueStream[T]) GreaterThanOrEqualTo(x value.Value) *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) {
		o := val.Compare(x)
		return o == value.Greater || o == value.Equal, nil
	})
}

func (v *GroupedValueStream[T]) LessThan(x value.Value) *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.Compare(x) == value.Less, nil })
}

func (v *GroupedValueStream[T]) LessThanOrEqualTo(x value.Value) *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) {
		o := val.Compare(x)
		return o == value.Less || o == value.Equal, nil
	})
}

func (v *GroupedValueStream[T]) EqualTo(x value.Value) *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.Equal(x), nil })
}

func (v *GroupedValueStream[T]) NotEqualTo(x value.Value) *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return !val.Equal(x), nil })
}

func (v *GroupedValueStream[T]) StartsWith(x value.Value) *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.StartsWith(x) })
}

func (v *GroupedValueStream[T]) EndsWith(x value.Value) *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.EndsWith(x) })
}

func (v *GroupedValueStream[T]) Contains(x value.Value) *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.Contains(x) })
}

func (v *GroupedValueStream[T]) IsIn(xs []value.Value) *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) {
		for _, x := range xs {
			if val.Equal(x) {
				return true, nil
			}
		}
		return false, nil
	})
}

func (v *GroupedValueStream[T]) IsNotIn(xs []value.Value) *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) {
		for _, x := range xs {
			if val.Equal(x) {
				return false, nil
			}
		}
		return true, nil
	})
}

func (v *GroupedValueStream[T]) IsNull() *GroupedValueStream[T] {
	return v.filter(func(val value.Value) (bool, error) { return val.IsNull(), nil })
}

// Transforms, lifted from ValueStream.

func (v *GroupedValueStream[T]) Add(x value.Value) *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Add(x) })
}
func (v *GroupedValueStream[T]) Sub(x value.Value) *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Sub(x) })
}
func (v *GroupedValueStream[T]) Mul(x value.Value) *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Mul(x) })
}
func (v *GroupedValueStream[T]) Pow(x value.Value) *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Pow(x) })
}
func (v *GroupedValueStream[T]) Mod(x value.Value) *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Mod(x) })
}
func (v *GroupedValueStream[T]) Abs() *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Abs() })
}
func (v *GroupedValueStream[T]) Trim() *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Trim() })
}
func (v *GroupedValueStream[T]) TrimStart() *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.TrimStart() })
}
func (v *GroupedValueStream[T]) TrimEnd() *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.TrimEnd() })
}
func (v *GroupedValueStream[T]) Lowercase() *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Lowercase() })
}
func (v *GroupedValueStream[T]) Uppercase() *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Uppercase() })
}
func (v *GroupedValueStream[T]) Slice(start, end int) *GroupedValueStream[T] {
	return v.transform(func(val value.Value) (value.Value, error) { return val.Slice(start, end) })
}

// GroupResult is one (key, reduced value) pair of a grouped aggregation.
type GroupResult struct {
	Key   value.Value
	Value value.Value
}

// GroupedScalarOperand is the grouped dual of ScalarOperand: its Evaluate
// runs every partition's reduction and returns one GroupResult per key,
// mirroring how GroupOperand<X> lifts X's aggregation methods to return
// "GroupOperand<X::Return>" instead of a bare scalar.
type GroupedScalarOperand[T comparable] struct {
	stream *GroupedValueStream[T]
	reduce func(*evalCtx, []value.Value) (value.Value, error)
}

func (s *GroupedScalarOperand[T]) Evaluate(ctx *Context) ([]GroupResult, error) {
	ec := newEvalCtx(ctx)
	parts, err := s.stream.group.partitions(ec)
	if err != nil {
		return nil, err
	}
	out := make([]GroupResult, 0, len(parts))
	for _, p := range parts {
		vals := make([]value.Value, 0, len(p.Items))
		for _, it := range p.Items {
			if val, ok := s.stream.valueOf(ec, it); ok {
				vals = append(vals, val)
			}
		}
		reduced, err := s.reduce(ec, vals)
		if err != nil {
			return nil, err
		}
		out = append(out, GroupResult{Key: p.Key, Value: reduced})
	}
	return out, nil
}

// Each of these mirrors ValueStream's terminal aggregation of the same
// name, but returns a GroupedScalarOperand whose Evaluate produces one
// GroupResult per partition key instead of a single value.

func (v *GroupedValueStream[T]) Max() *GroupedScalarOperand[T] {
	return &GroupedScalarOperand[T]{stream: v, reduce: reduceMax}
}
func (v *GroupedValueStream[T]) Min() *GroupedScalarOperand[T] {
	return &GroupedScalarOperand[T]{stream: v, reduce: reduceMin}
}
func (v *GroupedValueStream[T]) Count() *GroupedScalarOperand[T] {
	return &GroupedScalarOperand[T]{stream: v, reduce: func(ec *evalCtx, vals []value.Value) (value.Value, error) {
		return reduceCount(vals), nil
	}}
}
func (v *GroupedValueStream[T]) Sum() *GroupedScalarOperand[T] {
	return &GroupedScalarOperand[T]{stream: v, reduce: func(ec *evalCtx, vals []value.Value) (value.Value, error) {
		return reduceSum(vals)
	}}
}
func (v *GroupedValueStream[T]) Mean() *GroupedScalarOperand[T] {
	return &GroupedScalarOperand[T]{stream: v, reduce: func(ec *evalCtx, vals []value.Value) (value.Value, error) {
		return reduceMean(vals)
	}}
}
func (v *GroupedValueStream[T]) Median() *GroupedScalarOperand[T] {
	return &GroupedScalarOperand[T]{stream: v, reduce: func(ec *evalCtx, vals []value.Value) (value.Value, error) {
		return reduceMedian(vals)
	}}
}
func (v *GroupedValueStream[T]) Mode() *GroupedScalarOperand[T] {
	return &GroupedScalarOperand[T]{stream: v, reduce: reduceMode}
}
func (v *GroupedValueStream[T]) Std() *GroupedScalarOperand[T] {
	return &GroupedScalarOperand[T]{stream: v, reduce: func(ec *evalCtx, vals []value.Value) (value.Value, error) {
		return reduceStd(vals)
	}}
}
func (v *GroupedValueStream[T]) Var() *GroupedScalarOperand[T] {
	return &GroupedScalarOperand[T]{stream: v, reduce: func(ec *evalCtx, vals []value.Value) (value.Value, error) {
		return reduceVar(vals)
	}}
}
func (v *GroupedValueStream[T]) Random() *GroupedScalarOperand[T] {
	return &GroupedScalarOperand[T]{stream: v, reduce: reduceRandom}
}

// SortByKey orders grouped results by their key's natural ordering,
// falling back to input order for incomparable keys — a convenience for
// callers that want deterministic display order rather than the grouped
// iterator's unspecified partition order.
func SortByKey(results []GroupResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Key.Compare(results[j].Key) == value.Less
	})
}
