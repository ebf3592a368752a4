package query

import (
	"github.com/ritamzico/propgraph/internal/groupmap"
	"github.com/ritamzico/propgraph/internal/value"
)

// entityAccess adapts an EntityOperand[T] to a concrete entity kind (node
// or edge), since Go has no higher-kinded types to express "any entity
// with attributes and group membership" directly. NodeOperand and
// EdgeOperand each build one of these once and embed the generic
// EntityOperand[T] it drives.
type entityAccess[T comparable] struct {
	keyString  func(T) string
	indexValue func(T) value.Value
	attrs      func(*Context, T) (map[string]value.Value, bool)
	groups     func(*Context, T) []groupmap.Group
	all        func(*Context) []T
}

// EntityOperand is the shared generic core behind NodeOperand and
// EdgeOperand: filtering by attribute presence/group membership, attribute
// value access, deep clone, exclude/either_or and final evaluation are all
// identical in shape across the two entity kinds.
type EntityOperand[T comparable] struct {
	core *operandCore[T]
	acc  entityAccess[T]
}

func newEntityOperand[T comparable](acc entityAccess[T], backward func(*evalCtx) ([]T, error)) *EntityOperand[T] {
	return &EntityOperand[T]{core: newCore(acc.keyString, backward), acc: acc}
}

// HasAttribute narrows the stream to entities carrying the given attribute
// key.
func (e *EntityOperand[T]) HasAttribute(key string) *EntityOperand[T] {
	e.core.pushOperation(func(stream []T, ec *evalCtx) ([]T, error) {
		out := stream[:0]
		for _, it := range stream {
			attrs, ok := e.acc.attrs(ec.Context, it)
			if !ok {
				continue
			}
			if _, has := attrs[key]; has {
				out = append(out, it)
			}
		}
		return out, nil
	})
	return e
}

func (e *EntityOperand[T]) WithoutAttribute(key string) *EntityOperand[T] {
	e.core.pushOperation(func(stream []T, ec *evalCtx) ([]T, error) {
		out := stream[:0]
		for _, it := range stream {
			attrs, ok := e.acc.attrs(ec.Context, it)
			if !ok {
				out = append(out, it)
				continue
			}
			if _, has := attrs[key]; !has {
				out = append(out, it)
			}
		}
		return out, nil
	})
	return e
}

// InGroup narrows the stream to entities belonging to at least one of the
// given groups.
func (e *EntityOperand[T]) InGroup(groups ...groupmap.Group) *EntityOperand[T] {
	e.core.pushOperation(func(stream []T, ec *evalCtx) ([]T, error) {
		out := stream[:0]
		for _, it := range stream {
			for _, has := range e.acc.groups(ec.Context, it) {
				if matchesAny(has, groups) {
					out = append(out, it)
					break
				}
			}
		}
		return out, nil
	})
	return e
}

func matchesAny(g groupmap.Group, groups []groupmap.Group) bool {
	for _, want := range groups {
		if g.Equal(want) {
			return true
		}
	}
	return false
}

// Attribute derives a ValueStream over the given attribute key, skipping
// entities that don't carry it; predicates on the returned stream narrow
// this EntityOperand itself (shared handle).
func (e *EntityOperand[T]) Attribute(key string) *ValueStream[T] {
	return newValueStream(e.core, func(ec *evalCtx, it T) (value.Value, bool) {
		attrs, ok := e.acc.attrs(ec.Context, it)
		if !ok {
			return value.Value{}, false
		}
		v, ok := attrs[key]
		return v, ok
	})
}

// Index derives a ValueStream over the entity's own index value, for
// predicates/aggregations over identity rather than an attribute.
func (e *EntityOperand[T]) Index() *ValueStream[T] {
	return newValueStream(e.core, func(ec *evalCtx, it T) (value.Value, bool) {
		return e.acc.indexValue(it), true
	})
}

// Exclude clones this operand, lets build narrow the clone further, then
// drops from this stream every entity the narrowed clone would keep — the
// two-pass algorithm's exclude() primitive.
func (e *EntityOperand[T]) Exclude(build func(*EntityOperand[T])) *EntityOperand[T] {
	sub := e.DeepClone()
	build(sub)

	e.core.pushMerge(func(ec *evalCtx) (map[string]struct{}, error) {
		items, err := sub.core.evaluate(ec)
		if err != nil {
			return nil, err
		}
		return keySet(items, e.acc.keyString), nil
	}, false)

	return e
}

// EitherOr narrows this stream to entities matched by at least one of the
// two branches, evaluated concurrently (ported from the teacher's
// executeConcurrent fan-out/fan-in idiom).
func (e *EntityOperand[T]) EitherOr(a, b func(*EntityOperand[T])) *EntityOperand[T] {
	subA := e.DeepClone()
	a(subA)
	subB := e.DeepClone()
	b(subB)

	e.core.pushMerge(func(ec *evalCtx) (map[string]struct{}, error) {
		results, err := runConcurrent([]func() ([]T, error){
			func() ([]T, error) { return subA.core.evaluate(ec) },
			func() ([]T, error) { return subB.core.evaluate(ec) },
		})
		if err != nil {
			return nil, err
		}
		union := keySet(results[0], e.acc.keyString)
		for k := range keySet(results[1], e.acc.keyString) {
			union[k] = struct{}{}
		}
		return union, nil
	}, true)

	return e
}

func keySet[T any](items []T, keyOf func(T) string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[keyOf(it)] = struct{}{}
	}
	return set
}

// DeepClone produces an independent operand rooted at the same backward
// evaluation, but with its own operations/merges slice — mutating the
// clone never affects the original, matching the shared-handle model's
// explicit escape hatch.
func (e *EntityOperand[T]) DeepClone() *EntityOperand[T] {
	e.core.mu.RLock()
	backward := e.core.backward
	ops := append([]operation[T](nil), e.core.operations...)
	merges := append([]mergeOp(nil), e.core.merges...)
	e.core.mu.RUnlock()

	clone := &EntityOperand[T]{core: newCore(e.acc.keyString, backward), acc: e.acc}
	clone.core.operations = ops
	clone.core.merges = merges
	return clone
}

// GroupBy partitions the stream by the value of an attribute key; see
// group.go for the GroupedEntityOperand it returns and the eager
// per-partition materialization this implies.

func (e *EntityOperand[T]) Evaluate(ctx *Context) ([]T, error) {
	return e.core.evaluate(newEvalCtx(ctx))
}

// EntityAttributes is one (index, attribute map) pair of an AttributesTree
// evaluation — the bulk dual of Attribute(key)'s single-key lookup.
type EntityAttributes[T any] struct {
	Index      T
	Attributes map[string]value.Value
}

// AttributesTree is the bulk view of every attribute carried by an entity,
// rather than a single named key — the Attributes-tree operand in the
// operand hierarchy, narrowing the same underlying EntityOperand.
type AttributesTree[T comparable] struct {
	entity *EntityOperand[T]
}

// Attributes derives an AttributesTree over this entity stream's full
// attribute maps.
func (e *EntityOperand[T]) Attributes() *AttributesTree[T] {
	return &AttributesTree[T]{entity: e}
}

func (a *AttributesTree[T]) Evaluate(ctx *Context) ([]EntityAttributes[T], error) {
	ec := newEvalCtx(ctx)
	items, err := a.entity.core.evaluate(ec)
	if err != nil {
		return nil, err
	}
	out := make([]EntityAttributes[T], 0, len(items))
	for _, it := range items {
		attrs, ok := a.entity.acc.attrs(ec.Context, it)
		if !ok {
			attrs = nil
		}
		out = append(out, EntityAttributes[T]{Index: it, Attributes: attrs})
	}
	return out, nil
}
