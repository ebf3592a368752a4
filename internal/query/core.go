// Package query implements the lazy, composable operator-tree query engine:
// entity operands (node/edge), index operands, attribute/value operands and
// their grouped duals, evaluated via the two-pass forward/backward
// algorithm described by the store's query design. Grounded on the
// teacher's Query/composite-query combinator style
// (internal/query/composite_queries.go) for the shape of composable query
// objects, and on the original graphrecords' querying/operand_traits and
// querying/{nodes,values}/group_by modules for the operand-tree mechanics.
package query

import (
	"sort"
	"sync"

	"github.com/dchest/siphash"

	"github.com/ritamzico/propgraph/internal/errs"
	"github.com/ritamzico/propgraph/internal/graphstore"
	"github.com/ritamzico/propgraph/internal/groupmap"
	"github.com/ritamzico/propgraph/internal/schema"
)

// Context bundles the data the evaluator needs to resolve an operator tree
// against: the graph, the group overlay and the active schema. It is the
// "graphrecord" argument every evaluate_backward/evaluate_forward call
// takes in the original design.
type Context struct {
	Graph  *graphstore.Graph
	Groups *groupmap.GroupMapping
	Schema *schema.Schema

	// evalSeed seeds the per-Evaluate-call siphash ordering key so that
	// iteration order is deterministic within one evaluation but changes
	// across calls, matching "deterministic per query but unspecified".
	evalSeed atomic64
}

type atomic64 struct {
	mu sync.Mutex
	n  uint64
}

func (a *atomic64) next() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.n++
	return a.n
}

// evalCtx is threaded through a single Evaluate() call; it carries the
// siphash key that makes that call's ordering stable but lets a later call
// land on a different key.
type evalCtx struct {
	*Context
	hashKey0, hashKey1 uint64
}

func newEvalCtx(c *Context) *evalCtx {
	seed := c.evalSeed.next()
	return &evalCtx{Context: c, hashKey0: seed, hashKey1: ^seed}
}

func (e *evalCtx) orderKey(b []byte) uint64 {
	return siphash.Hash(e.hashKey0, e.hashKey1, b)
}

// operation narrows or transforms a []T stream in place, in the order it
// was added to the operand — evaluate_forward's "apply operations
// elementwise" step.
type operation[T any] func([]T, *evalCtx) ([]T, error)

// mergeOp is one merge-operations entry: a lazily backward-evaluated key
// set plus whether matching elements should be kept (intersect, used by
// either_or) or dropped (exclude).
type mergeOp struct {
	keys func(*evalCtx) (map[string]struct{}, error)
	keep bool
}

// operandCore is the shared mutable handle every concrete operand embeds.
// Builder methods (which add operations/merges) take the write lock;
// DeepClone/evaluation take the read lock, matching the interior-mutability
// + shared-handle design: the user-facing operand type is a pointer to a
// struct embedding this core, so cloning the pointer aliases the same core
// while DeepClone produces a genuinely independent copy.
type operandCore[T any] struct {
	mu         sync.RWMutex
	backward   func(*evalCtx) ([]T, error)
	operations []operation[T]
	merges     []mergeOp
	keyOf      func(T) string
}

func newCore[T any](keyOf func(T) string, backward func(*evalCtx) ([]T, error)) *operandCore[T] {
	return &operandCore[T]{keyOf: keyOf, backward: backward}
}

func (c *operandCore[T]) pushOperation(op operation[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.operations = append(c.operations, op)
}

// pushMerge installs a merge-operations back-edge: sub's backward-evaluated
// key set narrows this core's stream at evaluation time, used by exclude()
// and either_or(). Ungroup needs no merge: the grouped view shares this core.
func (c *operandCore[T]) pushMerge(keys func(*evalCtx) (map[string]struct{}, error), keep bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.merges = append(c.merges, mergeOp{keys: keys, keep: keep})
}

// evaluate runs the two-pass algorithm: evaluate_backward (walk to root,
// producing the input stream), evaluate_forward (apply operations in
// order), then apply every merge-operations' backward-evaluated key set to
// the result: keep-merges intersect with it, drop-merges subtract it.
func (c *operandCore[T]) evaluate(ec *evalCtx) ([]T, error) {
	c.mu.RLock()
	backward := c.backward
	ops := append([]operation[T](nil), c.operations...)
	merges := append([]mergeOp(nil), c.merges...)
	c.mu.RUnlock()

	stream, err := backward(ec)
	if err != nil {
		return nil, err
	}

	for _, op := range ops {
		stream, err = op(stream, ec)
		if err != nil {
			return nil, err
		}
	}

	for _, merge := range merges {
		keys, err := merge.keys(ec)
		if err != nil {
			return nil, err
		}
		filtered := make([]T, 0, len(stream))
		for _, v := range stream {
			_, present := keys[c.keyOf(v)]
			if present == merge.keep {
				filtered = append(filtered, v)
			}
		}
		stream = filtered
	}

	return stream, nil
}

// stableSort orders a stream by the per-evaluation siphash of each
// element's key, giving deterministic-but-unspecified ordering: stable
// within one Evaluate() call (so Max/Min first-wins tie-breaks reproduce),
// but a different order on the next call since the key changes.
func stableSort[T any](ec *evalCtx, stream []T, keyOf func(T) string) {
	sort.SliceStable(stream, func(i, j int) bool {
		return ec.orderKey([]byte(keyOf(stream[i]))) < ec.orderKey([]byte(keyOf(stream[j])))
	})
}

var errEmptyAggregation = func(kind string) error {
	return errs.Query("cannot compute %s of an empty stream", kind)
}
