package query

import (
	"strconv"

	"github.com/ritamzico/propgraph/internal/graphstore"
	"github.com/ritamzico/propgraph/internal/groupmap"
	"github.com/ritamzico/propgraph/internal/value"
)

// EdgeOperand is the root operand produced by QueryEdges, and the return
// type of NodeOperand.Edges. It wraps the generic
// EntityOperand[graphstore.EdgeIndex] and adds SourceNode/TargetNode.
type EdgeOperand struct {
	*EntityOperand[graphstore.EdgeIndex]
}

func edgeAccess() entityAccess[graphstore.EdgeIndex] {
	return entityAccess[graphstore.EdgeIndex]{
		keyString:  func(idx graphstore.EdgeIndex) string { return strconv.FormatUint(uint64(idx), 10) },
		indexValue: func(idx graphstore.EdgeIndex) value.Value { return value.Int(int64(idx)) },
		attrs: func(ctx *Context, idx graphstore.EdgeIndex) (map[string]value.Value, bool) {
			e, err := ctx.Graph.GetEdge(idx)
			if err != nil {
				return nil, false
			}
			return e.Attributes, true
		},
		groups: func(ctx *Context, idx graphstore.EdgeIndex) []groupmap.Group {
			return ctx.Groups.GroupsOfEdge(idx)
		},
		all: func(ctx *Context) []graphstore.EdgeIndex {
			edges := ctx.Graph.Edges()
			out := make([]graphstore.EdgeIndex, len(edges))
			for i, e := range edges {
				out[i] = e.Index
			}
			return out
		},
	}
}

// QueryEdges is the builder entry point: it hands the closure a live
// EdgeOperand rooted at every edge currently in the graph.
func QueryEdges[R any](build func(*EdgeOperand) R) R {
	acc := edgeAccess()
	root := &EdgeOperand{EntityOperand: newEntityOperand(acc, func(ec *evalCtx) ([]graphstore.EdgeIndex, error) {
		return acc.all(ec.Context), nil
	})}
	return build(root)
}

func (e *EdgeOperand) HasAttribute(key string) *EdgeOperand {
	e.EntityOperand.HasAttribute(key)
	return e
}

func (e *EdgeOperand) WithoutAttribute(key string) *EdgeOperand {
	e.EntityOperand.WithoutAttribute(key)
	return e
}

func (e *EdgeOperand) InGroup(groups ...groupmap.Group) *EdgeOperand {
	e.EntityOperand.InGroup(groups...)
	return e
}

func (e *EdgeOperand) Exclude(build func(*EdgeOperand)) *EdgeOperand {
	e.EntityOperand.Exclude(func(sub *EntityOperand[graphstore.EdgeIndex]) {
		build(&EdgeOperand{EntityOperand: sub})
	})
	return e
}

func (e *EdgeOperand) EitherOr(a, b func(*EdgeOperand)) *EdgeOperand {
	e.EntityOperand.EitherOr(
		func(sub *EntityOperand[graphstore.EdgeIndex]) { a(&EdgeOperand{EntityOperand: sub}) },
		func(sub *EntityOperand[graphstore.EdgeIndex]) { b(&EdgeOperand{EntityOperand: sub}) },
	)
	return e
}

func (e *EdgeOperand) DeepClone() *EdgeOperand {
	return &EdgeOperand{EntityOperand: e.EntityOperand.DeepClone()}
}

func (e *EdgeOperand) GroupBy(key string) *GroupedEntityOperand[graphstore.EdgeIndex] {
	return e.EntityOperand.GroupBy(key)
}

// Attributes derives a bulk view of every attribute carried by this edge
// stream, as opposed to Attribute(key)'s single-key lookup.
func (e *EdgeOperand) Attributes() *AttributesTree[graphstore.EdgeIndex] {
	return e.EntityOperand.Attributes()
}

// SourceNode derives a NodeOperand over this edge stream's source
// endpoints.
func (e *EdgeOperand) SourceNode() *NodeOperand {
	return e.endpoint(func(edge *graphstore.Edge) graphstore.NodeIndex { return edge.Source })
}

// TargetNode derives a NodeOperand over this edge stream's target
// endpoints.
func (e *EdgeOperand) TargetNode() *NodeOperand {
	return e.endpoint(func(edge *graphstore.Edge) graphstore.NodeIndex { return edge.Target })
}

func (e *EdgeOperand) endpoint(pick func(*graphstore.Edge) graphstore.NodeIndex) *NodeOperand {
	acc := nodeAccess()
	return &NodeOperand{EntityOperand: newEntityOperand(acc, func(ec *evalCtx) ([]graphstore.NodeIndex, error) {
		edges, err := e.EntityOperand.core.evaluate(ec)
		if err != nil {
			return nil, err
		}
		out := make([]graphstore.NodeIndex, 0, len(edges))
		for _, idx := range edges {
			edge, err := ec.Graph.GetEdge(idx)
			if err != nil {
				return nil, err
			}
			out = append(out, pick(edge))
		}
		return out, nil
	})}
}
