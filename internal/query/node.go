package query

import (
	"github.com/ritamzico/propgraph/internal/graphstore"
	"github.com/ritamzico/propgraph/internal/groupmap"
	"github.com/ritamzico/propgraph/internal/value"
)

// NodeOperand is the root operand produced by QueryNodes, and the return
// type of EdgeOperand.SourceNode/TargetNode and NodeOperand.Neighbors. It
// wraps the generic EntityOperand[graphstore.NodeIndex] and adds the node-
// specific traversal methods (Edges, Neighbors) the generic core can't
// express, since it knows nothing about the graph container's adjacency.
type NodeOperand struct {
	*EntityOperand[graphstore.NodeIndex]
}

func nodeAccess() entityAccess[graphstore.NodeIndex] {
	return entityAccess[graphstore.NodeIndex]{
		keyString:  func(idx graphstore.NodeIndex) string { return idx.String() },
		indexValue: func(idx graphstore.NodeIndex) value.Value { return idx.Value() },
		attrs: func(ctx *Context, idx graphstore.NodeIndex) (map[string]value.Value, bool) {
			n, err := ctx.Graph.GetNode(idx)
			if err != nil {
				return nil, false
			}
			return n.Attributes, true
		},
		groups: func(ctx *Context, idx graphstore.NodeIndex) []groupmap.Group {
			return ctx.Groups.GroupsOfNode(idx)
		},
		all: func(ctx *Context) []graphstore.NodeIndex {
			nodes := ctx.Graph.Nodes()
			out := make([]graphstore.NodeIndex, len(nodes))
			for i, n := range nodes {
				out[i] = n.Index
			}
			return out
		},
	}
}

// QueryNodes is the builder entry point: it hands the closure a live
// NodeOperand rooted at every node currently in the graph and returns
// whatever subtree handle the closure returns, ready for Evaluate.
func QueryNodes[R any](build func(*NodeOperand) R) R {
	acc := nodeAccess()
	root := &NodeOperand{EntityOperand: newEntityOperand(acc, func(ec *evalCtx) ([]graphstore.NodeIndex, error) {
		return acc.all(ec.Context), nil
	})}
	return build(root)
}

// Thin wrappers over EntityOperand's generic methods so chained calls keep
// returning *NodeOperand (Go has no covariant method returns, so this
// mechanical per-shape re-wrapping is the "polymorphic operand method"
// expansion the design anticipates for a non-HKT language).

func (n *NodeOperand) HasAttribute(key string) *NodeOperand {
	n.EntityOperand.HasAttribute(key)
	return n
}

func (n *NodeOperand) WithoutAttribute(key string) *NodeOperand {
	n.EntityOperand.WithoutAttribute(key)
	return n
}

func (n *NodeOperand) InGroup(groups ...groupmap.Group) *NodeOperand {
	n.EntityOperand.InGroup(groups...)
	return n
}

func (n *NodeOperand) Exclude(build func(*NodeOperand)) *NodeOperand {
	n.EntityOperand.Exclude(func(e *EntityOperand[graphstore.NodeIndex]) {
		build(&NodeOperand{EntityOperand: e})
	})
	return n
}

func (n *NodeOperand) EitherOr(a, b func(*NodeOperand)) *NodeOperand {
	n.EntityOperand.EitherOr(
		func(e *EntityOperand[graphstore.NodeIndex]) { a(&NodeOperand{EntityOperand: e}) },
		func(e *EntityOperand[graphstore.NodeIndex]) { b(&NodeOperand{EntityOperand: e}) },
	)
	return n
}

func (n *NodeOperand) DeepClone() *NodeOperand {
	return &NodeOperand{EntityOperand: n.EntityOperand.DeepClone()}
}

func (n *NodeOperand) GroupBy(key string) *GroupedEntityOperand[graphstore.NodeIndex] {
	return n.EntityOperand.GroupBy(key)
}

// Attributes derives a bulk view of every attribute carried by this node
// stream, as opposed to Attribute(key)'s single-key lookup.
func (n *NodeOperand) Attributes() *AttributesTree[graphstore.NodeIndex] {
	return n.EntityOperand.Attributes()
}

// Edges derives an EdgeOperand over the edges incident to this node stream
// in the given direction; duplicate edges reached from different surviving
// nodes are not deduplicated, matching a flat_map over the node stream.
func (n *NodeOperand) Edges(dir graphstore.Direction) *EdgeOperand {
	acc := edgeAccess()
	return &EdgeOperand{EntityOperand: newEntityOperand(acc, func(ec *evalCtx) ([]graphstore.EdgeIndex, error) {
		nodes, err := n.EntityOperand.core.evaluate(ec)
		if err != nil {
			return nil, err
		}
		var out []graphstore.EdgeIndex
		for _, idx := range nodes {
			edges, err := ec.Graph.AdjacentEdges(idx, dir)
			if err != nil {
				return nil, err
			}
			out = append(out, edges...)
		}
		return out, nil
	})}
}

// Neighbors derives a NodeOperand over the nodes reachable from this node
// stream in the given direction, deduplicated across the whole stream: a
// node reached from several surviving source nodes appears once.
func (n *NodeOperand) Neighbors(dir graphstore.Direction) *NodeOperand {
	acc := nodeAccess()
	return &NodeOperand{EntityOperand: newEntityOperand(acc, func(ec *evalCtx) ([]graphstore.NodeIndex, error) {
		nodes, err := n.EntityOperand.core.evaluate(ec)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{})
		var out []graphstore.NodeIndex
		for _, idx := range nodes {
			neighbors, err := ec.Graph.Neighbors(idx, dir)
			if err != nil {
				return nil, err
			}
			for _, nb := range neighbors {
				if _, dup := seen[nb.String()]; dup {
					continue
				}
				seen[nb.String()] = struct{}{}
				out = append(out, nb)
			}
		}
		return out, nil
	})}
}
