// Package graphstore implements the in-memory node/edge adjacency-list
// container, adapted from the teacher's
// graph.ProbabilisticAdjacencyListGraph with the probability field removed
// and EdgeIndex generalized to a monotonic counter per the data model.
package graphstore

import (
	"maps"
	"slices"
	"sync/atomic"

	"github.com/ritamzico/propgraph/internal/errs"
	"github.com/ritamzico/propgraph/internal/value"
)

type NodeIndex = value.AttributeKey

type EdgeIndex uint64

type Node struct {
	Index      NodeIndex
	Attributes map[string]value.Value
	Outgoing   map[EdgeIndex]struct{}
	Incoming   map[EdgeIndex]struct{}
}

type Edge struct {
	Index      EdgeIndex
	Source     NodeIndex
	Target     NodeIndex
	Attributes map[string]value.Value
}

// Direction selects which side of a node's adjacency to traverse.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Both
)

type Graph struct {
	nodes   map[NodeIndex]*Node
	edges   map[EdgeIndex]*Edge
	out     map[NodeIndex]map[NodeIndex]EdgeIndex
	in      map[NodeIndex]map[NodeIndex]EdgeIndex
	nextIdx atomic.Uint64
}

func New() *Graph {
	return &Graph{
		nodes: make(map[NodeIndex]*Node),
		edges: make(map[EdgeIndex]*Edge),
		out:   make(map[NodeIndex]map[NodeIndex]EdgeIndex),
		in:    make(map[NodeIndex]map[NodeIndex]EdgeIndex),
	}
}

func (g *Graph) AddNode(index NodeIndex, attrs map[string]value.Value) error {
	if g.ContainsNode(index) {
		return errs.Index("node %v already exists", index)
	}

	g.nodes[index] = &Node{
		Index:      index,
		Attributes: maps.Clone(attrs),
		Outgoing:   make(map[EdgeIndex]struct{}),
		Incoming:   make(map[EdgeIndex]struct{}),
	}
	g.out[index] = make(map[NodeIndex]EdgeIndex)
	g.in[index] = make(map[NodeIndex]EdgeIndex)

	return nil
}

// RemoveNode deletes a node and cascades to every edge touching it. The
// caller (propgraph.PGraph) is responsible for also cascading the group
// mapping, which this package has no knowledge of.
func (g *Graph) RemoveNode(index NodeIndex) ([]EdgeIndex, error) {
	if !g.ContainsNode(index) {
		return nil, errs.Index("node %v does not exist", index)
	}

	node := g.nodes[index]
	removed := make([]EdgeIndex, 0, len(node.Outgoing)+len(node.Incoming))

	for eid := range node.Outgoing {
		e := g.edges[eid]
		delete(g.in[e.Target], index)
		delete(g.nodes[e.Target].Incoming, eid)
		delete(g.edges, eid)
		removed = append(removed, eid)
	}
	for eid := range node.Incoming {
		if e, ok := g.edges[eid]; ok {
			delete(g.out[e.Source], index)
			delete(g.nodes[e.Source].Outgoing, eid)
			delete(g.edges, eid)
			removed = append(removed, eid)
		}
	}

	delete(g.out, index)
	delete(g.in, index)
	delete(g.nodes, index)

	return removed, nil
}

func (g *Graph) ContainsNode(index NodeIndex) bool {
	_, ok := g.nodes[index]
	return ok
}

func (g *Graph) GetNode(index NodeIndex) (*Node, error) {
	n, ok := g.nodes[index]
	if !ok {
		return nil, errs.Index("node %v does not exist", index)
	}
	return n, nil
}

func (g *Graph) Nodes() []*Node {
	return slices.Collect(maps.Values(g.nodes))
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) AddEdge(source, target NodeIndex, attrs map[string]value.Value) (EdgeIndex, error) {
	if !g.ContainsNode(source) {
		return 0, errs.Index("node %v does not exist", source)
	}
	if !g.ContainsNode(target) {
		return 0, errs.Index("node %v does not exist", target)
	}

	idx := EdgeIndex(g.nextIdx.Add(1) - 1)
	edge := &Edge{
		Index:      idx,
		Source:     source,
		Target:     target,
		Attributes: maps.Clone(attrs),
	}

	g.edges[idx] = edge
	g.out[source][target] = idx
	g.in[target][source] = idx
	g.nodes[source].Outgoing[idx] = struct{}{}
	g.nodes[target].Incoming[idx] = struct{}{}

	return idx, nil
}

func (g *Graph) RemoveEdge(index EdgeIndex) error {
	edge, ok := g.edges[index]
	if !ok {
		return errs.Index("edge %v does not exist", index)
	}

	delete(g.out[edge.Source], edge.Target)
	delete(g.in[edge.Target], edge.Source)
	delete(g.edges, index)
	if n, ok := g.nodes[edge.Source]; ok {
		delete(n.Outgoing, index)
	}
	if n, ok := g.nodes[edge.Target]; ok {
		delete(n.Incoming, index)
	}

	return nil
}

func (g *Graph) ContainsEdge(index EdgeIndex) bool {
	_, ok := g.edges[index]
	return ok
}

func (g *Graph) GetEdge(index EdgeIndex) (*Edge, error) {
	e, ok := g.edges[index]
	if !ok {
		return nil, errs.Index("edge %v does not exist", index)
	}
	return e, nil
}

func (g *Graph) Edges() []*Edge {
	return slices.Collect(maps.Values(g.edges))
}

func (g *Graph) EdgeCount() int { return len(g.edges) }

// AdjacentEdges returns the edge indices touching node in the given
// direction.
func (g *Graph) AdjacentEdges(node NodeIndex, dir Direction) ([]EdgeIndex, error) {
	n, ok := g.nodes[node]
	if !ok {
		return nil, errs.Index("node %v does not exist", node)
	}

	var out []EdgeIndex
	switch dir {
	case Outgoing:
		out = slices.Collect(maps.Keys(n.Outgoing))
	case Incoming:
		out = slices.Collect(maps.Keys(n.Incoming))
	default:
		out = append(slices.Collect(maps.Keys(n.Outgoing)), slices.Collect(maps.Keys(n.Incoming))...)
	}
	return out, nil
}

// Neighbors returns the node indices reachable from node in the given
// direction, deduplicated.
func (g *Graph) Neighbors(node NodeIndex, dir Direction) ([]NodeIndex, error) {
	edges, err := g.AdjacentEdges(node, dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[NodeIndex]struct{}, len(edges))
	var neighbors []NodeIndex
	for _, eid := range edges {
		e := g.edges[eid]
		other := e.Target
		if e.Target == node {
			other = e.Source
		}
		if _, ok := seen[other]; !ok {
			seen[other] = struct{}{}
			neighbors = append(neighbors, other)
		}
	}
	return neighbors, nil
}

// Clone performs a deep copy of the graph, matching the teacher's Clone
// idiom (fresh maps, copied attribute maps, edges re-linked by index).
func (g *Graph) Clone() *Graph {
	clone := New()
	clone.nextIdx.Store(g.nextIdx.Load())

	for idx, node := range g.nodes {
		clone.nodes[idx] = &Node{
			Index:      node.Index,
			Attributes: maps.Clone(node.Attributes),
			Outgoing:   maps.Clone(node.Outgoing),
			Incoming:   maps.Clone(node.Incoming),
		}
		clone.out[idx] = make(map[NodeIndex]EdgeIndex)
		clone.in[idx] = make(map[NodeIndex]EdgeIndex)
	}

	for idx, edge := range g.edges {
		clone.edges[idx] = &Edge{
			Index:      edge.Index,
			Source:     edge.Source,
			Target:     edge.Target,
			Attributes: maps.Clone(edge.Attributes),
		}
	}

	for from, neighbors := range g.out {
		for to, eid := range neighbors {
			clone.out[from][to] = eid
			clone.in[to][from] = eid
		}
	}

	return clone
}
