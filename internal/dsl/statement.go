package dsl

import (
	propgraph "github.com/ritamzico/propgraph"
	"github.com/ritamzico/propgraph/internal/value"
)

// Statement is a parsed mutation, ready to execute against a live graph.
// Grounded on the teacher's CreateNodeStatement/DeleteNodeStatement shape,
// generalized off the probabilistic CREATE NODE <id> PROB <p> grammar onto
// plain property-graph nodes/edges with optional group membership.
type Statement interface {
	Execute(g *propgraph.PGraph) error
}

type CreateNodeStatement struct {
	ID     string
	Groups []string
	Props  map[string]value.Value
}

func (s *CreateNodeStatement) Execute(g *propgraph.PGraph) error {
	groups := make([]propgraph.Group, len(s.Groups))
	for i, name := range s.Groups {
		groups[i] = value.KeyFromString(name)
	}
	return g.AddNode(value.KeyFromString(s.ID), s.Props, groups...)
}

type CreateEdgeStatement struct {
	From, To string
	Groups   []string
	Props    map[string]value.Value
}

func (s *CreateEdgeStatement) Execute(g *propgraph.PGraph) error {
	groups := make([]propgraph.Group, len(s.Groups))
	for i, name := range s.Groups {
		groups[i] = value.KeyFromString(name)
	}
	_, err := g.AddEdge(value.KeyFromString(s.From), value.KeyFromString(s.To), s.Props, groups...)
	return err
}

type DeleteNodeStatement struct {
	ID string
}

func (s *DeleteNodeStatement) Execute(g *propgraph.PGraph) error {
	return g.RemoveNode(value.KeyFromString(s.ID))
}

type DeleteEdgeStatement struct {
	Index int64
}

func (s *DeleteEdgeStatement) Execute(g *propgraph.PGraph) error {
	return g.RemoveEdge(propgraph.EdgeIndex(s.Index))
}
