// Package propgraph is the root facade over the in-memory property-graph
// store: the node/edge container, the group overlay, the schema
// discipline, the hook registry, and the query engine, wired together the
// way the teacher's pgraph.go wires its graph + DSL parser together.
package propgraph

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/ritamzico/propgraph/internal/errs"
	"github.com/ritamzico/propgraph/internal/graphstore"
	"github.com/ritamzico/propgraph/internal/groupmap"
	"github.com/ritamzico/propgraph/internal/hooks"
	"github.com/ritamzico/propgraph/internal/query"
	"github.com/ritamzico/propgraph/internal/schema"
	"github.com/ritamzico/propgraph/internal/value"
)

type (
	NodeIndex = graphstore.NodeIndex
	EdgeIndex = graphstore.EdgeIndex
	Direction = graphstore.Direction
	Group     = groupmap.Group
)

const (
	Outgoing = graphstore.Outgoing
	Incoming = graphstore.Incoming
	Both     = graphstore.Both
)

// PGraph bundles the graph container, group overlay, schema and hook
// registry behind one handle, and is the Context every query operand tree
// evaluates against.
type PGraph struct {
	Graph  *graphstore.Graph
	Groups *groupmap.GroupMapping
	Schema *schema.Schema
	Hooks  *hooks.Registry

	ctx *query.Context
}

// New creates an empty graph with the given schema mode.
func New(mode schema.Mode) *PGraph {
	return wrap(graphstore.New(), groupmap.New(), schema.New(mode))
}

func wrap(g *graphstore.Graph, gm *groupmap.GroupMapping, s *schema.Schema) *PGraph {
	return &PGraph{
		Graph:  g,
		Groups: gm,
		Schema: s,
		Hooks:  hooks.New(),
		ctx:    &query.Context{Graph: g, Groups: gm, Schema: s},
	}
}

// Context returns the query.Context this graph evaluates operand trees
// against. It is the sole argument EntityOperand.Evaluate /
// GroupedEntityOperand.Evaluate / ScalarOperand.Evaluate expect.
func (p *PGraph) Context() *query.Context { return p.ctx }

// QueryNodes hands the builder closure a fresh NodeOperand rooted at the
// live node set and returns whatever subtree handle it builds; call
// Evaluate(p.Context()) on the result.
func QueryNodes[R any](build func(*query.NodeOperand) R) R { return query.QueryNodes(build) }

// QueryEdges is QueryNodes' edge-rooted counterpart.
func QueryEdges[R any](build func(*query.EdgeOperand) R) R { return query.QueryEdges(build) }

// AddGroup registers a new, initially empty group.
func (p *PGraph) AddGroup(g Group) error {
	return p.Hooks.Invoke("AddGroup", g, func() error {
		return p.Groups.AddGroup(g, nil, nil)
	})
}

// AddNode inserts a node, validating/widening the schema once per group it
// is placed in (or once against the ungrouped schema when it is placed in
// no group), then linking it into those groups. A node placed in groups is
// not checked against the ungrouped schema.
func (p *PGraph) AddNode(idx NodeIndex, attrs map[string]value.Value, groups ...Group) error {
	return p.Hooks.Invoke("AddNode", idx, func() error {
		if err := p.Schema.UpdateNodeAttributes(attrs, groups); err != nil {
			return err
		}
		if err := p.Graph.AddNode(idx, attrs); err != nil {
			return err
		}
		for _, g := range groups {
			if err := p.Groups.AddNodeToGroup(g, idx); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddEdge inserts an edge between two existing nodes.
func (p *PGraph) AddEdge(source, target NodeIndex, attrs map[string]value.Value, groups ...Group) (EdgeIndex, error) {
	var idx EdgeIndex
	err := p.Hooks.Invoke("AddEdge", [2]NodeIndex{source, target}, func() error {
		if err := p.Schema.UpdateEdgeAttributes(attrs, groups); err != nil {
			return err
		}
		created, err := p.Graph.AddEdge(source, target, attrs)
		if err != nil {
			return err
		}
		idx = created
		for _, g := range groups {
			if err := p.Groups.AddEdgeToGroup(g, idx); err != nil {
				return err
			}
		}
		return nil
	})
	return idx, err
}

// RemoveNode deletes a node, cascading to its incident edges, its group
// memberships, and the group memberships of every edge it drags down with
// it — matching the cascading-delete invariant of §3.
func (p *PGraph) RemoveNode(idx NodeIndex) error {
	return p.Hooks.Invoke("RemoveNode", idx, func() error {
		removedEdges, err := p.Graph.RemoveNode(idx)
		if err != nil {
			return err
		}
		for _, eid := range removedEdges {
			p.Groups.RemoveEdge(eid)
		}
		p.Groups.RemoveNode(idx)
		return nil
	})
}

// RemoveEdge deletes an edge and unlinks it from every group.
func (p *PGraph) RemoveEdge(idx EdgeIndex) error {
	return p.Hooks.Invoke("RemoveEdge", idx, func() error {
		if err := p.Graph.RemoveEdge(idx); err != nil {
			return err
		}
		p.Groups.RemoveEdge(idx)
		return nil
	})
}

// wireDocument is the on-disk JSON shape: the graph's nodes/edges plus the
// group memberships needed to reconstruct the group overlay. Schema is
// saved separately as YAML (schema.DumpYAML) since it is commonly authored
// and reviewed by hand, unlike the graph data itself.
type wireDocument struct {
	Nodes []wireNode `json:"nodes"`
	Edges []wireEdge `json:"edges"`
}

type wireNode struct {
	Index      value.AttributeKey   `json:"index"`
	Attributes map[string]wireValue `json:"attributes"`
	Groups     []value.AttributeKey `json:"groups"`
}

type wireEdge struct {
	Index      graphstore.EdgeIndex `json:"index"`
	Source     value.AttributeKey   `json:"source"`
	Target     value.AttributeKey   `json:"target"`
	Attributes map[string]wireValue `json:"attributes"`
	Groups     []value.AttributeKey `json:"groups"`
}

// wireValue is Value's JSON projection; Kind round-trips through
// value.Kind's String() form rather than its int tag so the file stays
// readable and forward-compatible with new kinds.
type wireValue struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

func toWireValue(v value.Value) wireValue {
	switch v.Kind {
	case value.KindNull:
		return wireValue{Kind: "Null"}
	case value.KindString:
		return wireValue{Kind: "String", Data: v.Str}
	case value.KindInt:
		return wireValue{Kind: "Int", Data: v.I}
	case value.KindFloat:
		return wireValue{Kind: "Float", Data: v.F}
	case value.KindBool:
		return wireValue{Kind: "Bool", Data: v.B}
	case value.KindDateTime:
		return wireValue{Kind: "DateTime", Data: v.T.Format("2006-01-02T15:04:05.999999999Z07:00")}
	case value.KindDuration:
		return wireValue{Kind: "Duration", Data: v.Dur.String()}
	default:
		return wireValue{Kind: "Null"}
	}
}

func fromWireValue(w wireValue) (value.Value, error) {
	switch w.Kind {
	case "", "Null":
		return value.Null(), nil
	case "String":
		s, _ := w.Data.(string)
		return value.String(s), nil
	case "Int":
		f, _ := w.Data.(float64)
		return value.Int(int64(f)), nil
	case "Float":
		f, _ := w.Data.(float64)
		return value.Float(f), nil
	case "Bool":
		b, _ := w.Data.(bool)
		return value.Bool(b), nil
	case "DateTime":
		s, _ := w.Data.(string)
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return value.Value{}, errs.Conversion("invalid DateTime %q: %v", s, err)
		}
		return value.DateTime(t), nil
	case "Duration":
		s, _ := w.Data.(string)
		d, err := time.ParseDuration(s)
		if err != nil {
			return value.Value{}, errs.Conversion("invalid Duration %q: %v", s, err)
		}
		return value.Duration(d), nil
	default:
		return value.Value{}, errs.Conversion("unknown wire value kind %q", w.Kind)
	}
}

func attrsToWire(attrs map[string]value.Value) map[string]wireValue {
	out := make(map[string]wireValue, len(attrs))
	for k, v := range attrs {
		out[k] = toWireValue(v)
	}
	return out
}

func attrsFromWire(attrs map[string]wireValue) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(attrs))
	for k, w := range attrs {
		v, err := fromWireValue(w)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Save serializes the graph data and group overlay as JSON.
func (p *PGraph) Save(w io.Writer) error {
	doc := wireDocument{}
	for _, n := range p.Graph.Nodes() {
		doc.Nodes = append(doc.Nodes, wireNode{
			Index:      n.Index,
			Attributes: attrsToWire(n.Attributes),
			Groups:     p.Groups.GroupsOfNode(n.Index),
		})
	}
	for _, e := range p.Graph.Edges() {
		doc.Edges = append(doc.Edges, wireEdge{
			Index:      e.Index,
			Source:     e.Source,
			Target:     e.Target,
			Attributes: attrsToWire(e.Attributes),
			Groups:     p.Groups.GroupsOfEdge(e.Index),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (p *PGraph) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.Save(f)
}

// Load reconstructs a graph from Save's JSON shape. Schema starts Inferred
// and empty; callers that need a Provided schema should load one
// separately via schema.LoadYAML and assign it to the result's Schema
// field before issuing further mutations.
func Load(r io.Reader) (*PGraph, error) {
	var doc wireDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Conversion("decoding graph JSON: %v", err)
	}

	g := graphstore.New()
	gm := groupmap.New()
	known := make(map[Group]bool)
	ensureGroup := func(grp Group) {
		if !known[grp] {
			known[grp] = true
			gm.AddGroup(grp, nil, nil)
		}
	}

	for _, n := range doc.Nodes {
		attrs, err := attrsFromWire(n.Attributes)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n.Index, attrs); err != nil {
			return nil, err
		}
		for _, grp := range n.Groups {
			ensureGroup(grp)
			if err := gm.AddNodeToGroup(grp, n.Index); err != nil {
				return nil, err
			}
		}
	}

	for _, e := range doc.Edges {
		attrs, err := attrsFromWire(e.Attributes)
		if err != nil {
			return nil, err
		}
		created, err := g.AddEdge(e.Source, e.Target, attrs)
		if err != nil {
			return nil, err
		}
		for _, grp := range e.Groups {
			ensureGroup(grp)
			if err := gm.AddEdgeToGroup(grp, created); err != nil {
				return nil, err
			}
		}
	}

	return wrap(g, gm, schema.New(schema.Inferred)), nil
}

func LoadFile(path string) (*PGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// MustNodeIndex is a small constructor convenience for callers that know
// their index kind at compile time.
func MustNodeIndex(s string) NodeIndex { return value.KeyFromString(s) }
