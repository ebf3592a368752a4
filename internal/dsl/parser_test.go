package dsl

import (
	"testing"

	propgraph "github.com/ritamzico/propgraph"
	"github.com/ritamzico/propgraph/internal/schema"
	"github.com/ritamzico/propgraph/internal/value"
)

func buildTestGraph(t *testing.T) *propgraph.PGraph {
	t.Helper()
	g := propgraph.New(schema.Inferred)

	for _, n := range []string{"A", "B", "C", "D"} {
		if err := g.AddNode(propgraph.MustNodeIndex(n), nil); err != nil {
			t.Fatalf("failed to add node %s: %v", n, err)
		}
	}

	edges := []struct{ from, to string }{
		{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"},
	}
	for _, e := range edges {
		if _, err := g.AddEdge(propgraph.MustNodeIndex(e.from), propgraph.MustNodeIndex(e.to), nil); err != nil {
			t.Fatalf("failed to add edge %s->%s: %v", e.from, e.to, err)
		}
	}

	return g
}

func TestParser_CreateNode(t *testing.T) {
	g := propgraph.New(schema.Inferred)
	parser := CreateParser(g)

	if _, err := parser.ParseLine(`CREATE NODE A { name: "Alice", age: 30 }`); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}

	n, err := g.Graph.GetNode(propgraph.MustNodeIndex("A"))
	if err != nil {
		t.Fatalf("node A should exist: %v", err)
	}
	if n.Attributes["name"].Str != "Alice" {
		t.Errorf("name = %v, want Alice", n.Attributes["name"])
	}
}

func TestParser_CreateNodeWithGroup(t *testing.T) {
	g := propgraph.New(schema.Inferred)
	parser := CreateParser(g)

	if err := g.AddGroup(propgraph.MustNodeIndex("people")); err != nil {
		t.Fatalf("AddGroup failed: %v", err)
	}
	if _, err := parser.ParseLine("CREATE NODE A IN GROUP people"); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}

	groups := g.Groups.GroupsOfNode(propgraph.MustNodeIndex("A"))
	if len(groups) != 1 {
		t.Fatalf("expected A to be in exactly one group, got %v", groups)
	}
}

func TestParser_CreateEdge(t *testing.T) {
	g := propgraph.New(schema.Inferred)
	parser := CreateParser(g)

	if _, err := parser.ParseLine("CREATE NODE A"); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if _, err := parser.ParseLine("CREATE NODE B"); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if _, err := parser.ParseLine(`CREATE EDGE FROM A TO B { weight: 1.5 }`); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}

	if len(g.Graph.Edges()) != 1 {
		t.Fatalf("expected one edge, got %d", len(g.Graph.Edges()))
	}
}

func TestParser_DeleteNode(t *testing.T) {
	g := buildTestGraph(t)
	parser := CreateParser(g)

	if _, err := parser.ParseLine("DELETE NODE A"); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if _, err := g.Graph.GetNode(propgraph.MustNodeIndex("A")); err == nil {
		t.Error("node A should no longer exist")
	}
}

func TestParser_QueryNodesReturnIndex(t *testing.T) {
	g := buildTestGraph(t)
	parser := CreateParser(g)

	res, err := parser.ParseLine("NODES RETURN INDEX")
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	vr, ok := res.(ValueResult)
	if !ok {
		t.Fatalf("expected ValueResult, got %T", res)
	}
	if len(vr.Values) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(vr.Values))
	}
}

func TestParser_QueryNodesWhereReturnCount(t *testing.T) {
	g := propgraph.New(schema.Inferred)
	parser := CreateParser(g)

	for _, n := range []struct {
		id  string
		age int64
	}{{"A", 20}, {"B", 40}, {"C", 60}} {
		attrs := map[string]value.Value{"age": value.Int(n.age)}
		if err := g.AddNode(propgraph.MustNodeIndex(n.id), attrs); err != nil {
			t.Fatalf("AddNode failed: %v", err)
		}
	}

	res, err := parser.ParseLine("NODES WHERE age > 30 RETURN COUNT")
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	vr, ok := res.(ValueResult)
	if !ok {
		t.Fatalf("expected ValueResult, got %T", res)
	}
	if len(vr.Values) != 1 {
		t.Fatalf("expected a single scalar, got %d values", len(vr.Values))
	}
}

func TestParser_QueryNodesGroupByReturnMean(t *testing.T) {
	g := propgraph.New(schema.Inferred)
	parser := CreateParser(g)

	if _, err := parser.ParseLine(`CREATE NODE A { team: "red", score: 10 }`); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if _, err := parser.ParseLine(`CREATE NODE B { team: "red", score: 20 }`); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if _, err := parser.ParseLine(`CREATE NODE C { team: "blue", score: 5 }`); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}

	res, err := parser.ParseLine("NODES GROUP BY team RETURN MEAN(score)")
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	gr, ok := res.(GroupResult)
	if !ok {
		t.Fatalf("expected GroupResult, got %T", res)
	}
	if len(gr.Rows) != 2 {
		t.Fatalf("expected 2 partitions, got %d", len(gr.Rows))
	}
}

func TestParser_InvalidIdentifier(t *testing.T) {
	g := propgraph.New(schema.Inferred)
	parser := CreateParser(g)

	if _, err := parser.ParseLine("CREATE NODE 9bad"); err == nil {
		t.Error("expected a syntax error for an invalid identifier")
	}
}
