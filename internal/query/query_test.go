package query

import (
	"testing"

	"github.com/ritamzico/propgraph/internal/graphstore"
	"github.com/ritamzico/propgraph/internal/groupmap"
	"github.com/ritamzico/propgraph/internal/schema"
	"github.com/ritamzico/propgraph/internal/value"
)

func testContext(t *testing.T) (*Context, *graphstore.Graph) {
	t.Helper()
	g := graphstore.New()
	gm := groupmap.New()
	s := schema.New(schema.Inferred)
	return &Context{Graph: g, Groups: gm, Schema: s}, g
}

func mustAddNode(t *testing.T, g *graphstore.Graph, id string, attrs map[string]value.Value) {
	t.Helper()
	if err := g.AddNode(value.KeyFromString(id), attrs); err != nil {
		t.Fatalf("AddNode(%s) failed: %v", id, err)
	}
}

func TestQueryNodesReturnsEveryNode(t *testing.T) {
	ctx, g := testContext(t)
	mustAddNode(t, g, "A", nil)
	mustAddNode(t, g, "B", nil)

	nodes := QueryNodes(func(n *NodeOperand) *NodeOperand { return n })
	vals, err := nodes.Index().Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(vals) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(vals))
	}
}

func TestHasAttributeNarrows(t *testing.T) {
	ctx, g := testContext(t)
	mustAddNode(t, g, "A", map[string]value.Value{"age": value.Int(10)})
	mustAddNode(t, g, "B", nil)

	nodes := QueryNodes(func(n *NodeOperand) *NodeOperand { return n.HasAttribute("age") })
	vals, err := nodes.Index().Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(vals) != 1 {
		t.Fatalf("expected 1 node with an age attribute, got %d", len(vals))
	}
}

func TestGreaterThanFilter(t *testing.T) {
	ctx, g := testContext(t)
	mustAddNode(t, g, "A", map[string]value.Value{"age": value.Int(10)})
	mustAddNode(t, g, "B", map[string]value.Value{"age": value.Int(30)})

	count := QueryNodes(func(n *NodeOperand) *ScalarOperand[graphstore.NodeIndex] {
		n.Attribute("age").GreaterThan(value.Int(20))
		return n.Index().Count()
	})
	v, err := count.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if v.I != 1 {
		t.Errorf("expected 1 node over age 20, got %v", v)
	}
}

func TestExcludeDropsMatchingElements(t *testing.T) {
	ctx, g := testContext(t)
	mustAddNode(t, g, "A", map[string]value.Value{"age": value.Int(10)})
	mustAddNode(t, g, "B", map[string]value.Value{"age": value.Int(30)})

	count := QueryNodes(func(n *NodeOperand) *ScalarOperand[graphstore.NodeIndex] {
		n.Exclude(func(sub *NodeOperand) { sub.Attribute("age").GreaterThan(value.Int(20)) })
		return n.Index().Count()
	})
	v, err := count.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if v.I != 1 {
		t.Errorf("expected 1 node left after excluding age > 20, got %v", v)
	}
}

func TestEitherOrUnionsBranches(t *testing.T) {
	ctx, g := testContext(t)
	mustAddNode(t, g, "A", map[string]value.Value{"age": value.Int(5)})
	mustAddNode(t, g, "B", map[string]value.Value{"age": value.Int(50)})
	mustAddNode(t, g, "C", map[string]value.Value{"age": value.Int(25)})

	count := QueryNodes(func(n *NodeOperand) *ScalarOperand[graphstore.NodeIndex] {
		n.EitherOr(
			func(a *NodeOperand) { a.Attribute("age").LessThan(value.Int(10)) },
			func(b *NodeOperand) { b.Attribute("age").GreaterThan(value.Int(40)) },
		)
		return n.Index().Count()
	})
	v, err := count.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if v.I != 2 {
		t.Errorf("expected 2 nodes matching either branch, got %v", v)
	}
}

func TestGroupByPartitionsByAttribute(t *testing.T) {
	ctx, g := testContext(t)
	mustAddNode(t, g, "A", map[string]value.Value{"team": value.String("red"), "score": value.Int(10)})
	mustAddNode(t, g, "B", map[string]value.Value{"team": value.String("red"), "score": value.Int(20)})
	mustAddNode(t, g, "C", map[string]value.Value{"team": value.String("blue"), "score": value.Int(5)})

	rows := QueryNodes(func(n *NodeOperand) []GroupResult {
		grouped := n.GroupBy("team")
		results, err := grouped.Attribute("score").Sum().Evaluate(ctx)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		return results
	})

	if len(rows) != 2 {
		t.Fatalf("expected 2 partitions, got %d", len(rows))
	}
	SortByKey(rows)
	if rows[0].Key.Str != "blue" || rows[0].Value.I != 5 {
		t.Errorf("blue partition sum = %v, want 5", rows[0].Value)
	}
	if rows[1].Key.Str != "red" || rows[1].Value.I != 30 {
		t.Errorf("red partition sum = %v, want 30", rows[1].Value)
	}
}

func TestUngroupRoundTripIsExact(t *testing.T) {
	ctx, g := testContext(t)
	mustAddNode(t, g, "A", map[string]value.Value{"team": value.String("red")})
	mustAddNode(t, g, "B", map[string]value.Value{"team": value.String("blue")})

	counts := QueryNodes(func(n *NodeOperand) [2]int {
		before, err := n.EntityOperand.Evaluate(ctx)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		grouped := n.GroupBy("team")
		after, err := grouped.Ungroup().Evaluate(ctx)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		return [2]int{len(before), len(after)}
	})

	if counts[0] != counts[1] {
		t.Errorf("ungroup round trip changed the result set: %d != %d", counts[0], counts[1])
	}
}

func TestEdgeTraversal(t *testing.T) {
	ctx, g := testContext(t)
	mustAddNode(t, g, "A", nil)
	mustAddNode(t, g, "B", nil)
	if _, err := g.AddEdge(value.KeyFromString("A"), value.KeyFromString("B"), nil); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}

	targets := QueryNodes(func(n *NodeOperand) []value.Value {
		vals, err := n.Edges(graphstore.Outgoing).TargetNode().Index().Evaluate(ctx)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		return vals
	})

	if len(targets) != 1 || targets[0].Str != "B" {
		t.Errorf("expected target node B, got %v", targets)
	}
}

func TestGroupedValueStreamFilterNarrowsBeforeReduction(t *testing.T) {
	ctx, g := testContext(t)
	mustAddNode(t, g, "A", map[string]value.Value{"team": value.String("red"), "score": value.Int(10)})
	mustAddNode(t, g, "B", map[string]value.Value{"team": value.String("red"), "score": value.Int(2)})
	mustAddNode(t, g, "C", map[string]value.Value{"team": value.String("blue"), "score": value.Int(5)})

	rows := QueryNodes(func(n *NodeOperand) []GroupResult {
		grouped := n.GroupBy("team")
		grouped.Attribute("score").GreaterThan(value.Int(5))
		results, err := grouped.Attribute("score").Sum().Evaluate(ctx)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		return results
	})

	if len(rows) != 1 {
		t.Fatalf("expected the blue partition to be filtered out entirely, got %d partitions", len(rows))
	}
	if rows[0].Key.Str != "red" || rows[0].Value.I != 10 {
		t.Errorf("red partition sum = %v, want 10", rows[0].Value)
	}
}

func TestGroupedEntityOperandExcludeNarrowsAllPartitions(t *testing.T) {
	ctx, g := testContext(t)
	mustAddNode(t, g, "A", map[string]value.Value{"team": value.String("red"), "score": value.Int(10)})
	mustAddNode(t, g, "B", map[string]value.Value{"team": value.String("red"), "score": value.Int(2)})
	mustAddNode(t, g, "C", map[string]value.Value{"team": value.String("blue"), "score": value.Int(5)})

	rows := QueryNodes(func(n *NodeOperand) []GroupResult {
		grouped := n.GroupBy("team")
		grouped.Exclude(func(sub *GroupedEntityOperand[graphstore.NodeIndex]) {
			sub.Attribute("score").LessThan(value.Int(5))
		})
		results, err := grouped.Attribute("score").Sum().Evaluate(ctx)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		return results
	})

	SortByKey(rows)
	if len(rows) != 2 {
		t.Fatalf("expected both partitions to survive with B excluded, got %d", len(rows))
	}
	if rows[0].Key.Str != "blue" || rows[0].Value.I != 5 {
		t.Errorf("blue partition sum = %v, want 5", rows[0].Value)
	}
	if rows[1].Key.Str != "red" || rows[1].Value.I != 10 {
		t.Errorf("red partition sum = %v, want 10 (B excluded)", rows[1].Value)
	}
}

func TestAttributesReturnsFullMapPerEntity(t *testing.T) {
	ctx, g := testContext(t)
	mustAddNode(t, g, "A", map[string]value.Value{"age": value.Int(10), "name": value.String("Alice")})

	rows := QueryNodes(func(n *NodeOperand) []EntityAttributes[graphstore.NodeIndex] {
		rows, err := n.Attributes().Evaluate(ctx)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		return rows
	})

	if len(rows) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(rows))
	}
	if rows[0].Attributes["age"].I != 10 || rows[0].Attributes["name"].Str != "Alice" {
		t.Errorf("unexpected attribute map: %v", rows[0].Attributes)
	}
}

func TestEmptyAggregationCountIsZero(t *testing.T) {
	ctx, _ := testContext(t)

	v := QueryNodes(func(n *NodeOperand) *ScalarOperand[graphstore.NodeIndex] {
		return n.Index().Count()
	})
	result, err := v.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Count on an empty stream should not error: %v", err)
	}
	if result.I != 0 {
		t.Errorf("Count on an empty stream = %v, want 0", result)
	}
}

func TestEmptyAggregationSumErrors(t *testing.T) {
	ctx, _ := testContext(t)

	v := QueryNodes(func(n *NodeOperand) *ScalarOperand[graphstore.NodeIndex] {
		return n.Attribute("age").Sum()
	})
	if _, err := v.Evaluate(ctx); err == nil {
		t.Error("Sum on an empty stream should error")
	}
}
