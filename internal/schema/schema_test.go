package schema

import (
	"testing"

	"github.com/ritamzico/propgraph/internal/datatype"
	"github.com/ritamzico/propgraph/internal/groupmap"
	"github.com/ritamzico/propgraph/internal/value"
)

func TestInferredWidensOnFirstSight(t *testing.T) {
	s := New(Inferred)
	attrs := map[string]value.Value{"age": value.Int(30)}

	if err := s.UpdateNodeAttributes(attrs, nil); err != nil {
		t.Fatalf("UpdateNodeAttributes failed: %v", err)
	}

	adt, ok := s.Ungrouped.Nodes["age"]
	if !ok {
		t.Fatal("expected age to be typed in the ungrouped schema")
	}
	if adt.AttributeType != datatype.Continuous {
		t.Errorf("age should infer as Continuous, got %v", adt.AttributeType)
	}
}

func TestInferredWidensToUnionOnKindMismatch(t *testing.T) {
	s := New(Inferred)
	s.UpdateNodeAttributes(map[string]value.Value{"val": value.Int(1)}, nil)
	s.UpdateNodeAttributes(map[string]value.Value{"val": value.String("x")}, nil)

	adt := s.Ungrouped.Nodes["val"]
	want := datatype.Union(datatype.Prim(datatype.PInt), datatype.Prim(datatype.PString))
	if !adt.DataType.Equal(want) {
		t.Errorf("val should widen to Union<Int, String>, got %v", adt.DataType)
	}
}

func TestProvidedValidatesAgainstExistingSchema(t *testing.T) {
	s := New(Provided)
	s.Ungrouped.Nodes["age"] = datatype.AttributeDataType{
		DataType:      datatype.Prim(datatype.PInt),
		AttributeType: datatype.Continuous,
	}

	if err := s.UpdateNodeAttributes(map[string]value.Value{"age": value.Int(5)}, nil); err != nil {
		t.Fatalf("expected a matching Int value to validate, got %v", err)
	}
	if err := s.UpdateNodeAttributes(map[string]value.Value{"age": value.String("nope")}, nil); err == nil {
		t.Error("expected a type mismatch to be rejected under Provided mode")
	}
}

func TestProvidedRejectsUnknownAttribute(t *testing.T) {
	s := New(Provided)
	if err := s.UpdateNodeAttributes(map[string]value.Value{"mystery": value.Int(1)}, nil); err == nil {
		t.Error("expected an unknown attribute to be rejected under Provided mode")
	}
}

func TestFrozenInferredSchemaStopsWidening(t *testing.T) {
	s := New(Inferred)
	s.UpdateNodeAttributes(map[string]value.Value{"age": value.Int(1)}, nil)
	s.Ungrouped.Freeze()

	s.UpdateNodeAttributes(map[string]value.Value{"age": value.String("oops"), "new": value.Bool(true)}, nil)

	if _, ok := s.Ungrouped.Nodes["new"]; ok {
		t.Error("a frozen schema should not accept a brand new attribute")
	}
	adt := s.Ungrouped.Nodes["age"]
	if !adt.DataType.Equal(datatype.Prim(datatype.PInt)) {
		t.Error("a frozen schema should not widen an existing attribute's type")
	}
}

func TestPerGroupSchemaIsIndependentOfUngrouped(t *testing.T) {
	s := New(Inferred)
	g := value.KeyFromString("people")

	s.UpdateNodeAttributes(map[string]value.Value{"age": value.Int(1)}, []groupmap.Group{g})

	if _, ok := s.Ungrouped.Nodes["age"]; ok {
		t.Error("a grouped update should not also widen the ungrouped schema")
	}
	if _, ok := s.Groups[g].Nodes["age"]; !ok {
		t.Error("expected the group's own schema to be widened")
	}
}

func TestRemoveGroup(t *testing.T) {
	s := New(Inferred)
	g := value.KeyFromString("people")
	s.UpdateNodeAttributes(map[string]value.Value{"age": value.Int(1)}, []groupmap.Group{g})

	s.RemoveGroup(g)

	if _, ok := s.Groups[g]; ok {
		t.Error("expected the group's schema entry to be removed")
	}
}
