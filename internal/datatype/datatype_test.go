package datatype

import (
	"testing"

	"github.com/ritamzico/propgraph/internal/value"
)

func TestEvaluatePrimitive(t *testing.T) {
	if !Evaluate(Prim(PInt), value.KindInt) {
		t.Error("Int should evaluate against Prim(PInt)")
	}
	if Evaluate(Prim(PInt), value.KindString) {
		t.Error("String should not evaluate against Prim(PInt)")
	}
}

func TestEvaluateAny(t *testing.T) {
	if !Evaluate(Any(), value.KindString) {
		t.Error("Any should accept every kind")
	}
	if !Evaluate(Any(), value.KindNull) {
		t.Error("Any should accept Null")
	}
}

func TestEvaluateOption(t *testing.T) {
	opt := Option(Prim(PInt))
	if !Evaluate(opt, value.KindNull) {
		t.Error("Option(Int) should accept Null")
	}
	if !Evaluate(opt, value.KindInt) {
		t.Error("Option(Int) should accept Int")
	}
	if Evaluate(opt, value.KindString) {
		t.Error("Option(Int) should reject String")
	}
}

func TestEvaluateUnion(t *testing.T) {
	u := Union(Prim(PInt), Prim(PString))
	if !Evaluate(u, value.KindInt) {
		t.Error("Union(Int, String) should accept Int")
	}
	if !Evaluate(u, value.KindString) {
		t.Error("Union(Int, String) should accept String")
	}
	if Evaluate(u, value.KindBool) {
		t.Error("Union(Int, String) should reject Bool")
	}
}

func TestUnionEqualityIsCommutative(t *testing.T) {
	a := Union(Prim(PInt), Prim(PString))
	b := Union(Prim(PString), Prim(PInt))
	if !a.Equal(b) {
		t.Error("Union(Int, String) should equal Union(String, Int)")
	}
}

func TestUnionNotEqualToDifferentUnion(t *testing.T) {
	a := Union(Prim(PInt), Prim(PString))
	b := Union(Prim(PInt), Prim(PBool))
	if a.Equal(b) {
		t.Error("Union(Int, String) should not equal Union(Int, Bool)")
	}
}

func TestKindOf(t *testing.T) {
	cases := map[value.Kind]Primitive{
		value.KindString: PString,
		value.KindInt:    PInt,
		value.KindFloat:  PFloat,
		value.KindBool:   PBool,
	}
	for k, want := range cases {
		if got := KindOf(k); got.prim != want {
			t.Errorf("KindOf(%v).prim = %v, want %v", k, got.prim, want)
		}
	}
}

func TestInferAttributeType(t *testing.T) {
	if InferAttributeType(value.KindString) != Categorical {
		t.Error("String should infer as Categorical")
	}
	if InferAttributeType(value.KindInt) != Continuous {
		t.Error("Int should infer as Continuous")
	}
	if InferAttributeType(value.KindDateTime) != Temporal {
		t.Error("DateTime should infer as Temporal")
	}
	if InferAttributeType(value.KindBool) != Unstructured {
		t.Error("Bool should infer as Unstructured")
	}
}

func TestStringRendering(t *testing.T) {
	if Prim(PInt).String() != "Int" {
		t.Errorf("Prim(PInt).String() = %q, want Int", Prim(PInt).String())
	}
	opt := Option(Prim(PString))
	if opt.String() != "Option<String>" {
		t.Errorf("Option(String).String() = %q, want Option<String>", opt.String())
	}
}
