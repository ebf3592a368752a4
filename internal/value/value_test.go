package value

import "testing"

func TestCompareSameKind(t *testing.T) {
	if Int(1).Compare(Int(2)) != Less {
		t.Error("1 should compare Less than 2")
	}
	if Int(2).Compare(Int(1)) != Greater {
		t.Error("2 should compare Greater than 1")
	}
	if Int(1).Compare(Int(1)) != Equal {
		t.Error("1 should compare Equal to 1")
	}
}

func TestCompareIntFloatWidens(t *testing.T) {
	if Int(2).Compare(Float(2.0)) != Equal {
		t.Error("Int(2) should compare Equal to Float(2.0)")
	}
	if Int(1).Compare(Float(1.5)) != Less {
		t.Error("Int(1) should compare Less than Float(1.5)")
	}
}

func TestCompareCrossKindIncomparable(t *testing.T) {
	if String("x").Compare(Bool(true)) != Incomparable {
		t.Error("String and Bool should be Incomparable")
	}
}

func TestCompareNull(t *testing.T) {
	if Null().Compare(Null()) != Equal {
		t.Error("Null should compare Equal to Null")
	}
	if Null().Compare(Int(1)) != Incomparable {
		t.Error("Null should be Incomparable to a non-null value")
	}
}

func TestAddWidensToFloat(t *testing.T) {
	v, err := Int(1).Add(Float(2.5))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if v.Kind != KindFloat || v.F != 3.5 {
		t.Errorf("Add = %v, want Float(3.5)", v)
	}
}

func TestAddIntStaysInt(t *testing.T) {
	v, err := Int(1).Add(Int(2))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if v.Kind != KindInt || v.I != 3 {
		t.Errorf("Add = %v, want Int(3)", v)
	}
}

func TestAddConcatenatesStrings(t *testing.T) {
	v, err := String("foo").Add(String("bar"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if v.Kind != KindString || v.Str != "foobar" {
		t.Errorf("Add = %v, want String(\"foobar\")", v)
	}
}

func TestModByZeroErrors(t *testing.T) {
	if _, err := Int(1).Mod(Int(0)); err == nil {
		t.Error("expected an error for mod by zero")
	}
}

func TestAbs(t *testing.T) {
	v, err := Int(-5).Abs()
	if err != nil {
		t.Fatalf("Abs failed: %v", err)
	}
	if v.I != 5 {
		t.Errorf("Abs(-5) = %d, want 5", v.I)
	}
}

func TestStringPredicates(t *testing.T) {
	ok, err := String("hello world").Contains(String("world"))
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !ok {
		t.Error("expected 'hello world' to contain 'world'")
	}

	ok, err = String("hello").StartsWith(String("he"))
	if err != nil {
		t.Fatalf("StartsWith failed: %v", err)
	}
	if !ok {
		t.Error("expected 'hello' to start with 'he'")
	}
}

func TestSliceClampsBounds(t *testing.T) {
	v, err := String("hello").Slice(-2, 100)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if v.Str != "hello" {
		t.Errorf("Slice(-2, 100) = %q, want %q", v.Str, "hello")
	}
}

func TestKeyFromStringRoundTrip(t *testing.T) {
	k := KeyFromString("A")
	if k.String() != "A" {
		t.Errorf("key.String() = %q, want A", k.String())
	}
	if k.Value().Kind != KindString {
		t.Errorf("key.Value().Kind = %v, want KindString", k.Value().Kind)
	}
}

func TestKeyEqual(t *testing.T) {
	if !KeyFromString("A").Equal(KeyFromString("A")) {
		t.Error("identical string keys should be equal")
	}
	if KeyFromString("A").Equal(KeyFromInt(0)) {
		t.Error("a string key should not equal an int key")
	}
}
