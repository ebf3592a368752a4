// Package datatype implements the DataType lattice (Union/Option/Any) and
// its evaluate() predicate, ported from datatypes/mod.rs.
package datatype

import (
	"github.com/ritamzico/propgraph/internal/value"
)

type Primitive int

const (
	PString Primitive = iota
	PInt
	PFloat
	PBool
	PDateTime
	PDuration
	PNull
	PAny
	pUnion
	pOption
)

// DataType is either a primitive, Any (matches everything), Option(inner)
// (matches inner or Null), or Union(left, right) (matches either branch,
// with commutative equality).
type DataType struct {
	prim  Primitive
	inner *DataType
	left  *DataType
	right *DataType
}

func Prim(p Primitive) DataType { return DataType{prim: p} }

func Any() DataType { return DataType{prim: PAny} }

func Option(inner DataType) DataType {
	return DataType{prim: pOption, inner: &inner}
}

func Union(a, b DataType) DataType {
	return DataType{prim: pUnion, left: &a, right: &b}
}

func KindOf(k value.Kind) DataType {
	switch k {
	case value.KindString:
		return Prim(PString)
	case value.KindInt:
		return Prim(PInt)
	case value.KindFloat:
		return Prim(PFloat)
	case value.KindBool:
		return Prim(PBool)
	case value.KindDateTime:
		return Prim(PDateTime)
	case value.KindDuration:
		return Prim(PDuration)
	default:
		return Prim(PNull)
	}
}

// Evaluate reports whether actual's kind is accepted by the expected
// DataType, short-circuiting on Any, unfolding Option to also accept Null,
// and unfolding Union by disjunction — never erroring, matching mod.rs'
// evaluate().
func Evaluate(expected DataType, actual value.Kind) bool {
	switch expected.prim {
	case PAny:
		return true
	case pOption:
		return actual == value.KindNull || Evaluate(*expected.inner, actual)
	case pUnion:
		return Evaluate(*expected.left, actual) || Evaluate(*expected.right, actual)
	default:
		return KindOf(actual).prim == expected.prim
	}
}

// Equal implements Union-commutative structural equality: Union(a,b) ==
// Union(b,a), matching mod.rs' PartialEq impl.
func (d DataType) Equal(other DataType) bool {
	if d.prim != other.prim {
		return false
	}
	switch d.prim {
	case pOption:
		return d.inner.Equal(*other.inner)
	case pUnion:
		sameOrder := d.left.Equal(*other.left) && d.right.Equal(*other.right)
		swapped := d.left.Equal(*other.right) && d.right.Equal(*other.left)
		return sameOrder || swapped
	default:
		return true
	}
}

func (d DataType) String() string {
	switch d.prim {
	case PString:
		return "String"
	case PInt:
		return "Int"
	case PFloat:
		return "Float"
	case PBool:
		return "Bool"
	case PDateTime:
		return "DateTime"
	case PDuration:
		return "Duration"
	case PNull:
		return "Null"
	case PAny:
		return "Any"
	case pOption:
		return "Option<" + d.inner.String() + ">"
	case pUnion:
		return "Union<" + d.left.String() + ", " + d.right.String() + ">"
	default:
		return "Unknown"
	}
}

// AttributeType classifies how a typed attribute should be treated by
// downstream statistics/overview reporting, independent of its DataType.
type AttributeType int

const (
	Unstructured AttributeType = iota
	Categorical
	Continuous
	Temporal
)

func (t AttributeType) String() string {
	switch t {
	case Categorical:
		return "Categorical"
	case Continuous:
		return "Continuous"
	case Temporal:
		return "Temporal"
	default:
		return "Unstructured"
	}
}

// AttributeDataType pairs a DataType with the AttributeType used to infer
// it, per the schema's per-attribute entry.
type AttributeDataType struct {
	DataType      DataType
	AttributeType AttributeType
}

// InferAttributeType picks the AttributeType a freshly observed value widens
// into: strings are Categorical, numerics Continuous, datetimes Temporal,
// everything else (bools, durations, null) Unstructured.
func InferAttributeType(k value.Kind) AttributeType {
	switch k {
	case value.KindString:
		return Categorical
	case value.KindInt, value.KindFloat:
		return Continuous
	case value.KindDateTime:
		return Temporal
	default:
		return Unstructured
	}
}
