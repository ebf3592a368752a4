// Package value implements the typed attribute value model: a small tagged
// union plus a three-valued ordering, ported from the semantics of
// medmodels/graphrecords' GraphRecordAttribute (datatypes/attribute.rs).
package value

import (
	"fmt"
	"time"
)

type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindDateTime
	KindDuration
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindDateTime:
		return "DateTime"
	case KindDuration:
		return "Duration"
	default:
		return "Null"
	}
}

// Value is a tagged attribute value. Exactly one field is meaningful for a
// given Kind; the rest hold their zero value.
type Value struct {
	Kind Kind
	Str  string
	I    int64
	F    float64
	B    bool
	T    time.Time
	Dur  time.Duration
}

func Null() Value                    { return Value{Kind: KindNull} }
func String(s string) Value          { return Value{Kind: KindString, Str: s} }
func Int(i int64) Value              { return Value{Kind: KindInt, I: i} }
func Float(f float64) Value          { return Value{Kind: KindFloat, F: f} }
func Bool(b bool) Value              { return Value{Kind: KindBool, B: b} }
func DateTime(t time.Time) Value     { return Value{Kind: KindDateTime, T: t} }
func Duration(d time.Duration) Value { return Value{Kind: KindDuration, Dur: d} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsFloat reports the numeric value of an Int, Float or Duration, widening
// Int to Float, for use in arithmetic that must mix kinds.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.I), true
	case KindFloat:
		return v.F, true
	case KindDuration:
		return float64(v.Dur), true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindFloat:
		return fmt.Sprintf("%g", v.F)
	case KindBool:
		return fmt.Sprintf("%t", v.B)
	case KindDateTime:
		return v.T.Format(time.RFC3339)
	case KindDuration:
		return v.Dur.String()
	default:
		return "null"
	}
}
