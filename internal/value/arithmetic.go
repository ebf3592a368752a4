package value

import (
	"math"
	"time"

	"github.com/ritamzico/propgraph/internal/errs"
)

// Arithmetic coercion mirrors datatypes/attribute.rs: Int op Int stays Int,
// any Float operand widens the result to Float, Duration only combines with
// Duration, String + String concatenates, and every other pairing is a
// conversion error.

func (v Value) Add(other Value) (Value, error) { return arith(v, other, "add") }
func (v Value) Sub(other Value) (Value, error) { return arith(v, other, "sub") }
func (v Value) Mul(other Value) (Value, error) { return arith(v, other, "mul") }
func (v Value) Pow(other Value) (Value, error) { return arith(v, other, "pow") }
func (v Value) Mod(other Value) (Value, error) { return arith(v, other, "mod") }

func arith(a, b Value, op string) (Value, error) {
	if op == "add" && a.Kind == KindString && b.Kind == KindString {
		return String(a.Str + b.Str), nil
	}

	if a.Kind == KindDuration && b.Kind == KindDuration {
		return Duration(time.Duration(applyOp(op, float64(a.Dur), float64(b.Dur)))), nil
	}

	if a.Kind == KindInt && b.Kind == KindInt {
		if op == "pow" {
			return Int(int64(math.Pow(float64(a.I), float64(b.I)))), nil
		}
		if op == "mod" {
			if b.I == 0 {
				return Value{}, errs.Conversion("modulo by zero")
			}
			return Int(a.I % b.I), nil
		}
		return Int(int64(applyOp(op, float64(a.I), float64(b.I)))), nil
	}

	af, aok := a.AsFloat()
	bf, bok := b.AsFloat()
	if !aok || !bok || a.Kind == KindDuration || b.Kind == KindDuration {
		return Value{}, errs.Conversion("cannot apply %s between %v and %v", op, a.Kind, b.Kind)
	}

	return Float(applyOp(op, af, bf)), nil
}

func applyOp(op string, a, b float64) float64 {
	switch op {
	case "add":
		return a + b
	case "sub":
		return a - b
	case "mul":
		return a * b
	case "pow":
		return math.Pow(a, b)
	case "mod":
		return math.Mod(a, b)
	default:
		return 0
	}
}

func (v Value) Abs() (Value, error) {
	switch v.Kind {
	case KindInt:
		if v.I < 0 {
			return Int(-v.I), nil
		}
		return v, nil
	case KindFloat:
		return Float(math.Abs(v.F)), nil
	case KindDuration:
		if v.Dur < 0 {
			return Duration(-v.Dur), nil
		}
		return v, nil
	default:
		return Value{}, errs.Conversion("cannot take abs of %v", v.Kind)
	}
}
