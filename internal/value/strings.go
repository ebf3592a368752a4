package value

import (
	"strings"

	"github.com/ritamzico/propgraph/internal/errs"
)

func (v Value) StartsWith(prefix Value) (bool, error) {
	a, b, err := stringPair(v, prefix)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(a, b), nil
}

func (v Value) EndsWith(suffix Value) (bool, error) {
	a, b, err := stringPair(v, suffix)
	if err != nil {
		return false, err
	}
	return strings.HasSuffix(a, b), nil
}

func (v Value) Contains(needle Value) (bool, error) {
	a, b, err := stringPair(v, needle)
	if err != nil {
		return false, err
	}
	return strings.Contains(a, b), nil
}

func (v Value) Trim() (Value, error)      { return stringMap(v, strings.TrimSpace) }
func (v Value) TrimStart() (Value, error) { return stringMap(v, func(s string) string { return strings.TrimLeft(s, " \t\n\r") }) }
func (v Value) TrimEnd() (Value, error)   { return stringMap(v, func(s string) string { return strings.TrimRight(s, " \t\n\r") }) }
func (v Value) Lowercase() (Value, error) { return stringMap(v, strings.ToLower) }
func (v Value) Uppercase() (Value, error) { return stringMap(v, strings.ToUpper) }

// Slice returns the substring [start, end), clamped to the string's bounds,
// mirroring graphrecords' forgiving slice semantics rather than panicking on
// an out-of-range index.
func (v Value) Slice(start, end int) (Value, error) {
	if v.Kind != KindString {
		return Value{}, errs.Conversion("slice requires a String value, got %v", v.Kind)
	}
	runes := []rune(v.Str)
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if end < 0 {
		end = 0
	}
	if start > end {
		start = end
	}
	return String(string(runes[start:end])), nil
}

func stringPair(a, b Value) (string, string, error) {
	if a.Kind != KindString || b.Kind != KindString {
		return "", "", errs.Conversion("expected two String values, got %v and %v", a.Kind, b.Kind)
	}
	return a.Str, b.Str, nil
}

func stringMap(v Value, f func(string) string) (Value, error) {
	if v.Kind != KindString {
		return Value{}, errs.Conversion("expected a String value, got %v", v.Kind)
	}
	return String(f(v.Str)), nil
}
