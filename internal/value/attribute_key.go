package value

import "fmt"

type KeyKind int

const (
	KeyString KeyKind = iota
	KeyInt
)

// AttributeKey is the polymorphic String|Int key used both as an attribute
// name and, via NodeIndex/EdgeIndex aliasing elsewhere, as an entity index.
// It carries only comparable fields so it can be used directly as a Go map
// key, unlike Value (which carries a time.Time).
type AttributeKey struct {
	Kind KeyKind
	S    string
	I    int64
}

func KeyFromString(s string) AttributeKey { return AttributeKey{Kind: KeyString, S: s} }
func KeyFromInt(i int64) AttributeKey     { return AttributeKey{Kind: KeyInt, I: i} }

func (k AttributeKey) String() string {
	if k.Kind == KeyInt {
		return fmt.Sprintf("%d", k.I)
	}
	return k.S
}

func (k AttributeKey) Value() Value {
	if k.Kind == KeyInt {
		return Int(k.I)
	}
	return String(k.S)
}

func (k AttributeKey) Compare(other AttributeKey) Ordering {
	return k.Value().Compare(other.Value())
}

func (k AttributeKey) Equal(other AttributeKey) bool {
	return k.Kind == other.Kind && k.S == other.S && k.I == other.I
}
