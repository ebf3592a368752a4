// Package errs defines the single error taxonomy shared by every propgraph
// package, mirroring the teacher's Kind+Message pattern (graph.GraphError,
// query.QueryError, dsl.SyntaxError) collapsed into one type.
package errs

import "fmt"

type Kind string

const (
	KindIndex      Kind = "Index"
	KindKey        Kind = "Key"
	KindConversion Kind = "Conversion"
	KindAssertion  Kind = "Assertion"
	KindSchema     Kind = "Schema"
	KindQuery      Kind = "Query"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("propgraph error (%v): %v", e.Kind, e.Message)
}

func New(kind Kind, format string, args ...any) Error {
	return Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Index(format string, args ...any) error {
	return New(KindIndex, format, args...)
}

func Key(format string, args ...any) error {
	return New(KindKey, format, args...)
}

func Conversion(format string, args ...any) error {
	return New(KindConversion, format, args...)
}

func Assertion(format string, args ...any) error {
	return New(KindAssertion, format, args...)
}

func Schema(format string, args ...any) error {
	return New(KindSchema, format, args...)
}

func Query(format string, args ...any) error {
	return New(KindQuery, format, args...)
}
