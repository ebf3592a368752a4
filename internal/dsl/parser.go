package dsl

import (
	"fmt"

	propgraph "github.com/ritamzico/propgraph"
)

// Parser evaluates DSL lines against a live graph, mirroring the teacher's
// session-graph-per-parser shape but dropping the probabilistic inference
// engine: mutations execute directly against the graph and reads go
// through the query engine instead of InferenceEngine.Execute.
type Parser struct {
	Graph *propgraph.PGraph
}

func CreateParser(g *propgraph.PGraph) Parser {
	return Parser{Graph: g}
}

// ParseLine parses and executes a single statement or query. Statements
// return a nil Result on success; queries return whatever Result their
// RETURN clause produces.
func (p Parser) ParseLine(input string) (Result, error) {
	ast, err := dslParser.ParseString("", input)
	if err != nil {
		return nil, SyntaxError{Kind: "ParseError", Message: err.Error()}
	}

	node, err := convertGrammar(ast)
	if err != nil {
		return nil, err
	}

	switch n := node.(type) {
	case Statement:
		return nil, n.Execute(p.Graph)

	case Query:
		return n.Execute(p.Graph)

	default:
		return nil, fmt.Errorf("internal error: unknown AST node %T", n)
	}
}
