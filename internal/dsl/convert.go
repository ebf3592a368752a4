package dsl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ritamzico/propgraph/internal/graphstore"
	"github.com/ritamzico/propgraph/internal/query"
	"github.com/ritamzico/propgraph/internal/value"
	propgraph "github.com/ritamzico/propgraph"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func validateIdentifier(name, kind string) error {
	if !validIdentifier.MatchString(name) {
		return SyntaxError{
			Kind:    "InvalidIdentifier",
			Message: fmt.Sprintf("%s identifier %q is invalid: must start with a letter or underscore and contain only letters, digits, and underscores", kind, name),
		}
	}
	return nil
}

// convertGrammar dispatches the top-level AST node to either a Statement
// (mutation, executed eagerly) or a Query (read, executed against a live
// graph and returning a Result).
func convertGrammar(ast *Grammar) (any, error) {
	if ast.Statement != nil {
		return convertStatement(ast.Statement)
	}
	if ast.Query != nil {
		return convertQueryAST(ast.Query), nil
	}
	return nil, SyntaxError{Kind: "InvalidSyntax", Message: "empty input"}
}

func convertStatement(ast *StatementAST) (Statement, error) {
	if ast.Create != nil {
		return convertCreate(ast.Create)
	}
	return convertDelete(ast.Delete)
}

func convertCreate(ast *CreateAST) (Statement, error) {
	if ast.Node != nil {
		n := ast.Node
		if err := validateIdentifier(n.ID, "node"); err != nil {
			return nil, err
		}
		return &CreateNodeStatement{
			ID:     n.ID,
			Groups: n.Groups,
			Props:  convertProps(n.Props),
		}, nil
	}

	e := ast.Edge
	if err := validateIdentifier(e.From, "node"); err != nil {
		return nil, err
	}
	if err := validateIdentifier(e.To, "node"); err != nil {
		return nil, err
	}
	return &CreateEdgeStatement{
		From:   e.From,
		To:     e.To,
		Groups: e.Groups,
		Props:  convertProps(e.Props),
	}, nil
}

func convertProps(props []*PropAST) map[string]value.Value {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]value.Value, len(props))
	for _, p := range props {
		out[p.Key] = convertValueLiteral(p.Value)
	}
	return out
}

func convertValueLiteral(v *PropValueAST) value.Value {
	switch {
	case v.Str != nil:
		return value.String(strings.Trim(*v.Str, "\""))
	case v.Float != nil:
		return value.Float(*v.Float)
	case v.Int != nil:
		return value.Int(*v.Int)
	case v.True:
		return value.Bool(true)
	case v.False:
		return value.Bool(false)
	default:
		return value.Null()
	}
}

func convertDelete(ast *DeleteAST) (Statement, error) {
	if ast.Node != nil {
		return &DeleteNodeStatement{ID: ast.Node.ID}, nil
	}
	return &DeleteEdgeStatement{Index: ast.Edge.Index}, nil
}

// Query is a parsed read, ready to execute against a live graph.
type Query interface {
	Execute(g *propgraph.PGraph) (Result, error)
}

func convertQueryAST(ast *QueryAST) Query {
	if ast.Nodes != nil {
		return &nodesQuery{read: ast.Nodes}
	}
	return &edgesQuery{read: ast.Edges}
}

type nodesQuery struct{ read *ReadAST }

func (q *nodesQuery) Execute(g *propgraph.PGraph) (Result, error) {
	type outcome struct {
		res Result
		err error
	}
	out := query.QueryNodes(func(n *query.NodeOperand) outcome {
		if err := applyConditions[graphstore.NodeIndex](n.EntityOperand, q.read.Where); err != nil {
			return outcome{err: err}
		}
		if q.read.GroupBy != nil {
			res, err := projectGrouped(g.Context(), n.GroupBy(*q.read.GroupBy), q.read.Return)
			return outcome{res: res, err: err}
		}
		res, err := projectEntity(g.Context(), n.EntityOperand, q.read.Return)
		return outcome{res: res, err: err}
	})
	return out.res, out.err
}

type edgesQuery struct{ read *ReadAST }

func (q *edgesQuery) Execute(g *propgraph.PGraph) (Result, error) {
	type outcome struct {
		res Result
		err error
	}
	out := query.QueryEdges(func(e *query.EdgeOperand) outcome {
		if err := applyConditions[graphstore.EdgeIndex](e.EntityOperand, q.read.Where); err != nil {
			return outcome{err: err}
		}
		if q.read.GroupBy != nil {
			res, err := projectGrouped(g.Context(), e.GroupBy(*q.read.GroupBy), q.read.Return)
			return outcome{res: res, err: err}
		}
		res, err := projectEntity(g.Context(), e.EntityOperand, q.read.Return)
		return outcome{res: res, err: err}
	})
	return out.res, out.err
}

// applyConditions narrows the entity operand in place, one predicate per
// WHERE clause conjunct, by pulling the named attribute's ValueStream and
// pushing the matching comparison/string predicate onto it.
func applyConditions[T comparable](e *query.EntityOperand[T], conds []*ConditionAST) error {
	for _, c := range conds {
		stream := e.Attribute(c.Attribute)
		x := convertValueLiteral(c.Value)
		switch strings.ToUpper(c.Op) {
		case "==":
			stream.EqualTo(x)
		case "!=":
			stream.NotEqualTo(x)
		case ">":
			stream.GreaterThan(x)
		case ">=":
			stream.GreaterThanOrEqualTo(x)
		case "<":
			stream.LessThan(x)
		case "<=":
			stream.LessThanOrEqualTo(x)
		case "CONTAINS":
			stream.Contains(x)
		case "STARTS_WITH":
			stream.StartsWith(x)
		case "ENDS_WITH":
			stream.EndsWith(x)
		default:
			return SyntaxError{Kind: "InvalidOperator", Message: fmt.Sprintf("unknown comparison operator %q", c.Op)}
		}
	}
	return nil
}

// projectEntity evaluates the RETURN clause against an ungrouped entity
// stream, producing either the raw values it projects or a single scalar
// aggregate.
func projectEntity[T comparable](ctx *query.Context, e *query.EntityOperand[T], proj *ProjectionAST) (Result, error) {
	switch {
	case proj.Index:
		vals, err := e.Index().Evaluate(ctx)
		return ValueResult{Values: vals}, err
	case proj.Attr != nil:
		vals, err := e.Attribute(*proj.Attr).Evaluate(ctx)
		return ValueResult{Values: vals}, err
	case proj.Count:
		v, err := e.Index().Count().Evaluate(ctx)
		return ValueResult{Values: []value.Value{v}}, err
	case proj.Aggregate != nil:
		if proj.Field == nil {
			return nil, SyntaxError{Kind: "InvalidProjection", Message: fmt.Sprintf("%s requires an attribute argument", *proj.Aggregate)}
		}
		scalar, err := aggregateScalar(e.Attribute(*proj.Field), *proj.Aggregate)
		if err != nil {
			return nil, err
		}
		v, err := scalar.Evaluate(ctx)
		return ValueResult{Values: []value.Value{v}}, err
	default:
		return nil, SyntaxError{Kind: "InvalidProjection", Message: "empty RETURN clause"}
	}
}

func aggregateScalar[T comparable](stream *query.ValueStream[T], name string) (*query.ScalarOperand[T], error) {
	switch strings.ToUpper(name) {
	case "SUM":
		return stream.Sum(), nil
	case "MEAN":
		return stream.Mean(), nil
	case "MEDIAN":
		return stream.Median(), nil
	case "MODE":
		return stream.Mode(), nil
	case "STD":
		return stream.Std(), nil
	case "VAR":
		return stream.Var(), nil
	case "MAX":
		return stream.Max(), nil
	case "MIN":
		return stream.Min(), nil
	case "RANDOM":
		return stream.Random(), nil
	default:
		return nil, SyntaxError{Kind: "InvalidAggregate", Message: fmt.Sprintf("unknown aggregate %q", name)}
	}
}

// projectGrouped evaluates the RETURN clause against a grouped entity
// stream. INDEX/ATTR projections are unsupported in a grouped RETURN since
// they don't reduce a partition to one value; only COUNT and the numeric
// aggregates do.
func projectGrouped[T comparable](ctx *query.Context, g *query.GroupedEntityOperand[T], proj *ProjectionAST) (Result, error) {
	var scalar interface {
		Evaluate(ctx *query.Context) ([]query.GroupResult, error)
	}
	switch {
	case proj.Count:
		scalar = g.Index().Count()
	case proj.Aggregate != nil:
		if proj.Field == nil {
			return nil, SyntaxError{Kind: "InvalidProjection", Message: fmt.Sprintf("%s requires an attribute argument", *proj.Aggregate)}
		}
		s, err := aggregateGroupedScalar(g.Attribute(*proj.Field), *proj.Aggregate)
		if err != nil {
			return nil, err
		}
		scalar = s
	default:
		return nil, SyntaxError{Kind: "InvalidProjection", Message: "GROUP BY requires a COUNT or numeric aggregate RETURN clause"}
	}
	rows, err := scalar.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	query.SortByKey(rows)
	return GroupResult{Rows: rows}, nil
}

func aggregateGroupedScalar[T comparable](stream *query.GroupedValueStream[T], name string) (*query.GroupedScalarOperand[T], error) {
	switch strings.ToUpper(name) {
	case "SUM":
		return stream.Sum(), nil
	case "MEAN":
		return stream.Mean(), nil
	case "MEDIAN":
		return stream.Median(), nil
	case "MODE":
		return stream.Mode(), nil
	case "STD":
		return stream.Std(), nil
	case "VAR":
		return stream.Var(), nil
	case "MAX":
		return stream.Max(), nil
	case "MIN":
		return stream.Min(), nil
	case "RANDOM":
		return stream.Random(), nil
	default:
		return nil, SyntaxError{Kind: "InvalidAggregate", Message: fmt.Sprintf("unknown aggregate %q", name)}
	}
}
