package dsl

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// dslLexer tokenizes the property-graph query language: CREATE/DELETE
// mutation statements and NODES/EDGES read queries, redesigned from the
// teacher's probabilistic-graph vocabulary (CREATE ... PROB, MAXPATH,
// TOPK, REACHABILITY) onto the property-graph operator tree this store
// actually evaluates. The participle lexer/grammar/parser/convert
// structure itself is kept from the teacher almost verbatim.
var dslLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(CREATE|DELETE|NODE|EDGE|NODES|EDGES|FROM|TO|IN|GROUP|BY|WHERE|RETURN|AND|INDEX|ATTR|COUNT|SUM|MEAN|MEDIAN|MODE|STD|VAR|MAX|MIN|RANDOM|CONTAINS|STARTS_WITH|ENDS_WITH|TRUE|FALSE|NULL)\b`},
	{Name: "Op", Pattern: `==|!=|>=|<=|>|<`},
	{Name: "Float", Pattern: `-?\d+\.\d+`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "String", Pattern: `"([^"\\]|\\.)*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[(),{}:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Grammar is the top-level AST node: either a mutation Statement or a
// read Query.
type Grammar struct {
	Statement *StatementAST `parser:"  @@"`
	Query     *QueryAST     `parser:"| @@"`
}

// StatementAST dispatches on CREATE or DELETE.
type StatementAST struct {
	Create *CreateAST `parser:"\"CREATE\" @@"`
	Delete *DeleteAST `parser:"| \"DELETE\" @@"`
}

// CreateAST dispatches on NODE or EDGE.
type CreateAST struct {
	Node *CreateNodeAST `parser:"\"NODE\" @@"`
	Edge *CreateEdgeAST `parser:"| \"EDGE\" @@"`
}

// CreateNodeAST: <id> [IN GROUP <g> (, <g>)*] [{ props }]
type CreateNodeAST struct {
	ID     string     `parser:"@Ident"`
	Groups []string   `parser:"( \"IN\" \"GROUP\" @Ident ( \",\" @Ident )* )?"`
	Props  []*PropAST `parser:"( \"{\" @@ ( \",\" @@ )* \"}\" )?"`
}

// CreateEdgeAST: FROM <a> TO <b> [IN GROUP <g> (, <g>)*] [{ props }]
type CreateEdgeAST struct {
	From   string     `parser:"\"FROM\" @Ident"`
	To     string     `parser:"\"TO\" @Ident"`
	Groups []string   `parser:"( \"IN\" \"GROUP\" @Ident ( \",\" @Ident )* )?"`
	Props  []*PropAST `parser:"( \"{\" @@ ( \",\" @@ )* \"}\" )?"`
}

// PropAST: <key> : <value>
type PropAST struct {
	Key   string        `parser:"@Ident \":\""`
	Value *PropValueAST `parser:"@@"`
}

// PropValueAST: a typed attribute value literal.
type PropValueAST struct {
	Str   *string  `parser:"  @String"`
	Float *float64 `parser:"| @Float"`
	Int   *int64   `parser:"| @Int"`
	True  bool     `parser:"| @\"TRUE\""`
	False bool     `parser:"| @\"FALSE\""`
	Null  bool     `parser:"| @\"NULL\""`
}

// DeleteAST dispatches on NODE or EDGE.
type DeleteAST struct {
	Node *DeleteNodeAST `parser:"\"NODE\" @@"`
	Edge *DeleteEdgeAST `parser:"| \"EDGE\" @@"`
}

// DeleteNodeAST: <id>
type DeleteNodeAST struct {
	ID string `parser:"@Ident"`
}

// DeleteEdgeAST: <edge index>
type DeleteEdgeAST struct {
	Index int64 `parser:"@Int"`
}

// QueryAST dispatches on NODES or EDGES.
type QueryAST struct {
	Nodes *ReadAST `parser:"\"NODES\" @@"`
	Edges *ReadAST `parser:"| \"EDGES\" @@"`
}

// ReadAST: [WHERE <cond> (AND <cond>)*] [GROUP BY <attr>] RETURN <proj>
type ReadAST struct {
	Where     []*ConditionAST `parser:"( \"WHERE\" @@ ( \"AND\" @@ )* )?"`
	GroupBy   *string         `parser:"( \"GROUP\" \"BY\" @Ident )?"`
	Return    *ProjectionAST  `parser:"\"RETURN\" @@"`
}

// ConditionAST: <attr> <op> <value>, where op is a comparison operator or
// one of the string predicates CONTAINS/STARTS_WITH/ENDS_WITH.
type ConditionAST struct {
	Attribute string        `parser:"@Ident"`
	Op        string        `parser:"( @Op | @\"CONTAINS\" | @\"STARTS_WITH\" | @\"ENDS_WITH\" )"`
	Value     *PropValueAST `parser:"@@"`
}

// ProjectionAST: INDEX | ATTR(<name>) | <aggregate>(<name>)? — COUNT takes
// no argument, every other aggregate takes an attribute name.
type ProjectionAST struct {
	Index     bool    `parser:"(  @\"INDEX\""`
	Attr      *string `parser:" | \"ATTR\" \"(\" @Ident \")\""`
	Count     bool    `parser:" | @\"COUNT\""`
	Aggregate *string `parser:" | @( \"SUM\" | \"MEAN\" | \"MEDIAN\" | \"MODE\" | \"STD\" | \"VAR\" | \"MAX\" | \"MIN\" | \"RANDOM\" )"`
	Field     *string `parser:" \"(\" @Ident \")\" )?"`
}

// Parser singleton built from the grammar, matching the teacher's
// package-level dslParser.
var dslParser = participle.MustBuild[Grammar](
	participle.Lexer(dslLexer),
	participle.CaseInsensitive("Keyword"),
	participle.Elide("Whitespace"),
)
