package gocalc

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The grammar below accepts the whole expression language, not only the
// arithmetic subset. Narrowing happens in the evaluator, by node kind.

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n\f]+`},
	{Name: "String", Pattern: `[rRbBuUfF]{0,2}(?:"""(?:\\(?s:.)|[^\\])*?"""|'''(?:\\(?s:.)|[^\\])*?'''|"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*')`},
	{Name: "Number", Pattern: `0[xX](?:_?[0-9a-fA-F])+|0[oO](?:_?[0-7])+|0[bB](?:_?[01])+|(?:\d(?:_?\d)*(?:\.(?:\d(?:_?\d)*)?)?|\.\d(?:_?\d)*)(?:[eE][+-]?\d(?:_?\d)*)?[jJ]?`},
	{Name: "Keyword", Pattern: `(?:and|or|not|in|is|if|else|for|lambda|True|False|None)\b`},
	{Name: "Ident", Pattern: `[_\p{L}][_\p{L}\p{N}]*`},
	{Name: "Operator", Pattern: `\.\.\.|\*\*|//|<<|>>|<=|>=|==|!=|:=|[-+*/%@&|^~<>()\[\]{},:.=]`},
})

var exprParser = participle.MustBuild[exprInput](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

type exprInput struct {
	Pos   lexer.Position
	Head  *starItem   `@@`
	Tail  []*starItem `( "," @@ )*`
	Comma bool        `@","?`
}

// starItem is one element of a tuple, list or set display.
type starItem struct {
	Pos   lexer.Position
	Star  *bitOrExpr   `  "*" @@`
	Value *ternaryExpr `| @@`
}

type ternaryExpr struct {
	Pos    lexer.Position
	Lambda *lambdaExpr  `  @@`
	Named  *namedExpr   `| @@`
	Body   *orExpr      `| @@`
	Cond   *orExpr      `  ( "if" @@`
	Else   *ternaryExpr `    "else" @@ )?`
}

type namedExpr struct {
	Pos    lexer.Position
	Target string       `@Ident ":="`
	Value  *ternaryExpr `@@`
}

type lambdaExpr struct {
	Pos    lexer.Position
	Params []*lambdaParam `"lambda" ( @@ ( "," @@ )* )? ":"`
	Body   *ternaryExpr   `@@`
}

type lambdaParam struct {
	Pos     lexer.Position
	Star    string       `(  @( "*" | "**" )?`
	Name    string       `   @Ident`
	Default *ternaryExpr `   ( "=" @@ )?`
	Marker  string       `| @( "*" | "/" ) )`
}

type orExpr struct {
	Pos  lexer.Position
	Head *andExpr   `@@`
	Tail []*andExpr `( "or" @@ )*`
}

type andExpr struct {
	Pos  lexer.Position
	Head *notExpr   `@@`
	Tail []*notExpr `( "and" @@ )*`
}

type notExpr struct {
	Pos     lexer.Position
	Not     *notExpr        `  "not" @@`
	Compare *comparisonExpr `| @@`
}

type comparisonExpr struct {
	Head *bitOrExpr     `@@`
	Tail []*compareTail `@@*`
}

type compareTail struct {
	Pos   lexer.Position
	Op    []string   `( @( "<" | ">" | "==" | ">=" | "<=" | "!=" | "in" ) | @"not" @"in" | @"is" @"not"? )`
	Right *bitOrExpr `@@`
}

type bitOrExpr struct {
	Head *bitXorExpr  `@@`
	Tail []*bitOrTail `@@*`
}

type bitOrTail struct {
	Pos   lexer.Position
	Op    string      `@"|"`
	Right *bitXorExpr `@@`
}

type bitXorExpr struct {
	Head *bitAndExpr   `@@`
	Tail []*bitXorTail `@@*`
}

type bitXorTail struct {
	Pos   lexer.Position
	Op    string      `@"^"`
	Right *bitAndExpr `@@`
}

type bitAndExpr struct {
	Head *shiftExpr    `@@`
	Tail []*bitAndTail `@@*`
}

type bitAndTail struct {
	Pos   lexer.Position
	Op    string     `@"&"`
	Right *shiftExpr `@@`
}

type shiftExpr struct {
	Head *arithExpr   `@@`
	Tail []*shiftTail `@@*`
}

type shiftTail struct {
	Pos   lexer.Position
	Op    string     `@( "<<" | ">>" )`
	Right *arithExpr `@@`
}

type arithExpr struct {
	Head *termExpr    `@@`
	Tail []*arithTail `@@*`
}

type arithTail struct {
	Pos   lexer.Position
	Op    string    `@( "+" | "-" )`
	Right *termExpr `@@`
}

type termExpr struct {
	Head *factorExpr `@@`
	Tail []*termTail `@@*`
}

type termTail struct {
	Pos   lexer.Position
	Op    string      `@( "*" | "/" | "//" | "%" | "@" )`
	Right *factorExpr `@@`
}

type factorExpr struct {
	Pos     lexer.Position
	Op      string      `(  @( "+" | "-" | "~" )`
	Operand *factorExpr `   @@ )`
	Power   *powerExpr  `| @@`
}

type powerExpr struct {
	Pos      lexer.Position
	Base     *primaryExpr `@@`
	Exponent *factorExpr  `( "**" @@ )?`
}

type primaryExpr struct {
	Pos      lexer.Position
	Atom     *atom      `@@`
	Trailers []*trailer `@@*`
}

type trailer struct {
	Pos       lexer.Position
	Call      bool           `  @"("`
	Args      []*argument    `  ( @@ ( "," @@ )* )?`
	Comma     bool           `  @","?`
	Comp      *comprehension `  @@? ")"`
	Subscript *subscript     `| "[" @@ "]"`
	Attribute *string        `| "." @Ident`
}

type argument struct {
	Pos     lexer.Position
	Star    string       `@( "*" | "**" )?`
	Keyword string       `( @Ident "=" )?`
	Value   *ternaryExpr `@@`
}

// subscript holds one or more comma separated items. An item may match
// nothing, which lowering turns into a trailing comma or an error.
type subscript struct {
	Pos   lexer.Position
	Items []*sliceItem `@@ ( "," @@ )*`
}

type sliceItem struct {
	Pos   lexer.Position
	Index *ternaryExpr  `@@?`
	Slice []*sliceBound `@@*`
}

type sliceBound struct {
	Colon bool         `@":"`
	Value *ternaryExpr `@@?`
}

type atom struct {
	Pos     lexer.Position
	Number  *string        `  @Number`
	Strings []string       `| @String @String*`
	Const   *string        `| @( "True" | "False" | "None" | "..." )`
	Name    *string        `| @Ident`
	Paren   *parenthesized `| @@`
	List    *listDisplay   `| @@`
	Brace   *braceDisplay  `| @@`
}

type parenthesized struct {
	Open  bool           `@"("`
	Items []*starItem    `( @@ ( "," @@ )* )?`
	Comma bool           `@","?`
	Comp  *comprehension `@@? ")"`
}

type listDisplay struct {
	Open  bool           `@"["`
	Items []*starItem    `( @@ ( "," @@ )* )?`
	Comma bool           `@","?`
	Comp  *comprehension `@@? "]"`
}

type braceDisplay struct {
	Open    bool           `@"{"`
	Entries []*braceItem   `( @@ ( "," @@ )* )?`
	Comma   bool           `@","?`
	Comp    *comprehension `@@? "}"`
}

type braceItem struct {
	Pos    lexer.Position
	Unpack *bitOrExpr   `  "**" @@`
	Star   *bitOrExpr   `| "*" @@`
	Key    *ternaryExpr `| @@`
	Value  *ternaryExpr `  ( ":" @@ )?`
}

type comprehension struct {
	Pos     lexer.Position
	Clauses []*forClause `@@ @@*`
}

type forClause struct {
	Pos     lexer.Position
	Targets []string  `"for" @Ident ( "," @Ident )* "in"`
	Iter    *orExpr   `@@`
	Conds   []*orExpr `( "if" @@ )*`
}

func parseTree(src string) (*exprInput, error) {
	return exprParser.ParseString("", src)
}
