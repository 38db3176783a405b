package gocalc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
)

type NodeType int

const (
	NodeExpression NodeType = iota
	NodeInt
	NodeFloat
	NodeImaginary
	NodeString
	NodeBytes
	NodeFString
	NodeBool
	NodeNone
	NodeEllipsis
	NodeName
	NodeBinOp
	NodeUnaryOp
	NodeBoolOp
	NodeCompare
	NodeIfExp
	NodeNamedExpr
	NodeLambda
	NodeCall
	NodeKeyword
	NodeStarred
	NodeAttribute
	NodeSubscript
	NodeSlice
	NodeTuple
	NodeList
	NodeListComp
	NodeGeneratorExp
	NodeSetComp
	NodeDictComp
	NodeComprehension
	NodeSet
	NodeDict
)

var nodeTypeNames = [...]string{
	NodeExpression:    "expression",
	NodeInt:           "int",
	NodeFloat:         "float",
	NodeImaginary:     "complex",
	NodeString:        "str",
	NodeBytes:         "bytes",
	NodeFString:       "f-string",
	NodeBool:          "bool",
	NodeNone:          "NoneType",
	NodeEllipsis:      "ellipsis",
	NodeName:          "name",
	NodeBinOp:         "binary operation",
	NodeUnaryOp:       "unary operation",
	NodeBoolOp:        "boolean operation",
	NodeCompare:       "comparison",
	NodeIfExp:         "conditional expression",
	NodeNamedExpr:     "named expression",
	NodeLambda:        "lambda",
	NodeCall:          "call",
	NodeKeyword:       "keyword argument",
	NodeStarred:       "starred",
	NodeAttribute:     "attribute",
	NodeSubscript:     "subscript",
	NodeSlice:         "slice",
	NodeTuple:         "tuple",
	NodeList:          "list",
	NodeListComp:      "list comprehension",
	NodeGeneratorExp:  "generator expression",
	NodeSetComp:       "set comprehension",
	NodeDictComp:      "dict comprehension",
	NodeComprehension: "comprehension",
	NodeSet:           "set",
	NodeDict:          "dict",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// Node is one element of a parsed expression. The meaning of v depends on t:
// the literal text for numbers and strings, the operator for BinOp and
// UnaryOp, the identifier for Name, Attribute, Keyword and NamedExpr. Dict
// children alternate key and value; a nil key marks a ** unpacking.
type Node struct {
	t    NodeType
	v    interface{}
	col  int
	kids []*Node
}

func (n *Node) Type() NodeType {
	return n.t
}

func (n *Node) Value() interface{} {
	return n.v
}

// Column is the 1-based column the node starts at.
func (n *Node) Column() int {
	return n.col
}

func (n *Node) Children() []*Node {
	return n.kids
}

// maxBracketDepth caps bracket nesting before the recursive descent starts.
const maxBracketDepth = 1000

// Parse parses src as a single expression. The returned tree is rooted at a
// NodeExpression node.
func Parse(src string) (*Node, error) {
	_, node, err := parse(src)
	return node, err
}

// parse also returns the grammar tree, which is set whenever src matched the
// grammar even if lowering failed afterwards.
func parse(src string) (*exprInput, *Node, error) {
	if err := checkBrackets(src); err != nil {
		return nil, nil, err
	}
	tree, err := parseTree(src)
	if err != nil {
		return nil, nil, syntaxError(err)
	}
	node, err := lowerInput(tree)
	if err != nil {
		return tree, nil, err
	}
	return tree, node, nil
}

// checkBrackets counts bracket nesting outside string literals. Columns
// are counted in runes.
func checkBrackets(src string) error {
	depth, col := 0, 0
	var quote rune
	escaped := false
	for _, r := range src {
		col++
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'':
			quote = r
		case '(', '[', '{':
			depth++
			if depth > maxBracketDepth {
				return newError(ErrTooDeep, col, fmt.Sprintf("more than %d nested brackets", maxBracketDepth))
			}
		case ')', ']', '}':
			depth--
		}
	}
	return nil
}

func syntaxError(err error) error {
	var uerr *participle.UnexpectedTokenError
	if errors.As(err, &uerr) {
		tok := uerr.Unexpected
		if tok.EOF() {
			return newError(ErrSyntax, tok.Pos.Column, "unexpected end of input")
		}
		return newError(ErrSyntax, tok.Pos.Column, fmt.Sprintf("unexpected %q", tok.Value))
	}
	var perr participle.Error
	if errors.As(err, &perr) {
		return newError(ErrSyntax, perr.Position().Column, perr.Message())
	}
	return newError(ErrSyntax, 0, err.Error())
}

func lowerInput(in *exprInput) (*Node, error) {
	body, err := lowerTuple(in.Pos.Column, in.Head, in.Tail, in.Comma)
	if err != nil {
		return nil, err
	}
	return &Node{
		t:    NodeExpression,
		col:  in.Pos.Column,
		kids: []*Node{body},
	}, nil
}

// lowerTuple returns a bare expression, or a tuple when a comma is present.
func lowerTuple(col int, head *starItem, tail []*starItem, comma bool) (*Node, error) {
	items, err := lowerStarItems(append([]*starItem{head}, tail...))
	if err != nil {
		return nil, err
	}
	if len(items) == 1 && !comma {
		return single(items[0])
	}
	return &Node{t: NodeTuple, col: col, kids: items}, nil
}

// single returns an element that stands alone, without a tuple around it.
func single(n *Node) (*Node, error) {
	if n.t == NodeStarred {
		return nil, newError(ErrSyntax, n.col, "cannot use starred expression here")
	}
	return n, nil
}

func lowerStarItem(s *starItem) (*Node, error) {
	if s.Star == nil {
		return lowerTernary(s.Value)
	}
	value, err := lowerBitOr(s.Star)
	if err != nil {
		return nil, err
	}
	return &Node{t: NodeStarred, v: "*", col: s.Pos.Column, kids: []*Node{value}}, nil
}

func lowerStarItems(items []*starItem) ([]*Node, error) {
	nodes := make([]*Node, 0, len(items))
	for _, s := range items {
		n, err := lowerStarItem(s)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func lowerTernary(e *ternaryExpr) (*Node, error) {
	switch {
	case e.Lambda != nil:
		return lowerLambda(e.Lambda)
	case e.Named != nil:
		value, err := lowerTernary(e.Named.Value)
		if err != nil {
			return nil, err
		}
		return &Node{t: NodeNamedExpr, v: e.Named.Target, col: e.Named.Pos.Column, kids: []*Node{value}}, nil
	}
	body, err := lowerOr(e.Body)
	if err != nil {
		return nil, err
	}
	if e.Cond == nil {
		return body, nil
	}
	cond, err := lowerOr(e.Cond)
	if err != nil {
		return nil, err
	}
	orElse, err := lowerTernary(e.Else)
	if err != nil {
		return nil, err
	}
	return &Node{
		t:    NodeIfExp,
		col:  e.Pos.Column,
		kids: []*Node{body, cond, orElse},
	}, nil
}

// lowerLambda keeps the parameter list as text. Defaults follow the body as
// Keyword children named after their parameter.
func lowerLambda(l *lambdaExpr) (*Node, error) {
	body, err := lowerTernary(l.Body)
	if err != nil {
		return nil, err
	}
	params := make([]string, 0, len(l.Params))
	kids := []*Node{body}
	for _, p := range l.Params {
		if p.Marker != "" {
			params = append(params, p.Marker)
			continue
		}
		params = append(params, p.Star+p.Name)
		if p.Default == nil {
			continue
		}
		if p.Star != "" {
			return nil, newError(ErrSyntax, p.Pos.Column, "var-positional parameter cannot have a default")
		}
		def, err := lowerTernary(p.Default)
		if err != nil {
			return nil, err
		}
		kids = append(kids, &Node{t: NodeKeyword, v: p.Name, col: p.Pos.Column, kids: []*Node{def}})
	}
	return &Node{t: NodeLambda, v: params, col: l.Pos.Column, kids: kids}, nil
}

func lowerOr(e *orExpr) (*Node, error) {
	head, err := lowerAnd(e.Head)
	if err != nil || len(e.Tail) == 0 {
		return head, err
	}
	kids := []*Node{head}
	for _, t := range e.Tail {
		n, err := lowerAnd(t)
		if err != nil {
			return nil, err
		}
		kids = append(kids, n)
	}
	return &Node{t: NodeBoolOp, v: "or", col: e.Pos.Column, kids: kids}, nil
}

func lowerAnd(e *andExpr) (*Node, error) {
	head, err := lowerNot(e.Head)
	if err != nil || len(e.Tail) == 0 {
		return head, err
	}
	kids := []*Node{head}
	for _, t := range e.Tail {
		n, err := lowerNot(t)
		if err != nil {
			return nil, err
		}
		kids = append(kids, n)
	}
	return &Node{t: NodeBoolOp, v: "and", col: e.Pos.Column, kids: kids}, nil
}

func lowerNot(e *notExpr) (*Node, error) {
	if e.Not == nil {
		return lowerComparison(e.Compare)
	}
	operand, err := lowerNot(e.Not)
	if err != nil {
		return nil, err
	}
	return &Node{t: NodeUnaryOp, v: "not", col: e.Pos.Column, kids: []*Node{operand}}, nil
}

func lowerComparison(e *comparisonExpr) (*Node, error) {
	head, err := lowerBitOr(e.Head)
	if err != nil || len(e.Tail) == 0 {
		return head, err
	}
	ops := make([]string, 0, len(e.Tail))
	kids := []*Node{head}
	for _, t := range e.Tail {
		right, err := lowerBitOr(t.Right)
		if err != nil {
			return nil, err
		}
		ops = append(ops, strings.Join(t.Op, " "))
		kids = append(kids, right)
	}
	return &Node{t: NodeCompare, v: ops, col: head.col, kids: kids}, nil
}

func binOp(left *Node, op string, col int, right *Node) *Node {
	return &Node{t: NodeBinOp, v: op, col: col, kids: []*Node{left, right}}
}

func lowerBitOr(e *bitOrExpr) (*Node, error) {
	node, err := lowerBitXor(e.Head)
	if err != nil {
		return nil, err
	}
	for _, t := range e.Tail {
		right, err := lowerBitXor(t.Right)
		if err != nil {
			return nil, err
		}
		node = binOp(node, t.Op, t.Pos.Column, right)
	}
	return node, nil
}

func lowerBitXor(e *bitXorExpr) (*Node, error) {
	node, err := lowerBitAnd(e.Head)
	if err != nil {
		return nil, err
	}
	for _, t := range e.Tail {
		right, err := lowerBitAnd(t.Right)
		if err != nil {
			return nil, err
		}
		node = binOp(node, t.Op, t.Pos.Column, right)
	}
	return node, nil
}

func lowerBitAnd(e *bitAndExpr) (*Node, error) {
	node, err := lowerShift(e.Head)
	if err != nil {
		return nil, err
	}
	for _, t := range e.Tail {
		right, err := lowerShift(t.Right)
		if err != nil {
			return nil, err
		}
		node = binOp(node, t.Op, t.Pos.Column, right)
	}
	return node, nil
}

func lowerShift(e *shiftExpr) (*Node, error) {
	node, err := lowerArith(e.Head)
	if err != nil {
		return nil, err
	}
	for _, t := range e.Tail {
		right, err := lowerArith(t.Right)
		if err != nil {
			return nil, err
		}
		node = binOp(node, t.Op, t.Pos.Column, right)
	}
	return node, nil
}

func lowerArith(e *arithExpr) (*Node, error) {
	node, err := lowerTerm(e.Head)
	if err != nil {
		return nil, err
	}
	for _, t := range e.Tail {
		right, err := lowerTerm(t.Right)
		if err != nil {
			return nil, err
		}
		node = binOp(node, t.Op, t.Pos.Column, right)
	}
	return node, nil
}

func lowerTerm(e *termExpr) (*Node, error) {
	node, err := lowerFactor(e.Head)
	if err != nil {
		return nil, err
	}
	for _, t := range e.Tail {
		right, err := lowerFactor(t.Right)
		if err != nil {
			return nil, err
		}
		node = binOp(node, t.Op, t.Pos.Column, right)
	}
	return node, nil
}

func lowerFactor(e *factorExpr) (*Node, error) {
	if e.Power != nil {
		return lowerPower(e.Power)
	}
	operand, err := lowerFactor(e.Operand)
	if err != nil {
		return nil, err
	}
	return &Node{t: NodeUnaryOp, v: e.Op, col: e.Pos.Column, kids: []*Node{operand}}, nil
}

func lowerPower(e *powerExpr) (*Node, error) {
	base, err := lowerPrimary(e.Base)
	if err != nil || e.Exponent == nil {
		return base, err
	}
	exp, err := lowerFactor(e.Exponent)
	if err != nil {
		return nil, err
	}
	return binOp(base, "**", base.col, exp), nil
}

func lowerPrimary(e *primaryExpr) (*Node, error) {
	node, err := lowerAtom(e.Atom)
	if err != nil {
		return nil, err
	}
	col := e.Pos.Column
	for _, t := range e.Trailers {
		switch {
		case t.Call:
			args, err := lowerCallArgs(t)
			if err != nil {
				return nil, err
			}
			node = &Node{t: NodeCall, col: col, kids: append([]*Node{node}, args...)}
		case t.Subscript != nil:
			index, err := lowerSubscript(t.Subscript)
			if err != nil {
				return nil, err
			}
			node = &Node{t: NodeSubscript, col: col, kids: []*Node{node, index}}
		case t.Attribute != nil:
			node = &Node{t: NodeAttribute, v: *t.Attribute, col: col, kids: []*Node{node}}
		}
	}
	return node, nil
}

func lowerCallArgs(t *trailer) ([]*Node, error) {
	if t.Comp != nil {
		if len(t.Args) != 1 || t.Comma || t.Args[0].Star != "" || t.Args[0].Keyword != "" {
			return nil, newError(ErrSyntax, t.Comp.Pos.Column, "generator expression must be parenthesized")
		}
		elt, err := lowerTernary(t.Args[0].Value)
		if err != nil {
			return nil, err
		}
		gen, err := lowerComprehension(NodeGeneratorExp, t.Args[0].Pos.Column, []*Node{elt}, t.Comp)
		if err != nil {
			return nil, err
		}
		return []*Node{gen}, nil
	}
	if len(t.Args) == 0 && t.Comma {
		return nil, newError(ErrSyntax, t.Pos.Column, "unexpected ','")
	}
	return lowerArgs(t.Args)
}

func lowerArgs(args []*argument) ([]*Node, error) {
	nodes := make([]*Node, 0, len(args))
	for _, a := range args {
		value, err := lowerTernary(a.Value)
		if err != nil {
			return nil, err
		}
		if a.Star != "" && a.Keyword != "" {
			return nil, newError(ErrSyntax, a.Pos.Column, "starred keyword argument")
		}
		switch {
		case a.Star != "":
			value = &Node{t: NodeStarred, v: a.Star, col: a.Pos.Column, kids: []*Node{value}}
		case a.Keyword != "":
			value = &Node{t: NodeKeyword, v: a.Keyword, col: a.Pos.Column, kids: []*Node{value}}
		}
		nodes = append(nodes, value)
	}
	return nodes, nil
}

// lowerSubscript returns a tuple for x[a, b] and x[a,], the bare item
// otherwise.
func lowerSubscript(s *subscript) (*Node, error) {
	items := s.Items
	comma := false
	if n := len(items); n > 1 && items[n-1].Index == nil && len(items[n-1].Slice) == 0 {
		items = items[:n-1]
		comma = true
	}
	nodes := make([]*Node, 0, len(items))
	for _, item := range items {
		n, err := lowerSliceItem(item)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 && !comma {
		return nodes[0], nil
	}
	return &Node{t: NodeTuple, col: s.Pos.Column, kids: nodes}, nil
}

func lowerSliceItem(s *sliceItem) (*Node, error) {
	var index *Node
	if s.Index != nil {
		var err error
		index, err = lowerTernary(s.Index)
		if err != nil {
			return nil, err
		}
	}
	if len(s.Slice) == 0 {
		if index == nil {
			return nil, newError(ErrSyntax, s.Pos.Column, "empty subscript")
		}
		return index, nil
	}
	if len(s.Slice) > 2 {
		return nil, newError(ErrSyntax, s.Pos.Column, "too many slice bounds")
	}
	// lower, upper, step; absent bounds stay nil
	kids := []*Node{index, nil, nil}
	for i, b := range s.Slice {
		if b.Value == nil {
			continue
		}
		n, err := lowerTernary(b.Value)
		if err != nil {
			return nil, err
		}
		kids[i+1] = n
	}
	return &Node{t: NodeSlice, col: s.Pos.Column, kids: kids}, nil
}

func lowerAtom(a *atom) (*Node, error) {
	col := a.Pos.Column
	switch {
	case a.Number != nil:
		return lowerNumber(*a.Number, col)
	case len(a.Strings) > 0:
		return lowerStrings(a.Strings, col)
	case a.Const != nil:
		switch *a.Const {
		case "True":
			return &Node{t: NodeBool, v: true, col: col}, nil
		case "False":
			return &Node{t: NodeBool, v: false, col: col}, nil
		case "...":
			return &Node{t: NodeEllipsis, v: "...", col: col}, nil
		}
		return &Node{t: NodeNone, col: col}, nil
	case a.Name != nil:
		return &Node{t: NodeName, v: *a.Name, col: col}, nil
	case a.Paren != nil:
		p := a.Paren
		if p.Comp != nil {
			elt, err := comprehensionElement(p.Items, p.Comma, p.Comp)
			if err != nil {
				return nil, err
			}
			return lowerComprehension(NodeGeneratorExp, col, []*Node{elt}, p.Comp)
		}
		if len(p.Items) == 0 {
			if p.Comma {
				return nil, newError(ErrSyntax, col, "unexpected ','")
			}
			return &Node{t: NodeTuple, col: col}, nil
		}
		items, err := lowerStarItems(p.Items)
		if err != nil {
			return nil, err
		}
		if len(items) == 1 && !p.Comma {
			return single(items[0])
		}
		return &Node{t: NodeTuple, col: col, kids: items}, nil
	case a.List != nil:
		l := a.List
		if l.Comp != nil {
			elt, err := comprehensionElement(l.Items, l.Comma, l.Comp)
			if err != nil {
				return nil, err
			}
			return lowerComprehension(NodeListComp, col, []*Node{elt}, l.Comp)
		}
		if len(l.Items) == 0 && l.Comma {
			return nil, newError(ErrSyntax, col, "unexpected ','")
		}
		items, err := lowerStarItems(l.Items)
		if err != nil {
			return nil, err
		}
		return &Node{t: NodeList, col: col, kids: items}, nil
	case a.Brace != nil:
		return lowerBrace(a.Brace, col)
	}
	return nil, newError(ErrSyntax, col, "empty expression")
}

func comprehensionElement(items []*starItem, comma bool, comp *comprehension) (*Node, error) {
	if len(items) != 1 || comma {
		return nil, newError(ErrSyntax, comp.Pos.Column, "comprehension needs exactly one element")
	}
	if items[0].Star != nil {
		return nil, newError(ErrSyntax, items[0].Pos.Column, "iterable unpacking cannot be used in comprehension")
	}
	return lowerTernary(items[0].Value)
}

// lowerComprehension appends one Comprehension child per for clause after
// the element nodes in head.
func lowerComprehension(t NodeType, col int, head []*Node, comp *comprehension) (*Node, error) {
	kids := head
	for _, c := range comp.Clauses {
		iter, err := lowerOr(c.Iter)
		if err != nil {
			return nil, err
		}
		clause := &Node{t: NodeComprehension, v: c.Targets, col: c.Pos.Column, kids: []*Node{iter}}
		for _, cond := range c.Conds {
			n, err := lowerOr(cond)
			if err != nil {
				return nil, err
			}
			clause.kids = append(clause.kids, n)
		}
		kids = append(kids, clause)
	}
	return &Node{t: t, col: col, kids: kids}, nil
}

func lowerBrace(b *braceDisplay, col int) (*Node, error) {
	if len(b.Entries) == 0 {
		if b.Comma || b.Comp != nil {
			return nil, newError(ErrSyntax, col, "empty display")
		}
		return &Node{t: NodeDict, col: col}, nil
	}
	first := b.Entries[0]
	isDict := first.Value != nil || first.Unpack != nil
	if b.Comp != nil {
		switch {
		case len(b.Entries) != 1 || b.Comma:
			return nil, newError(ErrSyntax, b.Comp.Pos.Column, "comprehension needs exactly one element")
		case first.Unpack != nil:
			return nil, newError(ErrSyntax, first.Pos.Column, "dict unpacking cannot be used in dict comprehension")
		case first.Star != nil:
			return nil, newError(ErrSyntax, first.Pos.Column, "iterable unpacking cannot be used in comprehension")
		}
		key, err := lowerTernary(first.Key)
		if err != nil {
			return nil, err
		}
		if !isDict {
			return lowerComprehension(NodeSetComp, col, []*Node{key}, b.Comp)
		}
		value, err := lowerTernary(first.Value)
		if err != nil {
			return nil, err
		}
		return lowerComprehension(NodeDictComp, col, []*Node{key, value}, b.Comp)
	}
	kids := make([]*Node, 0, 2*len(b.Entries))
	for _, e := range b.Entries {
		if (e.Value != nil || e.Unpack != nil) != isDict {
			return nil, newError(ErrSyntax, e.Pos.Column, "mixed dict and set entries")
		}
		switch {
		case e.Unpack != nil:
			value, err := lowerBitOr(e.Unpack)
			if err != nil {
				return nil, err
			}
			kids = append(kids, nil, value)
		case e.Star != nil:
			value, err := lowerBitOr(e.Star)
			if err != nil {
				return nil, err
			}
			kids = append(kids, &Node{t: NodeStarred, v: "*", col: e.Pos.Column, kids: []*Node{value}})
		default:
			key, err := lowerTernary(e.Key)
			if err != nil {
				return nil, err
			}
			kids = append(kids, key)
			if isDict {
				value, err := lowerTernary(e.Value)
				if err != nil {
					return nil, err
				}
				kids = append(kids, value)
			}
		}
	}
	if isDict {
		return &Node{t: NodeDict, col: col, kids: kids}, nil
	}
	return &Node{t: NodeSet, col: col, kids: kids}, nil
}

// lowerNumber classifies a numeric literal. Conversion to a value is left to
// the evaluator so that out-of-range literals surface as arithmetic errors.
func lowerNumber(s string, col int) (*Node, error) {
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "j"):
		return &Node{t: NodeImaginary, v: s, col: col}, nil
	case strings.HasPrefix(lower, "0x"), strings.HasPrefix(lower, "0o"), strings.HasPrefix(lower, "0b"):
		return &Node{t: NodeInt, v: s, col: col}, nil
	case strings.ContainsAny(lower, ".e"):
		return &Node{t: NodeFloat, v: s, col: col}, nil
	}
	if len(s) > 1 && s[0] == '0' && strings.Trim(s, "0_") != "" {
		return nil, newError(ErrSyntax, col, "leading zeros in decimal integer literals are not permitted")
	}
	return &Node{t: NodeInt, v: s, col: col}, nil
}

func stringPrefix(lit string) string {
	return strings.ToLower(lit[:strings.IndexAny(lit, `"'`)])
}

func lowerStrings(lits []string, col int) (*Node, error) {
	t := NodeString
	for i, lit := range lits {
		prefix := stringPrefix(lit)
		kind := NodeString
		switch prefix {
		case "", "r", "u":
		case "b", "br", "rb":
			kind = NodeBytes
		case "f", "fr", "rf":
			kind = NodeFString
		default:
			return nil, newError(ErrSyntax, col, fmt.Sprintf("invalid string prefix %q", prefix))
		}
		if i > 0 && (kind == NodeBytes) != (t == NodeBytes) {
			return nil, newError(ErrSyntax, col, "cannot mix bytes and nonbytes literals")
		}
		if i == 0 || kind == NodeFString {
			t = kind
		}
	}
	return &Node{t: t, v: strings.Join(lits, " "), col: col}, nil
}

func joinNodes(buf *bytes.Buffer, nodes []*Node, sep string) {
	for i, n := range nodes {
		if i > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(n.String())
	}
}

func writeClauses(buf *bytes.Buffer, clauses []*Node) {
	for _, c := range clauses {
		fmt.Fprintf(buf, " %v", c)
	}
}

// String renders the node back as source text, with binary and unary
// operations fully parenthesized.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	switch n.t {
	case NodeExpression:
		joinNodes(&buf, n.kids, "")
	case NodeBool:
		if n.v.(bool) {
			buf.WriteString("True")
		} else {
			buf.WriteString("False")
		}
	case NodeNone:
		buf.WriteString("None")
	case NodeBinOp:
		fmt.Fprintf(&buf, "(%v %v %v)", n.kids[0], n.v, n.kids[1])
	case NodeUnaryOp:
		if n.v == "not" {
			fmt.Fprintf(&buf, "(not %v)", n.kids[0])
		} else {
			fmt.Fprintf(&buf, "(%v%v)", n.v, n.kids[0])
		}
	case NodeBoolOp:
		buf.WriteString("(")
		joinNodes(&buf, n.kids, fmt.Sprintf(" %v ", n.v))
		buf.WriteString(")")
	case NodeCompare:
		ops := n.v.([]string)
		fmt.Fprintf(&buf, "(%v", n.kids[0])
		for i, op := range ops {
			fmt.Fprintf(&buf, " %s %v", op, n.kids[i+1])
		}
		buf.WriteString(")")
	case NodeIfExp:
		fmt.Fprintf(&buf, "(%v if %v else %v)", n.kids[0], n.kids[1], n.kids[2])
	case NodeNamedExpr:
		fmt.Fprintf(&buf, "(%v := %v)", n.v, n.kids[0])
	case NodeLambda:
		defaults := make(map[string]*Node)
		for _, d := range n.kids[1:] {
			defaults[d.v.(string)] = d.kids[0]
		}
		buf.WriteString("(lambda")
		for i, p := range n.v.([]string) {
			if i > 0 {
				buf.WriteString(",")
			}
			fmt.Fprintf(&buf, " %s", p)
			if d, ok := defaults[p]; ok {
				fmt.Fprintf(&buf, "=%v", d)
			}
		}
		fmt.Fprintf(&buf, ": %v)", n.kids[0])
	case NodeCall:
		fmt.Fprintf(&buf, "%v(", n.kids[0])
		joinNodes(&buf, n.kids[1:], ", ")
		buf.WriteString(")")
	case NodeKeyword:
		fmt.Fprintf(&buf, "%v=%v", n.v, n.kids[0])
	case NodeStarred:
		fmt.Fprintf(&buf, "%v%v", n.v, n.kids[0])
	case NodeAttribute:
		fmt.Fprintf(&buf, "%v.%v", n.kids[0], n.v)
	case NodeSubscript:
		fmt.Fprintf(&buf, "%v[%v]", n.kids[0], n.kids[1])
	case NodeSlice:
		fmt.Fprintf(&buf, "%v:%v", n.kids[0], n.kids[1])
		if n.kids[2] != nil {
			fmt.Fprintf(&buf, ":%v", n.kids[2])
		}
	case NodeTuple:
		buf.WriteString("(")
		joinNodes(&buf, n.kids, ", ")
		if len(n.kids) == 1 {
			buf.WriteString(",")
		}
		buf.WriteString(")")
	case NodeList:
		buf.WriteString("[")
		joinNodes(&buf, n.kids, ", ")
		buf.WriteString("]")
	case NodeListComp:
		fmt.Fprintf(&buf, "[%v", n.kids[0])
		writeClauses(&buf, n.kids[1:])
		buf.WriteString("]")
	case NodeGeneratorExp:
		fmt.Fprintf(&buf, "(%v", n.kids[0])
		writeClauses(&buf, n.kids[1:])
		buf.WriteString(")")
	case NodeSetComp:
		fmt.Fprintf(&buf, "{%v", n.kids[0])
		writeClauses(&buf, n.kids[1:])
		buf.WriteString("}")
	case NodeDictComp:
		fmt.Fprintf(&buf, "{%v: %v", n.kids[0], n.kids[1])
		writeClauses(&buf, n.kids[2:])
		buf.WriteString("}")
	case NodeComprehension:
		fmt.Fprintf(&buf, "for %s in %v", strings.Join(n.v.([]string), ", "), n.kids[0])
		for _, cond := range n.kids[1:] {
			fmt.Fprintf(&buf, " if %v", cond)
		}
	case NodeSet:
		buf.WriteString("{")
		joinNodes(&buf, n.kids, ", ")
		buf.WriteString("}")
	case NodeDict:
		buf.WriteString("{")
		for i := 0; i < len(n.kids); i += 2 {
			if i > 0 {
				buf.WriteString(", ")
			}
			if n.kids[i] == nil {
				fmt.Fprintf(&buf, "**%v", n.kids[i+1])
			} else {
				fmt.Fprintf(&buf, "%v: %v", n.kids[i], n.kids[i+1])
			}
		}
		buf.WriteString("}")
	default:
		fmt.Fprint(&buf, n.v)
	}
	return buf.String()
}
