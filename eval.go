package gocalc

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// DefaultMaxDepth bounds the nesting of an expression when EvalOptions
// leaves MaxDepth unset.
const DefaultMaxDepth = 200

// EvalOptions controls evaluation limits.
type EvalOptions struct {
	// MaxDepth is the deepest node nesting accepted before failing with ErrTooDeep.
	MaxDepth int
}

func (o *EvalOptions) normalize() EvalOptions {
	if o == nil {
		return EvalOptions{MaxDepth: DefaultMaxDepth}
	}
	out := *o
	if out.MaxDepth <= 0 {
		out.MaxDepth = DefaultMaxDepth
	}
	return out
}

// Evaluator interprets parsed expressions, accepting only numeric literals,
// the arithmetic binary operators and unary plus and minus. It holds no
// state between calls.
type Evaluator struct {
	opts EvalOptions
}

func NewEvaluator(opts *EvalOptions) *Evaluator {
	return &Evaluator{opts: opts.normalize()}
}

var defaultEvaluator = NewEvaluator(nil)

// Eval parses and evaluates src with the default options.
func Eval(src string) (Number, error) {
	return defaultEvaluator.Eval(src)
}

func (e *Evaluator) Eval(src string) (Number, error) {
	node, err := Parse(src)
	if err != nil {
		return Number{}, err
	}
	return e.EvalNode(node)
}

func (e *Evaluator) EvalNode(node *Node) (Number, error) {
	return e.eval(node, 0)
}

func (e *Evaluator) eval(node *Node, depth int) (Number, error) {
	if depth > e.opts.MaxDepth {
		return Number{}, newError(ErrTooDeep, node.col, fmt.Sprintf("limit is %d", e.opts.MaxDepth))
	}
	switch node.t {
	case NodeExpression:
		return e.eval(node.kids[0], depth)
	case NodeInt:
		return intLiteral(node)
	case NodeFloat:
		return floatLiteral(node)
	case NodeImaginary, NodeString, NodeBytes, NodeBool, NodeNone, NodeEllipsis:
		return Number{}, newError(ErrUnsupportedConstant, node.col, fmt.Sprintf("%v (%v)", node, node.t))
	case NodeBinOp:
		op := node.v.(string)
		fn, ok := binaryOps[op]
		if !ok {
			return Number{}, newError(ErrUnsupportedOperator, node.col, op)
		}
		lhs, err := e.eval(node.kids[0], depth+1)
		if err != nil {
			return Number{}, err
		}
		rhs, err := e.eval(node.kids[1], depth+1)
		if err != nil {
			return Number{}, err
		}
		ret, err := fn(lhs, rhs)
		if err != nil {
			return Number{}, positioned(err, node.col)
		}
		return ret, nil
	case NodeUnaryOp:
		op := node.v.(string)
		fn, ok := unaryOps[op]
		if !ok {
			return Number{}, newError(ErrUnsupportedUnaryOperator, node.col, op)
		}
		operand, err := e.eval(node.kids[0], depth+1)
		if err != nil {
			return Number{}, err
		}
		ret, err := fn(operand)
		if err != nil {
			return Number{}, positioned(err, node.col)
		}
		return ret, nil
	}
	return Number{}, newError(ErrUnsupportedExpression, node.col, node.t.String())
}

func positioned(err error, col int) error {
	var aerr *arithError
	if errors.As(err, &aerr) {
		return newError(aerr.kind, col, aerr.detail)
	}
	return err
}

func intLiteral(node *Node) (Number, error) {
	s := node.v.(string)
	// a literal this long is wider than MaxIntBits whatever its base
	if len(s) > 2*MaxIntBits+2 {
		return Number{}, newError(ErrOverflow, node.col, "integer literal too large")
	}
	i, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return Number{}, newError(ErrSyntax, node.col, fmt.Sprintf("invalid integer literal %q", s))
	}
	if i.BitLen() > MaxIntBits {
		return Number{}, newError(ErrOverflow, node.col, "integer literal too large")
	}
	return Number{kind: Int, i: i}, nil
}

func floatLiteral(node *Node) (Number, error) {
	s := strings.ReplaceAll(node.v.(string), "_", "")
	s = strings.Replace(s, ".e", ".0e", 1)
	s = strings.Replace(s, ".E", ".0E", 1)
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Number{}, newError(ErrSyntax, node.col, fmt.Sprintf("invalid float literal %q", node.v))
	}
	if math.IsInf(f, 0) {
		return Number{}, newError(ErrOverflow, node.col, "float literal too large")
	}
	return FloatNumber(f), nil
}
