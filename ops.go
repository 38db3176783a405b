package gocalc

import (
	"errors"
	"math"
	"math/big"
)

type binaryFn func(x, y Number) (Number, error)

type unaryFn func(x Number) (Number, error)

// binaryOps and unaryOps are the whole arithmetic whitelist. They are filled
// once in init and only read afterwards.
var (
	binaryOps map[string]binaryFn
	unaryOps  map[string]unaryFn
)

func init() {
	binaryOps = make(map[string]binaryFn)
	binaryOps["+"] = doAdd
	binaryOps["-"] = doSub
	binaryOps["*"] = doMul
	binaryOps["/"] = doDiv
	binaryOps["**"] = doPow
	binaryOps["%"] = doMod
	binaryOps["//"] = doFloorDiv

	unaryOps = make(map[string]unaryFn)
	unaryOps["-"] = doNeg
	unaryOps["+"] = doPos
}

var (
	errIntTooLarge   = errors.New("integer result too large")
	errIntToFloat    = errors.New("int too large to convert to float")
	errFloatOverflow = errors.New("float overflow")
)

// arithError carries the kind and detail of a failed operation until the
// evaluator attaches the column of the offending node.
type arithError struct {
	kind   error
	detail string
}

func (e *arithError) Error() string {
	if e.detail == "" {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.detail
}

func (e *arithError) Unwrap() error {
	return e.kind
}

func overflow(cause error) error {
	return &arithError{kind: ErrOverflow, detail: cause.Error()}
}

func zeroDivision(detail string) error {
	return &arithError{kind: ErrZeroDivision, detail: detail}
}

func checkFloat(f float64) (Number, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Number{}, overflow(errFloatOverflow)
	}
	return FloatNumber(f), nil
}

// checkInt wraps z, failing when it is wider than MaxIntBits.
func checkInt(z *big.Int) (Number, error) {
	if z.BitLen() > MaxIntBits {
		return Number{}, overflow(errIntTooLarge)
	}
	return Number{kind: Int, i: z}, nil
}

// toFloat converts an operand for mixed arithmetic.
func toFloat(n Number) (float64, error) {
	f := n.Float()
	if n.IsInt() && math.IsInf(f, 0) {
		return 0, overflow(errIntToFloat)
	}
	return f, nil
}

func floatOperands(x, y Number) (float64, float64, error) {
	a, err := toFloat(x)
	if err != nil {
		return 0, 0, err
	}
	b, err := toFloat(y)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func doAdd(x, y Number) (Number, error) {
	if x.IsInt() && y.IsInt() {
		return checkInt(new(big.Int).Add(x.bigInt(), y.bigInt()))
	}
	a, b, err := floatOperands(x, y)
	if err != nil {
		return Number{}, err
	}
	return checkFloat(a + b)
}

func doSub(x, y Number) (Number, error) {
	if x.IsInt() && y.IsInt() {
		return checkInt(new(big.Int).Sub(x.bigInt(), y.bigInt()))
	}
	a, b, err := floatOperands(x, y)
	if err != nil {
		return Number{}, err
	}
	return checkFloat(a - b)
}

func doMul(x, y Number) (Number, error) {
	if x.IsInt() && y.IsInt() {
		if x.bigInt().BitLen()+y.bigInt().BitLen() > MaxIntBits+1 {
			return Number{}, overflow(errIntTooLarge)
		}
		return checkInt(new(big.Int).Mul(x.bigInt(), y.bigInt()))
	}
	a, b, err := floatOperands(x, y)
	if err != nil {
		return Number{}, err
	}
	return checkFloat(a * b)
}

// doDiv is true division; the result is a float even for two ints. Two
// ints are divided exactly and rounded once.
func doDiv(x, y Number) (Number, error) {
	if y.IsZero() {
		return Number{}, zeroDivision("")
	}
	if x.IsInt() && y.IsInt() {
		q, _ := new(big.Rat).SetFrac(x.bigInt(), y.bigInt()).Float64()
		if math.IsInf(q, 0) {
			return Number{}, overflow(errors.New("integer division result too large for a float"))
		}
		return FloatNumber(q), nil
	}
	a, b, err := floatOperands(x, y)
	if err != nil {
		return Number{}, err
	}
	return checkFloat(a / b)
}

// floatDivmod returns the floored quotient and the remainder carrying the
// sign of y.
func floatDivmod(x, y float64) (float64, float64) {
	mod := math.Mod(x, y)
	div := (x - mod) / y
	if mod != 0 {
		if (y < 0) != (mod < 0) {
			mod += y
			div -= 1
		}
	} else {
		mod = math.Copysign(0, y)
	}
	var floordiv float64
	if div != 0 {
		floordiv = math.Floor(div)
		if div-floordiv > 0.5 {
			floordiv += 1
		}
	} else {
		floordiv = math.Copysign(0, x/y)
	}
	return floordiv, mod
}

// intDivmod is floored division: the remainder takes the sign of y.
func intDivmod(x, y *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int).QuoRem(x, y, new(big.Int))
	if r.Sign() != 0 && r.Sign() != y.Sign() {
		q.Sub(q, big.NewInt(1))
		r.Add(r, y)
	}
	return q, r
}

func doFloorDiv(x, y Number) (Number, error) {
	if x.IsInt() && y.IsInt() {
		if y.IsZero() {
			return Number{}, zeroDivision("integer division or modulo by zero")
		}
		q, _ := intDivmod(x.bigInt(), y.bigInt())
		return checkInt(q)
	}
	a, b, err := floatOperands(x, y)
	if err != nil {
		return Number{}, err
	}
	if b == 0 {
		return Number{}, zeroDivision("float floor division by zero")
	}
	div, _ := floatDivmod(a, b)
	return checkFloat(div)
}

func doMod(x, y Number) (Number, error) {
	if x.IsInt() && y.IsInt() {
		if y.IsZero() {
			return Number{}, zeroDivision("integer division or modulo by zero")
		}
		_, r := intDivmod(x.bigInt(), y.bigInt())
		return checkInt(r)
	}
	a, b, err := floatOperands(x, y)
	if err != nil {
		return Number{}, err
	}
	if b == 0 {
		return Number{}, zeroDivision("float modulo")
	}
	_, mod := floatDivmod(a, b)
	return checkFloat(mod)
}

// powInt raises base to a non-negative exponent. The width of the result is
// estimated from the operands first, so huge powers fail before any
// multiplication happens.
func powInt(base, exp *big.Int) (Number, error) {
	if base.CmpAbs(big.NewInt(1)) > 0 {
		if !exp.IsInt64() || exp.Int64() > MaxIntBits || int64(base.BitLen()-1)*exp.Int64() > MaxIntBits {
			return Number{}, overflow(errIntTooLarge)
		}
	}
	if base.Sign() == 0 || base.CmpAbs(big.NewInt(1)) == 0 {
		// 0, 1 and -1 only depend on the parity of a non-zero exponent.
		switch {
		case exp.Sign() == 0:
			return IntNumber(1), nil
		case base.Sign() < 0 && exp.Bit(0) == 0:
			return IntNumber(1), nil
		}
		return BigIntNumber(base), nil
	}
	return checkInt(new(big.Int).Exp(base, exp, nil))
}

func doPow(x, y Number) (Number, error) {
	if x.IsInt() && y.IsInt() && y.bigInt().Sign() >= 0 {
		return powInt(x.bigInt(), y.bigInt())
	}
	if x.IsZero() && y.Float() < 0 {
		return Number{}, zeroDivision("zero cannot be raised to a negative power")
	}
	base, exp, err := floatOperands(x, y)
	if err != nil {
		return Number{}, err
	}
	if base < 0 && exp != math.Trunc(exp) {
		return Number{}, &arithError{kind: ErrComplexResult, detail: "negative number raised to a fractional power"}
	}
	return checkFloat(math.Pow(base, exp))
}

func doNeg(x Number) (Number, error) {
	if x.IsInt() {
		return Number{kind: Int, i: new(big.Int).Neg(x.bigInt())}, nil
	}
	return FloatNumber(-x.f), nil
}

func doPos(x Number) (Number, error) {
	return x, nil
}
