package gocalc

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

type NumberKind int

const (
	Int NumberKind = iota
	Float
)

func (k NumberKind) String() string {
	if k == Float {
		return "float"
	}
	return "int"
}

// MaxIntBits is the largest integer magnitude, in bits, an evaluation may
// produce. Literals and results past it fail with ErrOverflow.
const MaxIntBits = 1 << 16

// Number is the result of an evaluation: an arbitrary precision integer or
// a float64. Integers are never mutated once wrapped.
type Number struct {
	kind NumberKind
	i    *big.Int
	f    float64
}

func IntNumber(i int64) Number {
	return Number{kind: Int, i: big.NewInt(i)}
}

// BigIntNumber wraps a copy of i.
func BigIntNumber(i *big.Int) Number {
	return Number{kind: Int, i: new(big.Int).Set(i)}
}

func FloatNumber(f float64) Number {
	return Number{kind: Float, f: f}
}

func (n Number) Kind() NumberKind {
	return n.kind
}

func (n Number) IsInt() bool {
	return n.kind == Int
}

// Int64 returns the value of an integer that fits in an int64. The second
// result is false for floats and for integers out of range.
func (n Number) Int64() (int64, bool) {
	if n.kind != Int || n.i == nil || !n.i.IsInt64() {
		return 0, false
	}
	return n.i.Int64(), true
}

// BigInt returns a copy of an integer value, or nil for floats.
func (n Number) BigInt() *big.Int {
	if n.kind != Int || n.i == nil {
		return nil
	}
	return new(big.Int).Set(n.i)
}

// Float returns the value as a float64. Integers too large for a float64
// become an infinity.
func (n Number) Float() float64 {
	if n.kind == Int {
		f, _ := n.bigInt().Float64()
		return f
	}
	return n.f
}

func (n Number) IsZero() bool {
	if n.kind == Int {
		return n.bigInt().Sign() == 0
	}
	return n.f == 0
}

// Equal reports whether n and m have the same kind and value. Floats compare
// with ==, so NaN is never equal to itself.
func (n Number) Equal(m Number) bool {
	if n.kind != m.kind {
		return false
	}
	if n.kind == Int {
		return n.bigInt().Cmp(m.bigInt()) == 0
	}
	return n.f == m.f
}

func (n Number) bigInt() *big.Int {
	if n.i == nil {
		return new(big.Int)
	}
	return n.i
}

// String formats integers in decimal and floats in their shortest
// round-trip form, always with a fraction or an exponent.
func (n Number) String() string {
	if n.kind == Int {
		return n.bigInt().String()
	}
	return formatFloat(n.f)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(s[strings.IndexByte(s, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return s
	}
	s = strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
