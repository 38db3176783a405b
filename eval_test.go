package gocalc

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestEvalInt(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"2 ** 10", "1024"},
		{"7 // 2", "3"},
		{"7 % 2", "1"},
		{"-5 + 2", "-3"},
		{"-(2+3)", "-5"},
		{"-7 // 2", "-4"},
		{"7 // -2", "-4"},
		{"-7 % 3", "2"},
		{"7 % -3", "-2"},
		{"-2 ** 2", "-4"},
		{"(-2) ** 2", "4"},
		{"2 ** 3 ** 2", "512"},
		{"10 - 2 - 3", "5"},
		{"+3", "3"},
		{"--3", "3"},
		{"0x10 + 0o10 + 0b10", "26"},
		{"1_000 * 2", "2000"},
		{"00", "0"},
		{"2 ** 63", "9223372036854775808"},
		{"2 ** 64", "18446744073709551616"},
		{"10 ** 20", "100000000000000000000"},
		{"99999999999999999999", "99999999999999999999"},
		{"99999999999999999999 + 1", "100000000000000000000"},
		{"9223372036854775807 + 1", "9223372036854775808"},
		{"4294967296 * 4294967296", "18446744073709551616"},
		{"-(-9223372036854775807 - 1)", "9223372036854775808"},
		{"(-9223372036854775807 - 1) // -1", "9223372036854775808"},
		{"-(10 ** 30) // 7", "-142857142857142857142857142858"},
		{"-(10 ** 30) % 7", "6"},
		{"10 ** 30 % -7", "-6"},
		{"0x_ff_ff_ff_ff_ff_ff_ff_ff_ff", "4722366482869645213695"},
		{"(-1) ** (10 ** 30)", "1"},
		{"(-1) ** (10 ** 30 + 1)", "-1"},
		{"0 ** (10 ** 30)", "0"},
		{"2 ** 65535 // 2 ** 65534", "2"},
		{strings.Repeat("-", 100) + "1", "1"},
	}
	for _, test := range tests {
		got, err := Eval(test.input)
		if err != nil {
			t.Errorf("unexpected error for %q: %v", test.input, err)
			continue
		}
		if !got.IsInt() || got.String() != test.want {
			t.Errorf("want %s for %q but got %v (%v)", test.want, test.input, got, got.Kind())
		}
	}
}

func TestEvalFloat(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1 / 2", 0.5},
		{"4 / 2", 2},
		{"2 ** -1", 0.5},
		{"2 ** 0.5", math.Sqrt2},
		{"1e3", 1000},
		{"1.", 1},
		{".5 + .25", 0.75},
		{"3.0 * 2", 6},
		{"7.5 // 2", 3},
		{"-7.5 // 2", -4},
		{"-7.5 % 2", 0.5},
		{"7.5 % -2", -0.5},
		{"1.5 * 4 - 2 / 8", 1.5*4 - 2.0/8},
		{"(1 + 2.5) ** 2 / 3", (1 + 2.5) * (1 + 2.5) / 3},
		{"-8 ** (1/3)", -2},
		{"(-8.0) ** 2", 64},
		{"0.1 + 0.2", 0.1 + 0.2},
		{"1e-400", 0},
	}
	for _, test := range tests {
		got, err := Eval(test.input)
		if err != nil {
			t.Errorf("unexpected error for %q: %v", test.input, err)
			continue
		}
		if got.IsInt() {
			t.Errorf("want float for %q but got int %v", test.input, got)
		}
		if diff := cmp.Diff(test.want, got.Float(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Errorf("%q: %s", test.input, diff)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"__import__('os').system('ls')", ErrUnsupportedExpression},
		{"x", ErrUnsupportedExpression},
		{"1 + x", ErrUnsupportedExpression},
		{"abs(-1)", ErrUnsupportedExpression},
		{"(1).real", ErrUnsupportedExpression},
		{"f'{1}'", ErrUnsupportedExpression},
		{"1 < 2", ErrUnsupportedExpression},
		{"1 and 2", ErrUnsupportedExpression},
		{"[1]", ErrUnsupportedExpression},
		{"{1: 2}", ErrUnsupportedExpression},
		{"{1}", ErrUnsupportedExpression},
		{"1 if 1 else 2", ErrUnsupportedExpression},
		{"lambda: 1", ErrUnsupportedExpression},
		{"(1, 2)", ErrUnsupportedExpression},
		{"1,", ErrUnsupportedExpression},
		{"a[0]", ErrUnsupportedExpression},
		{"[i for i in x]", ErrUnsupportedExpression},
		{"x[1, 2]", ErrUnsupportedExpression},
		{"a[1:2, 3]", ErrUnsupportedExpression},
		{"f(x for x in y)", ErrUnsupportedExpression},
		{"(x := 1)", ErrUnsupportedExpression},
		{"(x := 1) + 1", ErrUnsupportedExpression},
		{"{x for x in y}", ErrUnsupportedExpression},
		{"{k: v for k, v in y}", ErrUnsupportedExpression},
		{"{**d}", ErrUnsupportedExpression},
		{"*a, b", ErrUnsupportedExpression},
		{"[*a]", ErrUnsupportedExpression},
		{"lambda x=1: x", ErrUnsupportedExpression},
		{"1 not in x", ErrUnsupportedExpression},
		{"'a'", ErrUnsupportedConstant},
		{"b'a'", ErrUnsupportedConstant},
		{"True", ErrUnsupportedConstant},
		{"True + 1", ErrUnsupportedConstant},
		{"None", ErrUnsupportedConstant},
		{"2j", ErrUnsupportedConstant},
		{"...", ErrUnsupportedConstant},
		{"... + 1", ErrUnsupportedConstant},
		{"'''a'''", ErrUnsupportedConstant},
		{`"""a"""`, ErrUnsupportedConstant},
		{"'" + strings.Repeat("(", 1001) + "'", ErrUnsupportedConstant},
		{"1 & 2", ErrUnsupportedOperator},
		{"1 | 2", ErrUnsupportedOperator},
		{"1 ^ 2", ErrUnsupportedOperator},
		{"1 << 2", ErrUnsupportedOperator},
		{"1 >> 2", ErrUnsupportedOperator},
		{"1 @ 2", ErrUnsupportedOperator},
		{"'a' & x", ErrUnsupportedOperator},
		{"~1", ErrUnsupportedUnaryOperator},
		{"not 1", ErrUnsupportedUnaryOperator},
		{"not x", ErrUnsupportedUnaryOperator},
		{"1/0", ErrZeroDivision},
		{"1.5 / 0.0", ErrZeroDivision},
		{"1 // 0", ErrZeroDivision},
		{"1 % 0", ErrZeroDivision},
		{"1.0 % 0", ErrZeroDivision},
		{"1.0 // 0", ErrZeroDivision},
		{"0 ** -1", ErrZeroDivision},
		{"0.0 ** -0.5", ErrZeroDivision},
		{"(-8) ** (1/3)", ErrComplexResult},
		{"(-2.0) ** 0.5", ErrComplexResult},
		{"2 ** 10 ** 10", ErrOverflow},
		{"2 ** 65536", ErrOverflow},
		{"3 ** 100000", ErrOverflow},
		{"(2 ** 40000) * (2 ** 40000)", ErrOverflow},
		{"2 ** 65535 + 2 ** 65535", ErrOverflow},
		{"1" + strings.Repeat("0", 20000), ErrOverflow},
		{"10 ** 400 + 0.5", ErrOverflow},
		{"10 ** 400 / 3", ErrOverflow},
		{"2.0 ** (10 ** 400)", ErrOverflow},
		{"1e308 * 10", ErrOverflow},
		{"1e400", ErrOverflow},
		{"10.0 ** 400", ErrOverflow},
		{"", ErrSyntax},
		{"2 +", ErrSyntax},
		{strings.Repeat("-", 300) + "1", ErrTooDeep},
	}
	for _, test := range tests {
		got, err := Eval(test.input)
		if !errors.Is(err, test.want) {
			t.Errorf("want %v for %q but got %v, %v", test.want, test.input, got, err)
		}
	}
}

func TestEvalErrorMessages(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"__import__('os').system('ls')", "unsupported expression: call at column 1"},
		{"1 + x", "unsupported expression: name at column 5"},
		{"1 & 2", "unsupported operator: & at column 3"},
		{"~1", "unsupported unary operator: ~ at column 1"},
		{"'os'", "unsupported constant: 'os' (str) at column 1"},
		{"None", "unsupported constant: None (NoneType) at column 1"},
		{"...", "unsupported constant: ... (ellipsis) at column 1"},
		{"'''a'''", "unsupported constant: '''a''' (str) at column 1"},
		{"x[1, 2]", "unsupported expression: subscript at column 1"},
		{"(x := 1)", "unsupported expression: named expression at column 2"},
		{"{x for x in y}", "unsupported expression: set comprehension at column 1"},
		{"1/0", "division by zero at column 2"},
		{"7 % 0", "division by zero: integer division or modulo by zero at column 3"},
		{"2 ** 10 ** 10", "numerical result out of range: integer result too large at column 1"},
		{"1 + 10 ** 400 * 1.0", "numerical result out of range: int too large to convert to float at column 15"},
	}
	for _, test := range tests {
		_, err := Eval(test.input)
		if err == nil {
			t.Errorf("want error for %q", test.input)
			continue
		}
		if got := err.Error(); got != test.want {
			t.Errorf("want %q for %q but got %q", test.want, test.input, got)
		}
	}
}

func TestEvalIdempotent(t *testing.T) {
	inputs := []string{"2 + 3 * 4", "1 / 3", "2 ** 0.5", "x", "1/0"}
	for _, input := range inputs {
		first, err1 := Eval(input)
		second, err2 := Eval(input)
		if !first.Equal(second) {
			t.Errorf("%q: %v then %v", input, first, second)
		}
		if (err1 == nil) != (err2 == nil) || (err1 != nil && err1.Error() != err2.Error()) {
			t.Errorf("%q: %v then %v", input, err1, err2)
		}
	}
}

func TestEvalMaxDepth(t *testing.T) {
	e := NewEvaluator(&EvalOptions{MaxDepth: 5})
	if _, err := e.Eval("-(-(1))"); err != nil {
		t.Fatal(err)
	}
	_, err := e.Eval(strings.Repeat("-", 10) + "1")
	if !errors.Is(err, ErrTooDeep) {
		t.Fatalf("want ErrTooDeep but got %v", err)
	}
	if _, err := e.Eval("1 + 2 + 3 + 4 + 5 + 6 + 7"); !errors.Is(err, ErrTooDeep) {
		t.Fatalf("want ErrTooDeep but got %v", err)
	}
}

func TestEvalNode(t *testing.T) {
	node, err := Parse("6 * 7")
	if err != nil {
		t.Fatal(err)
	}
	got, err := NewEvaluator(nil).EvalNode(node)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(IntNumber(42)) {
		t.Errorf("want 42 but got %v", got)
	}
}
