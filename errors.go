package gocalc

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax indicates the input is not a well-formed expression.
	ErrSyntax = errors.New("invalid syntax")

	// ErrUnsupportedConstant indicates a literal that is not an int or a float.
	ErrUnsupportedConstant = errors.New("unsupported constant")

	// ErrUnsupportedOperator indicates a binary operator outside the arithmetic set.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrUnsupportedUnaryOperator indicates a unary operator other than + and -.
	ErrUnsupportedUnaryOperator = errors.New("unsupported unary operator")

	// ErrUnsupportedExpression indicates a node kind the evaluator refuses to interpret.
	ErrUnsupportedExpression = errors.New("unsupported expression")

	// ErrZeroDivision indicates a zero divisor or zero raised to a negative power.
	ErrZeroDivision = errors.New("division by zero")

	// ErrOverflow indicates a result that does not fit the numeric representation.
	ErrOverflow = errors.New("numerical result out of range")

	// ErrComplexResult indicates an operation whose only result is a complex number.
	ErrComplexResult = errors.New("result is not a real number")

	// ErrTooDeep indicates the expression nests deeper than the configured limit.
	ErrTooDeep = errors.New("expression nested too deeply")

	// ErrLineTooLong indicates an input line too long to evaluate.
	ErrLineTooLong = errors.New("input line too long")
)

// Error is returned by Parse and the evaluator. Kind is one of the Err*
// sentinels above, so callers can match it with errors.Is.
type Error struct {
	Kind   error
	Detail string
	Column int
}

func newError(kind error, column int, detail string) *Error {
	return &Error{
		Kind:   kind,
		Detail: detail,
		Column: column,
	}
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Column > 0 {
		msg += fmt.Sprintf(" at column %d", e.Column)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}
