package grover

import (
	"errors"
	"strconv"
)

// ErrorCode classifies an error from any stage of the pipeline. ErrorCode
// implements error so that errors.Is(err, ArithmeticError) and the like work
// on any *Error.
type ErrorCode int8

const (
	// NoError is the code of a nil error.
	NoError ErrorCode = iota
	// MalformedExpression is a grammar violation: an unexpected token or
	// unbalanced parentheses.
	MalformedExpression
	// LexerError is an invalid character, identifier, or numeral.
	LexerError
	// ParserError indicates a broken invariant inside the parser.
	ParserError
	// EvaluatorError indicates a malformed token sequence at evaluation time,
	// e.g. a missing operand.
	EvaluatorError
	// ArithmeticError is division or remainder by zero.
	ArithmeticError
	// ReassignConstant is an assignment to a constant.
	ReassignConstant
	// ForeignError is the code CodeOf gives errors that did not come from
	// this package, like I/O errors.
	ForeignError
)

func (c ErrorCode) String() string {
	switch c {
	case NoError:
		return "NoError"
	case MalformedExpression:
		return "MalformedExpression"
	case LexerError:
		return "LexerError"
	case ParserError:
		return "ParserError"
	case EvaluatorError:
		return "EvaluatorError"
	case ArithmeticError:
		return "ArithmeticError"
	case ReassignConstant:
		return "ReassignConstant"
	case ForeignError:
		return "ForeignError"
	default:
		return "ErrorCode(" + strconv.Itoa(int(c)) + ")"
	}
}

func (c ErrorCode) Error() string {
	return c.String()
}

// Error is the error type returned by every stage. It implements InputError.
type Error struct {
	// Code is the kind of error.
	Code ErrorCode
	// Msg is the human-readable description.
	Msg string
	// Col is the 1-based column of the token that caused the error, or 0 if
	// the error has no single position.
	Col int
}

func (err *Error) Error() string {
	if err.Col <= 0 {
		return err.Msg
	}
	return errpos(err.Col, err.Msg)
}

// Unwrap returns the error's code.
func (err *Error) Unwrap() error {
	return err.Code
}

// Pos returns the 1-based column of the error, or 0 if it has none.
func (err *Error) Pos() int {
	return err.Col
}

// CodeOf returns the code of the first *Error in err's chain. If err is nil,
// the result is NoError. If err is non-nil but has no *Error, the result is
// ForeignError.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return NoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ForeignError
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

func newError(code ErrorCode, col int, msg string) *Error {
	return &Error{Code: code, Msg: msg, Col: col}
}

// InputError is an error with position information.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var _ InputError = (*Error)(nil)
