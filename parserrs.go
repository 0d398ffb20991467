package fpc

import (
	"errors"
	"strconv"
)

// ErrExpression is the category of every error caused by a malformed
// expression, an unknown variable, or an exceeded stack depth. All such errors
// unwrap to it.
var ErrExpression = errors.New("expression error")

// OperatorError is an error indicating an operator token that is not allowed
// where it appears, e.g. the second of two consecutive operators. It
// implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected an operand at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	if err.Unary {
		return errpos(err.Col, "unexpected operator "+strconv.Quote(err.Operator)+" where an operand is expected")
	}
	return errpos(err.Col, "unknown binary operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

func (err *OperatorError) Unwrap() error {
	return ErrExpression
}

// OperandError is an error indicating an operand where the parser expected an
// operator or the end of the expression, e.g. "2 3" or "ab". It implements
// InputError.
type OperandError struct {
	// Col is the position of the operand.
	Col int
	// Operand is the unexpected token.
	Operand string
}

func (err *OperandError) Error() string {
	return errpos(err.Col, "unexpected operand "+strconv.Quote(err.Operand)+" where an operator is expected")
}

func (err *OperandError) Pos() int {
	return err.Col
}

func (err *OperandError) Unwrap() error {
	return ErrExpression
}

// BracketError is an error indicating an unmatched parenthesis in the input.
// It implements InputError.
type BracketError struct {
	// Col is the position of the unmatched parenthesis.
	Col int
	// Left is the unmatched open parenthesis, if that is the problem.
	Left string
	// Right is the unmatched close parenthesis, if that is the problem.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
}

func (err *BracketError) Pos() int {
	return err.Col
}

func (err *BracketError) Unwrap() error {
	return ErrExpression
}

// SeparatorError is an error indicating a comma or semicolon that does not end
// the expression. It implements InputError.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "invalid occurrence of separator "+strconv.Quote(err.Sep))
}

func (err *SeparatorError) Pos() int {
	return err.Col
}

func (err *SeparatorError) Unwrap() error {
	return ErrExpression
}

// EmptyExpressionError is an error indicating an empty expression or
// subexpression, including an operator with nothing after it.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

func (err *EmptyExpressionError) Unwrap() error {
	return ErrExpression
}

// DepthError is an error indicating that an expression nests deeper than the
// operator or operand stack allows. It implements InputError.
type DepthError struct {
	// Col is the position of the token that would have exceeded the limit.
	Col int
	// Max is the stack depth limit.
	Max int
}

func (err *DepthError) Error() string {
	return errpos(err.Col, "expression exceeds stack depth "+strconv.Itoa(err.Max))
}

func (err *DepthError) Pos() int {
	return err.Col
}

func (err *DepthError) Unwrap() error {
	return ErrExpression
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*OperandError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*DepthError)(nil)
	_ InputError = (*LexError)(nil)
	_ InputError = (*NameError)(nil)
)
