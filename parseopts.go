package fpc

import (
	"strconv"
	"unicode"
)

// DefaultMaxDepth is the default limit on the operator stack and the operand
// stack of a single expression.
const DefaultMaxDepth = 32

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	eofopt struct {
		c, s bool
		ws   string
	}
	depthopt int
)

// parsectx holds general data for parsing.
type parsectx struct {
	// wseof is a string containing the whitespace characters that trigger an
	// EOF token from the lexer.
	wseof string
	// ceof and seof indicate whether commas and semicolons, respectively, are
	// allowed at the end of an expression.
	ceof, seof bool
	// depth is the stack depth limit.
	depth int
}

// StopOn tells the parser to treat a list of characters as ending the
// expression. Each rune must be a comma, semicolon, or whitespace codepoint.
// Whitespace does not end an expression where an operand is expected, e.g. at
// the beginning of an expression or following an operator or parenthesis. The
// stop character is consumed, so the source is left positioned just after it.
//
// StopOn overrides the effect of any previous StopOn in the parsing options.
// With no arguments, StopOn produces the default termination behavior, which
// is to parse to EOF.
func StopOn(chars ...rune) ParseOption {
	var o eofopt
	v := make([]rune, 0, len(chars))
	have := func(r rune) bool {
		for _, c := range v {
			if r == c {
				return true
			}
		}
		return false
	}
	for _, r := range chars {
		switch {
		case r == ',':
			o.c = true
		case r == ';':
			o.s = true
		case unicode.IsSpace(r):
			if have(r) {
				continue
			}
			v = append(v, r)
		default:
			panic("fpc: cannot stop on " + strconv.QuoteRune(r))
		}
	}
	o.ws = string(v)
	return &o
}

func (o *eofopt) parseOption(p parsectx) parsectx {
	p.ceof = o.c
	p.seof = o.s
	p.wseof = o.ws
	return p
}

// MaxDepth sets the limit on the operator and operand stacks. Expressions
// which would exceed it fail to parse with a *DepthError. Panics if n is not
// positive.
func MaxDepth(n int) ParseOption {
	if n <= 0 {
		panic("fpc: non-positive stack depth " + strconv.Itoa(n))
	}
	return depthopt(n)
}

func (o depthopt) parseOption(p parsectx) parsectx {
	p.depth = int(o)
	return p
}
