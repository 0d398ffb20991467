package fpc

import (
	"io"
	"strings"
)

// Expr = num | name | Neg | Add | Sub | Mul | Div | Pow | '(' Expr ')'
// Neg = '-' Expr, only at the start of an Expr or directly after an operator
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr
// Div = Expr '/' Expr
// Pow = Expr '^' Expr

// Expr is a parsed expression that can be evaluated in an environment.
type Expr struct {
	// prog is the expression in postfix order.
	prog []instr
	// names is the list of variable names used in the expression.
	names []rune
	// depth is the largest number of operands on the stack at once.
	depth int
}

// Parse parses a single expression so it can be evaluated in an environment.
// The given options are applied in order.
//
// Parsing uses operator precedence: operands are emitted as they are scanned,
// and operators wait on a stack until an operator of lower or equal precedence,
// a closing parenthesis, or the end of the expression arrives. Both the
// operator stack and the operand stack are limited to DefaultMaxDepth entries
// unless changed with MaxDepth.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	scan := lex(src)
	p := parsectx{depth: DefaultMaxDepth}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	sy := shunter{limit: p.depth}
	var (
		// operand is whether the next token must begin an operand.
		operand = true
		// start is whether the parser is at the start of the expression or
		// of a parenthesized subexpression.
		start = true
		// neg is whether a unary minus is waiting for its operand.
		neg bool
	)
	for {
		if operand {
			// Whitespace never ends an expression where an operand is due.
			tok, err := scan.next("")
			if err != nil {
				return nil, err
			}
			switch tok.kind {
			case tokenNum:
				if err := sy.operand(instr{op: opNum, text: tok.text, pos: tok.pos}, neg); err != nil {
					return nil, err
				}
				operand, start, neg = false, false, false
			case tokenIdent:
				sy.names[tok.text[0]] = true
				if err := sy.operand(instr{op: opVar, text: tok.text, pos: tok.pos}, neg); err != nil {
					return nil, err
				}
				operand, start, neg = false, false, false
			case tokenOp:
				switch {
				case tok.text != "-" || neg:
					return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
				case start:
					// -x at the start of an expression is 0 - x.
					if err := sy.operand(instr{op: opNum, text: "0", pos: tok.pos}, false); err != nil {
						return nil, err
					}
					if err := sy.binary(binop("-"), tok.pos); err != nil {
						return nil, err
					}
					start = false
				default:
					// x op -y negates y alone.
					neg = true
				}
			case tokenOpen:
				if err := sy.open(tok.pos, neg); err != nil {
					return nil, err
				}
				start, neg = true, false
			case tokenClose, tokenEOF:
				return nil, &EmptyExpressionError{Col: tok.pos, End: tok.text}
			case tokenSep:
				if p.stops(tok.text) {
					return nil, &EmptyExpressionError{Col: tok.pos, End: tok.text}
				}
				return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
			default:
				panic("fpc: unknown token: " + tok.String())
			}
			continue
		}
		tok, err := scan.next(p.wseof)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenOp:
			op := binop(tok.text)
			if op.op == opNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			if err := sy.binary(op, tok.pos); err != nil {
				return nil, err
			}
			operand = true
		case tokenClose:
			if err := sy.close(tok.pos); err != nil {
				return nil, err
			}
		case tokenNum, tokenIdent, tokenOpen:
			return nil, &OperandError{Col: tok.pos, Operand: tok.text}
		case tokenSep:
			if !p.stops(tok.text) {
				return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
			}
			return sy.finish()
		case tokenEOF:
			return sy.finish()
		default:
			panic("fpc: unknown token: " + tok.String())
		}
	}
}

// stops reports whether a separator ends expressions.
func (p *parsectx) stops(sep string) bool {
	switch sep {
	case ",":
		return p.ceof
	case ";":
		return p.seof
	default:
		panic("fpc: invalid separator " + sep)
	}
}

// pending is an entry on the operator stack. An open parenthesis is an entry
// with an op of opNone; it absorbs applications until its close arrives.
type pending struct {
	op  operator
	pos int
	// neg is whether a parenthesized group is negated once closed.
	neg bool
}

// shunter holds the state of the operator precedence parse.
type shunter struct {
	prog   []instr
	ops    []pending
	height int
	depth  int
	limit  int
	names  [128]bool
}

// emit appends an instruction to the program, tracking the height the operand
// stack will reach when the program runs.
func (sy *shunter) emit(in instr) error {
	switch {
	case in.op == opNum, in.op == opVar:
		sy.height++
		if sy.height > sy.limit {
			return &DepthError{Col: in.pos, Max: sy.limit}
		}
		if sy.height > sy.depth {
			sy.depth = sy.height
		}
	case in.op.binary():
		sy.height--
	}
	sy.prog = append(sy.prog, in)
	return nil
}

// operand emits a number or variable, negated if neg.
func (sy *shunter) operand(in instr, neg bool) error {
	if err := sy.emit(in); err != nil {
		return err
	}
	if neg {
		return sy.emit(instr{op: opNeg, pos: in.pos})
	}
	return nil
}

// push adds an entry to the operator stack.
func (sy *shunter) push(e pending) error {
	if len(sy.ops) >= sy.limit {
		return &DepthError{Col: e.pos, Max: sy.limit}
	}
	sy.ops = append(sy.ops, e)
	return nil
}

// binary applies every waiting operator that binds at least as tightly as op,
// then pushes op.
func (sy *shunter) binary(op operator, pos int) error {
	for len(sy.ops) > 0 {
		top := sy.ops[len(sy.ops)-1]
		if top.op.op == opNone || !top.op.before(op) {
			break
		}
		sy.ops = sy.ops[:len(sy.ops)-1]
		if err := sy.emit(instr{op: top.op.op, pos: top.pos}); err != nil {
			return err
		}
	}
	return sy.push(pending{op: op, pos: pos})
}

func (sy *shunter) open(pos int, neg bool) error {
	return sy.push(pending{pos: pos, neg: neg})
}

// close applies operators down to the innermost open parenthesis and removes
// it.
func (sy *shunter) close(pos int) error {
	for len(sy.ops) > 0 {
		top := sy.ops[len(sy.ops)-1]
		sy.ops = sy.ops[:len(sy.ops)-1]
		if top.op.op == opNone {
			if top.neg {
				return sy.emit(instr{op: opNeg, pos: top.pos})
			}
			return nil
		}
		if err := sy.emit(instr{op: top.op.op, pos: top.pos}); err != nil {
			return err
		}
	}
	return &BracketError{Col: pos, Right: ")"}
}

// finish applies all remaining operators and builds the expression.
func (sy *shunter) finish() (*Expr, error) {
	for len(sy.ops) > 0 {
		top := sy.ops[len(sy.ops)-1]
		sy.ops = sy.ops[:len(sy.ops)-1]
		if top.op.op == opNone {
			return nil, &BracketError{Col: top.pos, Left: "("}
		}
		if err := sy.emit(instr{op: top.op.op, pos: top.pos}); err != nil {
			return nil, err
		}
	}
	ex := Expr{prog: sy.prog, depth: sy.depth}
	for r, ok := range sy.names {
		if ok {
			ex.names = append(ex.names, rune(r))
		}
	}
	return &ex, nil
}

// ParseString is a shortcut to parse an expression from a string.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// Vars returns the variable names used when evaluating the expression, in
// increasing order.
func (e *Expr) Vars() []rune {
	return append(([]rune)(nil), e.names...)
}

// Uses reports whether the expression refers to the variable name.
func (e *Expr) Uses(name rune) bool {
	for _, r := range e.names {
		if r == name {
			return true
		}
	}
	return false
}

// String creates a fully parenthesized representation of the parsed
// expression.
func (e *Expr) String() string {
	return infix(e.prog)
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the instruction to emit when this operator is applied.
	op opcode
}

// before reports whether p, already waiting on the stack, must be applied
// before next is pushed.
func (p operator) before(next operator) bool {
	if p.prec != next.prec {
		return p.prec > next.prec
	}
	return !next.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of opNone.
//
// Every operator is left-associative, including exponentiation: 2^3^2 is
// (2^3)^2.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, opAdd}
	case "-":
		return operator{1, false, opSub}
	case "*":
		return operator{5, false, opMul}
	case "/":
		return operator{5, false, opDiv}
	case "^":
		return operator{15, false, opPow}
	default:
		return operator{}
	}
}
