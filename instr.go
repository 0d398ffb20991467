package fpc

import (
	"strconv"
	"strings"
)

// instr is one step of a compiled expression. Expressions compile to postfix
// order, so evaluation is a single pass over a stack of operands.
type instr struct {
	op opcode
	// text is the literal for opNum and the variable name for opVar.
	text string
	// pos is the position of the token that produced the instruction.
	pos int
}

type opcode int8

const (
	opNone opcode = iota

	opNum // push num
	opVar // push lookup(text)

	opNeg // negate top
	opAdd // pop r, add r to top
	opSub // pop r, sub r from top
	opMul // pop r, mul top by r
	opDiv // pop r, div top by r
	opPow // pop r, raise top to r
)

var opcodeNames = [...]string{
	opNone: "None",
	opNum:  "Num",
	opVar:  "Var",
	opNeg:  "Neg",
	opAdd:  "+",
	opSub:  "-",
	opMul:  "*",
	opDiv:  "/",
	opPow:  "^",
}

func (op opcode) String() string {
	if op < 0 || int(op) >= len(opcodeNames) {
		return "opcode(" + strconv.Itoa(int(op)) + ")"
	}
	return opcodeNames[op]
}

// binary reports whether the instruction pops two operands.
func (op opcode) binary() bool {
	return opAdd <= op && op <= opPow
}

// infix renders a postfix program as a fully parenthesized infix expression.
func infix(prog []instr) string {
	var stack []string
	for _, in := range prog {
		switch {
		case in.op == opNum, in.op == opVar:
			stack = append(stack, in.text)
		case in.op == opNeg:
			k := len(stack) - 1
			stack[k] = "(-" + stack[k] + ")"
		case in.op.binary():
			k := len(stack) - 2
			var b strings.Builder
			b.WriteByte('(')
			b.WriteString(stack[k])
			b.WriteByte(' ')
			b.WriteString(in.op.String())
			b.WriteByte(' ')
			b.WriteString(stack[k+1])
			b.WriteByte(')')
			stack[k] = b.String()
			stack = stack[:k+1]
		default:
			panic("fpc: invalid instruction " + in.op.String())
		}
	}
	if len(stack) != 1 {
		panic("fpc: inconsistent program: " + strconv.Itoa(len(stack)) + " results")
	}
	return stack[0]
}
