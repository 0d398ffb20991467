package fpc

import (
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// Eval evaluates an expression in the environment and returns the result. If
// an error occurs, e.g. a missing variable definition or an undefined
// operation like 0/0, then the result is nil. The environment is not modified.
func (env *Env) Eval(e *Expr) (*big.Float, error) {
	// The operand stack lives only as long as this call.
	stack := make([]*big.Float, 0, e.depth)
	for _, in := range e.prog {
		switch {
		case in.op == opNum:
			stack = append(stack, env.num(in.text))
		case in.op == opVar:
			v := env.vals[slot(rune(in.text[0]))]
			if v == nil {
				return nil, &NameError{Name: in.text, Col: in.pos}
			}
			stack = append(stack, new(big.Float).SetPrec(env.prec).Set(v))
		case in.op == opNeg:
			v := stack[len(stack)-1]
			v.Neg(v)
		case in.op.binary():
			r := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if err := apply(in, stack[len(stack)-1], r); err != nil {
				return nil, err
			}
		default:
			panic("fpc: invalid instruction " + in.op.String())
		}
	}
	if len(stack) != 1 {
		panic("fpc: inconsistent stack: " + strconv.Itoa(len(stack)) + " items (bad program?)")
	}
	return stack[0], nil
}

// num parses a number literal at the environment's precision.
func (env *Env) num(s string) *big.Float {
	r, _, err := new(big.Float).SetPrec(env.prec).Parse(s, 10)
	switch {
	case err == nil: // do nothing
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// There isn't realistically any better way to detect this error.
		// Literals are never signed, so the value is +inf or, with a
		// negative exponent, +0.
		r = new(big.Float).SetPrec(env.prec)
		if !negExp(s) {
			r.SetInf(false)
		}
	default:
		panic("fpc: invalid number: " + s + " (" + err.Error() + ")")
	}
	return r
}

// negExp reports whether a number literal has a negative exponent.
func negExp(s string) bool {
	i := strings.IndexAny(s, "eE")
	return i >= 0 && i+1 < len(s) && s[i+1] == '-'
}

// apply sets l to the result of a binary operator applied to l and r.
func apply(in instr, l, r *big.Float) (err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if _, ok := p.(big.ErrNaN); !ok {
			panic(p)
		}
		err = &DomainError{X: r, Func: in.op.String(), Col: in.pos}
	}()
	switch in.op {
	case opAdd:
		l.Add(l, r)
	case opSub:
		l.Sub(l, r)
	case opMul:
		l.Mul(l, r)
	case opDiv:
		l.Quo(l, r)
	case opPow:
		if err := pow(l, l, r); err != nil {
			err.Col = in.pos
			return err
		}
	default:
		panic("fpc: invalid binary operator " + in.op.String())
	}
	return nil
}

// pow sets z to x^y. z and x may be the same value.
func pow(z, x, y *big.Float) *DomainError {
	switch {
	case y.Sign() == 0:
		z.SetInt64(1)
		return nil
	case x.IsInf() || y.IsInf():
		// Only limits are left; float64 has all of them.
		xf, _ := x.Float64()
		yf, _ := y.Float64()
		f := math.Pow(xf, yf)
		if math.IsNaN(f) {
			return &DomainError{X: x, Func: "^"}
		}
		z.SetFloat64(f)
		return nil
	case x.Sign() == 0:
		if y.Sign() > 0 {
			z.SetInt64(0)
		} else {
			z.SetInf(false)
		}
		return nil
	}
	if !y.IsInt() {
		if x.Signbit() {
			return &DomainError{X: x, Func: "^"}
		}
		realpow(z, x, y, false)
		return nil
	}
	if n, acc := y.Int64(); acc == big.Exact {
		intpow(z, x, n)
		return nil
	}
	// The exponent is an integer too large for repeated squaring.
	yi, _ := y.Int(nil)
	realpow(z, new(big.Float).Abs(x), y, x.Signbit() && yi.Bit(0) == 1)
	return nil
}

// realpow sets z to x^y for finite positive x and finite nonzero y, negated
// if neg is true.
func realpow(z, x, y *big.Float, neg bool) {
	// log2(x^y) = y * log2(mant * 2^exp), with 0.5 <= mant < 1. Results past
	// the exponent range are an infinity or zero.
	mant := new(big.Float)
	exp := x.MantExp(mant)
	m, _ := mant.Float64()
	yf, _ := y.Float64()
	t := yf * (float64(exp) + math.Log2(m))
	switch {
	case t > big.MaxExp:
		z.SetInf(neg)
		return
	case t < big.MinExp:
		z.SetInt64(0)
	default:
		// Pow doesn't always store its result in its first argument.
		r := bigfloat.Pow(new(big.Float).SetPrec(z.Prec()), x, y)
		z.Set(r)
	}
	if neg {
		z.Neg(z)
	}
}

// intpow sets z to x^n by repeated squaring with guard bits.
func intpow(z, x *big.Float, n int64) {
	prec := z.Prec() + 64
	u := uint64(n)
	if n < 0 {
		u = uint64(-n)
	}
	b := new(big.Float).SetPrec(prec).Set(x)
	r := new(big.Float).SetPrec(prec).SetInt64(1)
	for u > 0 {
		if u&1 == 1 {
			r.Mul(r, b)
		}
		u >>= 1
		if u > 0 {
			b.Mul(b, b)
		}
	}
	if n < 0 {
		r.Quo(new(big.Float).SetInt64(1), r)
	}
	z.Set(r)
}

// Eval is a shortcut to parse an expression and return its result in env. A
// nil env is an empty environment.
func Eval(src io.RuneScanner, env *Env, opts ...ParseOption) (*big.Float, error) {
	if env == nil {
		env = NewEnv()
	}
	a, err := Parse(src, opts...)
	if err != nil {
		return nil, err
	}
	return env.Eval(a)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, env *Env, opts ...ParseOption) (*big.Float, error) {
	return Eval(strings.NewReader(src), env, opts...)
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation environment. It implements InputError.
type NameError struct {
	// Name is the name that was missing.
	Name string
	// Col is the position of the name in the expression.
	Col int
}

func (err *NameError) Error() string {
	return errpos(err.Col, "undefined variable: "+strconv.Quote(err.Name))
}

func (err *NameError) Pos() int {
	return err.Col
}

func (err *NameError) Unwrap() error {
	return ErrExpression
}

// DomainError is an error returned when an operator is applied to arguments
// outside its domain, e.g. 0/0 or (-8)^(1/3).
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Func is the operator.
	Func string
	// Col is the position of the operator in the expression.
	Col int
}

func (err *DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	return errpos(err.Col, r)
}

func (err *DomainError) Pos() int {
	return err.Col
}

func (err *DomainError) Unwrap() error {
	return ErrExpression
}

var _ InputError = (*DomainError)(nil)
