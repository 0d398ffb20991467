package fpc

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Param identifies one of the three quantities the resolver computes.
type Param int

const (
	ParamMin Param = iota
	ParamMax
	ParamPrecision

	numParams
)

var paramNames = [numParams]string{"min", "max", "precision"}

// paramVars are the reserved variable names under which resolved parameters
// are bound, so each expression may refer to the others.
var paramVars = [numParams]rune{'l', 'h', 'p'}

func (p Param) String() string {
	if p < 0 || p >= numParams {
		return fmt.Sprintf("Param(%d)", int(p))
	}
	return paramNames[p]
}

// Var returns the variable name bound to the parameter once it resolves.
func (p Param) Var() rune {
	return paramVars[p]
}

// ErrUnresolvable is the category of errors from expressions which depend on
// each other in a cycle, or which otherwise never evaluate.
var ErrUnresolvable = errors.New("unresolvable parameters")

// UnresolvableError lists the parameters which made no progress during a full
// resolution pass, with the error each one last produced.
type UnresolvableError struct {
	Pending []Param
	Errs    []error
}

func (err *UnresolvableError) Error() string {
	var b strings.Builder
	b.WriteString("cannot resolve ")
	for i, p := range err.Pending {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	for i, p := range err.Pending {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(p.String())
		b.WriteString(": ")
		b.WriteString(err.Errs[i].Error())
	}
	return b.String()
}

func (err *UnresolvableError) Unwrap() error {
	return ErrUnresolvable
}

// Resolved holds the resolved values of the three parameters.
type Resolved struct {
	Min, Max, Precision *big.Float
}

// Resolve evaluates the expressions for min, max, and precision in a new
// environment created with opts. See (*Env).Resolve.
func Resolve(minExpr, maxExpr, precExpr string, opts ...EnvOption) (*Resolved, error) {
	return NewEnv(opts...).Resolve(minExpr, maxExpr, precExpr)
}

// Resolve evaluates the expressions for min, max, and precision, which may
// refer to each other through the variables l, h, and p respectively. Any
// existing bindings of l, h, and p in env are removed first, so they are
// defined only by resolution.
//
// Each expression is parsed once; a parse error is returned immediately, since
// no binding can fix it. Then the pending expressions are evaluated in passes.
// An expression which evaluates is bound to its variable in env and leaves the
// pending set; one which fails is retried on the next pass. Resolution ends
// when nothing is pending, or with an *UnresolvableError when a full pass
// resolves nothing, as with min = h and max = l.
func (env *Env) Resolve(minExpr, maxExpr, precExpr string) (*Resolved, error) {
	srcs := [numParams]string{minExpr, maxExpr, precExpr}
	var exprs [numParams]*Expr
	for i, src := range srcs {
		e, err := ParseString(src)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", Param(i), err)
		}
		exprs[i] = e
	}
	for _, r := range paramVars {
		env.Unset(r)
	}
	var vals [numParams]*big.Float
	pending := []Param{ParamMin, ParamMax, ParamPrecision}
	for len(pending) > 0 {
		var (
			next []Param
			errs []error
		)
		for _, p := range pending {
			v, err := env.Eval(exprs[p])
			if err != nil {
				next = append(next, p)
				errs = append(errs, err)
				continue
			}
			vals[p] = v
			if err := env.Set(p.Var(), v); err != nil {
				panic(err)
			}
		}
		if len(next) == len(pending) {
			return nil, &UnresolvableError{Pending: next, Errs: errs}
		}
		pending = next
	}
	return &Resolved{Min: vals[ParamMin], Max: vals[ParamMax], Precision: vals[ParamPrecision]}, nil
}

// ResolveAndCalculate resolves the three expressions in a new environment and
// calculates the fixed-point encoding for the result.
func ResolveAndCalculate(minExpr, maxExpr, precExpr string, opts ...EnvOption) (*Params, error) {
	r, err := Resolve(minExpr, maxExpr, precExpr, opts...)
	if err != nil {
		return nil, err
	}
	return Calculate(r.Min, r.Max, r.Precision)
}
