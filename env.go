package fpc

import (
	"fmt"
	"math/big"
)

// DefaultPrec is the default mantissa precision in bits of values computed in
// an environment.
const DefaultPrec = 64

// envSlots is the number of variables an environment holds: one per ASCII
// letter.
const envSlots = 52

// Env is a variable environment for evaluating expressions. Variable names are
// single ASCII letters. An Env belongs to one evaluation or resolution session;
// independent sessions use independent environments. Evaluating expressions
// does not modify the environment, but Set and Resolve do, so an Env must not
// be modified concurrently with any other use.
type Env struct {
	vals [envSlots]*big.Float
	prec uint
}

// EnvOption is an option used when creating an environment.
type EnvOption interface {
	envOption()
}

type (
	varopt struct {
		name rune
		val  *big.Float
	}
	varsopt map[rune]*big.Float
	precopt uint
)

func (varopt) envOption()  {}
func (varsopt) envOption() {}
func (precopt) envOption() {}

// SetVar sets the value of a variable in the environment. The environment
// panics when created with a name that is not an ASCII letter.
func SetVar(name rune, val *big.Float) EnvOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the environment.
func SetVars(vars map[rune]*big.Float) EnvOption {
	return varsopt(vars)
}

// Prec sets the precision of calculations.
func Prec(prec uint) EnvOption {
	return precopt(prec)
}

// NewEnv creates a new environment. If no precision is given, the default is
// DefaultPrec.
func NewEnv(opts ...EnvOption) *Env {
	env := Env{prec: DefaultPrec}
	return env.Clone(opts...)
}

// slot returns the index of a variable name, or -1 if name is not an ASCII
// letter.
func slot(name rune) int {
	switch {
	case 'a' <= name && name <= 'z':
		return int(name - 'a')
	case 'A' <= name && name <= 'Z':
		return int(name-'A') + 26
	default:
		return -1
	}
}

// Set sets the value of a variable, replacing any previous value. The value is
// copied at the environment's precision. Returns an error if name is not an
// ASCII letter.
func (env *Env) Set(name rune, value *big.Float) error {
	k := slot(name)
	if k < 0 {
		return fmt.Errorf("fpc: invalid variable name %q", name)
	}
	env.vals[k] = new(big.Float).SetPrec(env.prec).Set(value)
	return nil
}

// Lookup returns a copy of the value of a variable. The second result is false
// if the variable is unbound, which is distinct from a variable bound to zero.
func (env *Env) Lookup(name rune) (*big.Float, bool) {
	k := slot(name)
	if k < 0 || env.vals[k] == nil {
		return nil, false
	}
	return new(big.Float).Copy(env.vals[k]), true
}

// Unset removes a variable binding.
func (env *Env) Unset(name rune) {
	if k := slot(name); k >= 0 {
		env.vals[k] = nil
	}
}

// Prec returns the precision to which values are computed in the environment.
func (env *Env) Prec() uint {
	return env.prec
}

// Clone creates a copy of an environment and applies options to it.
func (env *Env) Clone(opts ...EnvOption) *Env {
	n := Env{prec: env.prec}
	// First, check for a precision setting. Loop backward so we apply the last
	// precision.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			n.prec = uint(p)
			break
		}
	}
	// Values are never modified in place, so pointers can be shared when the
	// precision is unchanged.
	for k, v := range env.vals {
		switch {
		case v == nil: // do nothing
		case n.prec == env.prec:
			n.vals[k] = v
		default:
			n.vals[k] = new(big.Float).SetPrec(n.prec).Set(v)
		}
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.mustSet(opt.name, opt.val)
		case varsopt:
			for k, v := range opt {
				n.mustSet(k, v)
			}
		case precopt:
			// Already done. Do nothing.
		default:
			panic("fpc: unknown option type")
		}
	}
	return &n
}

func (env *Env) mustSet(name rune, value *big.Float) {
	if err := env.Set(name, value); err != nil {
		panic(err)
	}
}
