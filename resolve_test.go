package fpc_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/fpc"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name          string
		min, max, p   string
		wmin, wmax, w float64
	}{
		{"constants", "0", "10", "1", 0, 10, 1},
		{"arith", "-2^7", "2^7-1", "2^-4", -128, 127, 0.0625},
		{"min-from-max", "h", "10", "1", 10, 10, 1},
		{"max-from-min", "10", "l+255", "1", 10, 265, 1},
		{"precision-from-range", "-1", "1", "(h-l)/2^10", -1, 1, 1.0 / 512},
		{"chain", "h-100", "p*1000", "1", 900, 1000, 1},
		{"two-passes", "h-p", "1000", "h/1000", 999, 1000, 1},
		{"spaces", " 0 ", "\t255\n", " 1", 0, 255, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := fpc.Resolve(c.min, c.max, c.p)
			require.NoError(t, err)
			f, _ := r.Min.Float64()
			assert.Equal(t, c.wmin, f, "min")
			f, _ = r.Max.Float64()
			assert.Equal(t, c.wmax, f, "max")
			f, _ = r.Precision.Float64()
			assert.Equal(t, c.w, f, "precision")
		})
	}
}

func TestResolveBindsParams(t *testing.T) {
	env := fpc.NewEnv(fpc.SetVar('w', big.NewFloat(8)))
	r, err := env.Resolve("0", "2^w-1", "1")
	require.NoError(t, err)
	f, _ := r.Max.Float64()
	assert.Equal(t, 255.0, f)
	for _, c := range []struct {
		name rune
		want float64
	}{{'l', 0}, {'h', 255}, {'p', 1}, {'w', 8}} {
		v, ok := env.Lookup(c.name)
		require.True(t, ok, "%c unbound", c.name)
		f, _ := v.Float64()
		assert.Equal(t, c.want, f, "%c", c.name)
	}
	assert.Equal(t, 'l', fpc.ParamMin.Var())
	assert.Equal(t, 'h', fpc.ParamMax.Var())
	assert.Equal(t, 'p', fpc.ParamPrecision.Var())
}

func TestResolveReplacesParamVars(t *testing.T) {
	env := fpc.NewEnv(fpc.SetVars(map[rune]*big.Float{
		'l': big.NewFloat(-5),
		'h': big.NewFloat(100),
		'p': big.NewFloat(7),
	}))
	r, err := env.Resolve("h", "10", "1")
	require.NoError(t, err)
	f, _ := r.Min.Float64()
	assert.Equal(t, 10.0, f, "min uses the bound h")

	// A second resolution in the same environment does not see the first.
	r, err = env.Resolve("h", "20", "1")
	require.NoError(t, err)
	f, _ = r.Min.Float64()
	assert.Equal(t, 20.0, f)
	f, _ = r.Max.Float64()
	assert.Equal(t, 20.0, f)

	// Earlier bindings do not satisfy a cycle.
	_, err = env.Resolve("h", "l", "p")
	assert.ErrorIs(t, err, fpc.ErrUnresolvable)
}

func TestResolveUnresolvable(t *testing.T) {
	cases := []struct {
		name        string
		min, max, p string
		pending     []fpc.Param
	}{
		{"cycle", "h", "l", "1", []fpc.Param{fpc.ParamMin, fpc.ParamMax}},
		{"self", "l", "1", "1", []fpc.Param{fpc.ParamMin}},
		{"all", "p", "l", "h", []fpc.Param{fpc.ParamMin, fpc.ParamMax, fpc.ParamPrecision}},
		{"unbound", "0", "x", "1", []fpc.Param{fpc.ParamMax}},
		{"domain", "0", "1", "0/0", []fpc.Param{fpc.ParamPrecision}},
		{"behind-cycle", "h", "l", "h-l", []fpc.Param{fpc.ParamMin, fpc.ParamMax, fpc.ParamPrecision}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := fpc.Resolve(c.min, c.max, c.p)
			assert.Nil(t, r)
			require.ErrorIs(t, err, fpc.ErrUnresolvable)
			var ue *fpc.UnresolvableError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, c.pending, ue.Pending)
			require.Len(t, ue.Errs, len(c.pending))
			for i, err := range ue.Errs {
				assert.ErrorIs(t, err, fpc.ErrExpression, "%v", c.pending[i])
			}
		})
	}
}

func TestResolveUnresolvableMessage(t *testing.T) {
	_, err := fpc.Resolve("h", "l", "1")
	require.Error(t, err)
	assert.Equal(t, `cannot resolve min, max: min: 1: undefined variable: "h"; max: 1: undefined variable: "l"`, err.Error())
}

func TestResolveParseError(t *testing.T) {
	cases := []struct {
		name        string
		min, max, p string
		param       string
		err         error
	}{
		{"min", "2+", "1", "1", "min", new(fpc.EmptyExpressionError)},
		{"max", "0", "(1", "1", "max", new(fpc.BracketError)},
		{"precision", "0", "1", "$", "precision", new(fpc.LexError)},
		// A parse error is reported even when another expression would also
		// never resolve.
		{"with-cycle", "h", "l", "1 1", "precision", new(fpc.OperandError)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := fpc.Resolve(c.min, c.max, c.p)
			assert.Nil(t, r)
			require.Error(t, err)
			assert.False(t, errors.Is(err, fpc.ErrUnresolvable), "parse error reported as unresolvable: %v", err)
			assert.ErrorIs(t, err, fpc.ErrExpression)
			assert.IsType(t, c.err, errors.Unwrap(err))
			assert.Regexp(t, `^`+c.param+`: `, err.Error())
		})
	}
}

func TestResolveAndCalculate(t *testing.T) {
	p, err := fpc.ResolveAndCalculate("1-h", "2^7", "1")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Width)
	assert.Equal(t, 0, p.FractionalBits)
	assert.False(t, p.Signed, "-127 to 128 fits 8 bits only with an offset")
	assert.Equal(t, int64(-127), p.Offset.Int64())

	p, err = fpc.ResolveAndCalculate("-2^7", "w", "1", fpc.SetVar('w', big.NewFloat(127)))
	require.NoError(t, err)
	assert.True(t, p.Signed)
	assert.Equal(t, "int8_t", p.MachineType())

	_, err = fpc.ResolveAndCalculate("h", "l", "1")
	assert.ErrorIs(t, err, fpc.ErrUnresolvable)

	_, err = fpc.ResolveAndCalculate("5", "3", "1")
	assert.ErrorIs(t, err, fpc.ErrRangeTooNarrow)

	_, err = fpc.ResolveAndCalculate("0", "2^(1e10+0.5)", "1")
	assert.ErrorIs(t, err, fpc.ErrEncodingTooWide)
}

func TestParamString(t *testing.T) {
	assert.Equal(t, "min", fpc.ParamMin.String())
	assert.Equal(t, "max", fpc.ParamMax.String())
	assert.Equal(t, "precision", fpc.ParamPrecision.String())
	assert.Equal(t, "Param(7)", fpc.Param(7).String())
}
