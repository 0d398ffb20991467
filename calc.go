package fpc

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/bits"
)

var (
	// ErrRangeTooNarrow means max < min + precision.
	ErrRangeTooNarrow = errors.New("max < min + precision")
	// ErrNonPositivePrecision means precision <= 0.
	ErrNonPositivePrecision = errors.New("zero or negative precision")
	// ErrEncodingTooWide means the range needs more than 64 bits at the
	// requested precision.
	ErrEncodingTooWide = errors.New("fixed_encoding_width > 64")
)

// MaxWidth is the widest encoding the calculator produces.
const MaxWidth = 64

// minWidth is the narrowest machine integer an encoding uses.
const minWidth = 8

// Params describes a fixed-point encoding of reals in [Min, Max] to within
// Precision. A real x is encoded as the integer code with
//
//	x ≈ (code + Offset) * 2^-FractionalBits
//
// Params is fully populated by Calculate and not modified afterward.
type Params struct {
	// Min, Max, and Precision are the requested range and step.
	Min, Max, Precision *big.Float

	// LowerBound and UpperBound are the extremes of the range in units of
	// 2^-FractionalBits. They and Offset may need more than 64 bits.
	LowerBound, UpperBound, Offset *big.Int

	FractionalBits int
	// IntegerBits is the number of bits used above the binary point, before
	// Width is rounded up to a machine size. It is negative when the
	// precision is coarser than the whole range would need.
	IntegerBits int
	// Width is the size in bits of the machine integer holding a code:
	// 8, 16, 32, or 64.
	Width int

	// Signed is whether codes are signed integers.
	Signed bool
	// LargeOffset is whether Offset is outside the range of int64.
	LargeOffset bool

	// Err is the reason the calculation failed, or nil.
	Err error
}

// calcPrec is the working precision of bound calculations. It matches the
// 64-bit mantissa the tool has always computed with.
const calcPrec = 64

// CalculateFloat64 is Calculate for float64 inputs. NaN inputs are rejected.
func CalculateFloat64(min, max, precision float64) (*Params, error) {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsNaN(precision) {
		return nil, fmt.Errorf("fpc: NaN in min %g, max %g, precision %g", min, max, precision)
	}
	return Calculate(big.NewFloat(min), big.NewFloat(max), big.NewFloat(precision))
}

// Calculate derives the narrowest fixed-point encoding of [min, max] with a
// step no larger than precision. The calculation fails with
// ErrRangeTooNarrow, ErrNonPositivePrecision, or ErrEncodingTooWide; on
// failure the returned Params holds what was computed up to that point and
// its Err is the returned error.
//
// Calculate is deterministic: equal inputs give equal results.
func Calculate(min, max, precision *big.Float) (*Params, error) {
	p := &Params{
		Min:       new(big.Float).Copy(min),
		Max:       new(big.Float).Copy(max),
		Precision: new(big.Float).Copy(precision),
	}
	if err := p.calculate(); err != nil {
		p.Err = err
		return p, err
	}
	return p, nil
}

func (p *Params) calculate() error {
	prec := workingPrec(p.Min, p.Max, p.Precision)
	if tooNarrow(p.Min, p.Max, p.Precision, prec) {
		return ErrRangeTooNarrow
	}
	if p.Precision.Sign() <= 0 {
		return ErrNonPositivePrecision
	}

	// precision = mant * 2^exp with 0.5 <= mant < 1, so floor(log2(precision))
	// is exp-1 and 2^-FractionalBits is the largest power of two that is no
	// larger than precision.
	exp := p.Precision.MantExp(nil)
	p.FractionalBits = 1 - exp

	if p.Min.IsInf() || p.Max.IsInf() || p.Precision.IsInf() {
		return fmt.Errorf("%w: unbounded range", ErrEncodingTooWide)
	}
	// Widen the range by half a step on each side before rounding inward to
	// the grid, so the grid is centered on the requested bounds. Rounding
	// each sum toward the inside keeps ceil and floor exact: they never step
	// past a bound that is representable at the working precision.
	half := new(big.Float).SetMantExp(p.Precision, -1)
	lo := new(big.Float).SetPrec(prec).SetMode(big.ToPositiveInf).Sub(p.Min, half)
	hi := new(big.Float).SetPrec(prec).SetMode(big.ToNegativeInf).Add(p.Max, half)
	p.LowerBound = ceil(lo.SetMantExp(lo, p.FractionalBits))
	p.UpperBound = floor(hi.SetMantExp(hi, p.FractionalBits))

	// ceil(log2(upper - lower + 1)) is the bit length of upper - lower.
	span := new(big.Int).Sub(p.UpperBound, p.LowerBound)
	width := 0
	if span.Sign() > 0 {
		width = span.BitLen()
	}
	p.Width = width
	p.IntegerBits = width - p.FractionalBits
	if width > MaxWidth {
		return fmt.Errorf("%w: need %d bits", ErrEncodingTooWide, width)
	}
	p.Width = machineWidth(width)

	p.Offset = new(big.Int).Set(p.LowerBound)
	// LargeOffset describes the lower bound even when the offset is dropped
	// below.
	p.LargeOffset = !p.Offset.IsInt64()
	if p.Min.Sign() < 0 {
		// Signed codes without an offset cover
		// [-2^(Width-1), 2^(Width-1)-1].
		lim := new(big.Int).Lsh(big.NewInt(1), uint(p.Width-1))
		if p.UpperBound.Cmp(lim) < 0 && p.LowerBound.Cmp(lim.Neg(lim)) >= 0 {
			p.Signed = true
			p.Offset.SetInt64(0)
		}
	} else {
		// Unsigned codes without an offset cover [0, 2^Width-1].
		lim := new(big.Int).Lsh(big.NewInt(1), uint(p.Width))
		if p.UpperBound.Cmp(lim) < 0 {
			p.Offset.SetInt64(0)
		}
	}
	return nil
}

// workingPrec is the precision for bound arithmetic: at least calcPrec, and
// enough for every input.
func workingPrec(xs ...*big.Float) uint {
	prec := uint(calcPrec)
	for _, x := range xs {
		if x.Prec() > prec {
			prec = x.Prec()
		}
	}
	return prec
}

// tooNarrow reports whether max < min + precision. Like a comparison with NaN,
// it is false when min + precision is undefined.
func tooNarrow(min, max, precision *big.Float, prec uint) bool {
	if min.IsInf() && precision.IsInf() && min.Signbit() != precision.Signbit() {
		return false
	}
	sum := new(big.Float).SetPrec(prec).Add(min, precision)
	return max.Cmp(sum) < 0
}

// machineWidth rounds a bit count up to the next machine integer size.
func machineWidth(width int) int {
	if width < minWidth {
		return minWidth
	}
	return 1 << bits.Len(uint(width-1))
}

// ceil returns the least integer not less than finite x.
func ceil(x *big.Float) *big.Int {
	i, acc := x.Int(nil)
	if acc == big.Below {
		i.Add(i, big.NewInt(1))
	}
	return i
}

// floor returns the greatest integer not greater than finite x.
func floor(x *big.Float) *big.Int {
	i, acc := x.Int(nil)
	if acc == big.Above {
		i.Sub(i, big.NewInt(1))
	}
	return i
}
