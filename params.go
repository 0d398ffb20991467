package fpc

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// scaled returns the exact decimal value of i * 2^-frac.
func scaled(i *big.Int, frac int) decimal.Decimal {
	if frac <= 0 {
		return decimal.NewFromBigInt(new(big.Int).Lsh(i, uint(-frac)), 0)
	}
	// i / 2^frac == i * 5^frac / 10^frac
	f := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(frac)), nil)
	return decimal.NewFromBigInt(f.Mul(f, i), -int32(frac))
}

// ActualMin returns the exact value of the lowest code.
func (p *Params) ActualMin() decimal.Decimal {
	return scaled(p.LowerBound, p.FractionalBits)
}

// ActualMax returns the exact value of the highest code.
func (p *Params) ActualMax() decimal.Decimal {
	return scaled(p.UpperBound, p.FractionalBits)
}

// ActualPrecision returns the exact step between consecutive codes,
// 2^-FractionalBits.
func (p *Params) ActualPrecision() decimal.Decimal {
	return scaled(big.NewInt(1), p.FractionalBits)
}

// OffsetValue returns the exact real value of Offset.
func (p *Params) OffsetValue() decimal.Decimal {
	return scaled(p.Offset, p.FractionalBits)
}

// Decode returns the exact real value a code represents.
func (p *Params) Decode(code *big.Int) decimal.Decimal {
	return scaled(new(big.Int).Add(code, p.Offset), p.FractionalBits)
}

// CodeRange returns the lowest and highest codes, the bounds minus the offset.
func (p *Params) CodeRange() (lo, hi *big.Int) {
	lo = new(big.Int).Sub(p.LowerBound, p.Offset)
	hi = new(big.Int).Sub(p.UpperBound, p.Offset)
	return lo, hi
}

// UsedBits returns the number of bits codes need before rounding up to a
// machine width.
func (p *Params) UsedBits() int {
	return p.IntegerBits + p.FractionalBits
}

// CodeDensity returns the ratio of the actual step to the requested precision
// as a percentage. It is in (50, 100].
func (p *Params) CodeDensity() float64 {
	step := new(big.Float).SetMantExp(big.NewFloat(1), -p.FractionalBits)
	d, _ := step.Quo(step, p.Precision).Float64()
	return 100 * d
}

// MachineType returns the C integer type that holds codes, e.g. "int16_t".
func (p *Params) MachineType() string {
	if p.Signed {
		return fmt.Sprintf("int%d_t", p.Width)
	}
	return fmt.Sprintf("uint%d_t", p.Width)
}

// QNotation returns the encoding in Q notation, e.g. "Qs7.8" for a signed
// 16-bit code with 8 fractional bits.
func (p *Params) QNotation() string {
	s, ib := 'u', p.Width-p.FractionalBits
	if p.Signed {
		s, ib = 's', ib-1
	}
	return fmt.Sprintf("Q%c%d.%d", s, ib, p.FractionalBits)
}
