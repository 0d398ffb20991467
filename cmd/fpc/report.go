package main

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zephyrtronium/fpc"
)

// writeReport writes a human-readable description of an encoding.
func writeReport(w io.Writer, p *fpc.Params) error {
	var b strings.Builder
	b.WriteString("[PARAMETERS]\n")
	fmt.Fprintf(&b, "  min: %s (%s requested)\n", actual(p.ActualMin()), requested(p.Min))
	fmt.Fprintf(&b, "  max: %s (%s requested)\n", actual(p.ActualMax()), requested(p.Max))
	fmt.Fprintf(&b, "  precision: %s (%s requested)\n", actual(p.ActualPrecision()), requested(p.Precision))

	b.WriteString("\n[CODE]\n")
	fmt.Fprintf(&b, "  code density: %.1f%%\n", p.CodeDensity())
	if p.LargeOffset {
		fmt.Fprintf(&b, "  offset: about %s\n", new(big.Float).SetInt(p.Offset).Text('g', sigDigits))
	} else {
		fmt.Fprintf(&b, "  offset: %s\n", p.Offset.String())
	}
	lo, hi := p.CodeRange()
	fmt.Fprintf(&b, "  code range: [%s, %s]\n", lo.String(), hi.String())

	b.WriteString("\n[ENCODING]\n")
	fmt.Fprintf(&b, "  machine bit width: %d (%d used)\n", p.Width, p.UsedBits())
	fmt.Fprintf(&b, "    fractional bits: %d\n", p.FractionalBits)
	fmt.Fprintf(&b, "    integer bits: %d\n", p.IntegerBits)
	fmt.Fprintf(&b, "  use signed: %s\n", yesno(p.Signed))
	fmt.Fprintf(&b, "  machine integer type: %s\n", p.MachineType())
	fmt.Fprintf(&b, "  Q notation: %s\n", p.QNotation())

	_, err := io.WriteString(w, b.String())
	return err
}

// sigDigits is the number of significant digits in a long double.
const sigDigits = 19

// requested formats a requested value with the digits of a long double.
func requested(x *big.Float) string {
	return x.Text('g', sigDigits)
}

// actual formats an exact value rounded to the digits of a long double.
func actual(d decimal.Decimal) string {
	// d is coef * 10^exp, where coef has n digits.
	n := int32(len(new(big.Int).Abs(d.Coefficient()).String()))
	if n > sigDigits {
		d = d.Round(sigDigits - n - d.Exponent())
	}
	return d.String()
}

func yesno(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
