package credit

import (
	"math"

	"github.com/shopspring/decimal"
)

// CalculateEMI returns the fixed monthly installment of an amortized loan,
// rounded to cents. A zero rate splits the principal evenly over the term.
func CalculateEMI(principal, annualRatePercent float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}

	r := annualRatePercent / 12 / 100
	var emi float64
	if r == 0 {
		emi = principal / float64(termMonths)
	} else {
		growth := math.Pow(1+r, float64(termMonths))
		emi = principal * r * growth / (growth - 1)
	}

	return RoundCents(emi)
}

func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
