package handlers

import (
	"math"

	"github.com/shopspring/decimal"
)

// money rounds an amount half away from zero to two decimals for display.
// decimal cannot represent NaN or infinities, so those render as zero;
// decision handlers reject them before reaching here.
func money(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
