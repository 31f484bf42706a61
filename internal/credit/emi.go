package credit

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLoanParameters reports a principal, rate, or tenure the
// installment formula cannot accept.
var ErrInvalidLoanParameters = errors.New("invalid loan parameters")

// EMI returns the equated monthly installment for principal repaid over
// tenure months at annualRate percent per year. The result is unrounded.
//
// A zero rate amortizes linearly as principal/tenure. Inputs whose
// installment is not a positive finite number are rejected.
func EMI(principal, annualRate float64, tenure int) (float64, error) {
	switch {
	case !finite(principal) || principal <= 0:
		return 0, fmt.Errorf("%w: principal must be positive, got %v", ErrInvalidLoanParameters, principal)
	case !finite(annualRate) || annualRate < 0:
		return 0, fmt.Errorf("%w: interest rate must be non-negative, got %v", ErrInvalidLoanParameters, annualRate)
	case tenure <= 0:
		return 0, fmt.Errorf("%w: tenure must be positive, got %d", ErrInvalidLoanParameters, tenure)
	}

	r := annualRate / (12 * 100)
	if r == 0 {
		return principal / float64(tenure), nil
	}
	factor := math.Pow(1+r, float64(tenure))
	emi := principal * r * factor / (factor - 1)
	// Pow overflows for extreme rates or tenures, and a rate below float
	// precision leaves factor at exactly 1.
	if !finite(emi) || emi <= 0 {
		return 0, fmt.Errorf("%w: no finite installment for principal %v at %v%% over %d months",
			ErrInvalidLoanParameters, principal, annualRate, tenure)
	}
	return emi, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
