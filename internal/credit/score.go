package credit

import (
	"math"
	"time"

	"github.com/hongminglow/credit-approval/internal/models"
)

// Score weights and caps.
const (
	punctualityWeight = 30.0

	volumeCap    = 10
	volumeWeight = 2.0

	recencyCap    = 5
	recencyWeight = 3.0

	principalUnit   = 1_000_000.0
	principalCap    = 10.0
	principalWeight = 3.0

	MaxScore = 100
)

// ActiveDebt sums the principal of loans that have not ended before asOf.
func ActiveDebt(loans []models.Loan, asOf time.Time) float64 {
	var total float64
	for _, l := range loans {
		if l.ActiveOn(asOf) {
			total += l.Amount
		}
	}
	return total
}

// ActiveInstallments sums the monthly installment of loans that have not
// ended before asOf.
func ActiveInstallments(loans []models.Loan, asOf time.Time) float64 {
	var total float64
	for _, l := range loans {
		if l.ActiveOn(asOf) {
			total += l.MonthlyInstallment
		}
	}
	return total
}

// overLimit is the hard gate shared by scoring and approval.
func overLimit(loans []models.Loan, approvedLimit int64, asOf time.Time) bool {
	return ActiveDebt(loans, asOf) > float64(approvedLimit)
}

// Score rates a loan history on a 0-100 scale as of the given day. A history
// whose active debt exceeds the approved limit scores zero.
func Score(loans []models.Loan, approvedLimit int64, asOf time.Time) int {
	if overLimit(loans, approvedLimit, asOf) {
		return 0
	}

	total := len(loans)
	var onTime, thisYear int
	var principal float64
	for _, l := range loans {
		if l.EMIsPaidOnTime {
			onTime++
		}
		if l.StartDate.Year() == asOf.Year() {
			thisYear++
		}
		principal += l.Amount
	}

	var sum float64
	if total > 0 {
		sum += float64(onTime) / float64(total) * punctualityWeight
	}
	sum += float64(min(total, volumeCap)) * volumeWeight
	sum += float64(min(thisYear, recencyCap)) * recencyWeight
	sum += math.Min(principal/principalUnit, principalCap) * principalWeight

	// floor first, then cap
	return min(MaxScore, int(math.Floor(sum)))
}
