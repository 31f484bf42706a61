// Package credit is the loan decision engine: credit scoring, installment
// math, and the tiered approval policy. Every function is pure; the caller
// supplies the evaluation day.
package credit

import (
	"math"
	"time"

	"github.com/hongminglow/credit-approval/internal/calendar"
	"github.com/hongminglow/credit-approval/internal/models"
)

// Engine composes scoring, pricing, and the approval policy.
type Engine struct{}

// NewEngine returns a ready engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate decides app for customer given their full loan history as of the
// given day. It fails only when the loan parameters cannot be priced.
func (e *Engine) Evaluate(customer models.Customer, history []models.Loan, app Application, asOf time.Time) (Decision, error) {
	day := calendar.DateOf(asOf)
	emi, err := EMI(app.Amount, app.InterestRate, app.Tenure)
	if err != nil {
		return Decision{}, err
	}
	score := Score(history, customer.ApprovedLimit, day)
	return Verdict(customer, history, app, score, emi, day), nil
}

// Originate builds the loan record for an approved decision. Callers must
// not originate rejected decisions.
func (e *Engine) Originate(app Application, d Decision, asOf time.Time) models.Loan {
	start := calendar.DateOf(asOf)
	rate := app.InterestRate
	if d.CorrectedRate != nil {
		rate = *d.CorrectedRate
	}
	return models.Loan{
		CustomerID:         app.CustomerID,
		Amount:             app.Amount,
		Tenure:             app.Tenure,
		InterestRate:       rate,
		MonthlyInstallment: d.MonthlyInstallment,
		// initial value only; servicing may clear it later
		EMIsPaidOnTime: true,
		StartDate:      start,
		EndDate:        calendar.AddMonths(start, app.Tenure),
	}
}

// ApprovedLimit derives a customer's limit from monthly salary: 36 months of
// salary rounded half-to-even to the nearest 100,000.
func ApprovedLimit(monthlySalary int64) int64 {
	return int64(math.RoundToEven(36*float64(monthlySalary)/100_000)) * 100_000
}
