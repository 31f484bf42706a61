package models

import "time"

// Loan is an approved (or imported) loan. EndDate is derived once from
// StartDate and Tenure and never recomputed.
type Loan struct {
	ID                 int64     `json:"id"`
	CustomerID         int64     `json:"customer_id"`
	Amount             float64   `json:"loan_amount"`
	Tenure             int       `json:"tenure"`
	InterestRate       float64   `json:"interest_rate"`
	MonthlyInstallment float64   `json:"monthly_installment"`
	EMIsPaidOnTime     bool      `json:"emis_paid_on_time"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
}

// ActiveOn reports whether the loan has not ended before day.
func (l Loan) ActiveOn(day time.Time) bool {
	return !l.EndDate.Before(day)
}
