package credit

import (
	"time"

	"github.com/hongminglow/credit-approval/internal/models"
)

// Rejection reasons.
const (
	ReasonDebtOverLimit   = "current debt exceeds approved limit"
	ReasonEMIOverSalary   = "total EMI exceeds 50% of salary"
	ReasonScoreTooLow     = "credit score too low"
	maxSalaryShareForEMIs = 0.5
)

// Rate floors applied to the middle score tiers.
const (
	FairTierMinRate = 12.0
	PoorTierMinRate = 16.0
)

// Application is a proposed loan awaiting a decision.
type Application struct {
	CustomerID   int64
	Amount       float64
	InterestRate float64
	Tenure       int
}

// Decision is the engine's verdict on an Application.
type Decision struct {
	CreditScore        int
	MonthlyInstallment float64
	Approved           bool
	CorrectedRate      *float64
	Reason             string
}

// Tier is one of the four score bands of the approval policy.
type Tier int

const (
	TierGood Tier = iota + 1 // score > 50
	TierFair                 // 30 < score <= 50
	TierPoor                 // 10 < score <= 30
	TierReject               // score <= 10
)

// TierFor maps a score onto its band. Each band includes its upper bound.
func TierFor(score int) Tier {
	switch {
	case score > 50:
		return TierGood
	case score > 30:
		return TierFair
	case score > 10:
		return TierPoor
	default:
		return TierReject
	}
}

// Verdict applies the approval gates in order to an already scored and
// priced application. The first failing gate decides the outcome.
func Verdict(customer models.Customer, history []models.Loan, app Application, score int, emi float64, asOf time.Time) Decision {
	d := Decision{CreditScore: score, MonthlyInstallment: emi}

	if overLimit(history, customer.ApprovedLimit, asOf) {
		d.CreditScore = 0
		d.Reason = ReasonDebtOverLimit
		return d
	}

	// A non-finite total can never be shown affordable.
	total := ActiveInstallments(history, asOf) + emi
	if !finite(total) || total > maxSalaryShareForEMIs*float64(customer.MonthlySalary) {
		d.Reason = ReasonEMIOverSalary
		return d
	}

	var rate float64
	switch TierFor(score) {
	case TierGood:
		rate = app.InterestRate
	case TierFair:
		rate = max(app.InterestRate, FairTierMinRate)
	case TierPoor:
		rate = max(app.InterestRate, PoorTierMinRate)
	default:
		d.Reason = ReasonScoreTooLow
		return d
	}
	d.Approved = true
	d.CorrectedRate = &rate
	return d
}
