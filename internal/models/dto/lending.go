package dto

import "encoding/json"

// Numeric request fields use json.Number so clients may send either 12 or "12".

type RegisterRequest struct {
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	Age           json.Number `json:"age"`
	MonthlyIncome json.Number `json:"monthly_income"`
	MonthlySalary json.Number `json:"monthly_salary"`
	PhoneNumber   json.Number `json:"phone_number"`
}

type RegisterResponse struct {
	CustomerID    int64  `json:"customer_id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	MonthlyIncome int64  `json:"monthly_income"`
	ApprovedLimit int64  `json:"approved_limit"`
	PhoneNumber   int64  `json:"phone_number"`
}

type LoanRequest struct {
	CustomerID   json.Number `json:"customer_id"`
	LoanAmount   json.Number `json:"loan_amount"`
	InterestRate json.Number `json:"interest_rate"`
	Tenure       json.Number `json:"tenure"`
}

type EligibilityResponse struct {
	CustomerID            int64    `json:"customer_id"`
	Approval              bool     `json:"approval"`
	CreditScore           int      `json:"credit_score"`
	InterestRate          float64  `json:"interest_rate"`
	CorrectedInterestRate *float64 `json:"corrected_interest_rate"`
	Tenure                int      `json:"tenure"`
	MonthlyInstallment    float64  `json:"monthly_installment"`
	Message               string   `json:"message,omitempty"`
}

type CreateLoanResponse struct {
	LoanID             *int64  `json:"loan_id"`
	CustomerID         int64   `json:"customer_id"`
	LoanApproved       bool    `json:"loan_approved"`
	Message            string  `json:"message"`
	MonthlyInstallment float64 `json:"monthly_installment"`
}

type CustomerSummary struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber int64  `json:"phone_number"`
	Age         int    `json:"age"`
}

type LoanDetailResponse struct {
	LoanID             int64           `json:"loan_id"`
	Customer           CustomerSummary `json:"customer"`
	LoanAmount         float64         `json:"loan_amount"`
	InterestRate       float64         `json:"interest_rate"`
	MonthlyInstallment float64         `json:"monthly_installment"`
	Tenure             int             `json:"tenure"`
}

type LoanSummary struct {
	LoanID             int64   `json:"loan_id"`
	LoanAmount         float64 `json:"loan_amount"`
	InterestRate       float64 `json:"interest_rate"`
	MonthlyInstallment float64 `json:"monthly_installment"`
	RepaymentsLeft     int     `json:"repayments_left"`
}
