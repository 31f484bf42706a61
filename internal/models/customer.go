package models

// Customer is a registered borrower. ApprovedLimit is fixed at registration;
// CurrentDebt is a running total maintained on loan approval.
type Customer struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Age           int    `json:"age"`
	PhoneNumber   int64  `json:"phone_number"`
	MonthlySalary int64  `json:"monthly_salary"`
	ApprovedLimit int64  `json:"approved_limit"`
	CurrentDebt   int64  `json:"current_debt"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
