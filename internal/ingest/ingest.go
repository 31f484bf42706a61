// Package ingest loads customers and loans from spreadsheet exports,
// upserting each record by its identifier.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hongminglow/credit-approval/internal/calendar"
	"github.com/hongminglow/credit-approval/internal/credit"
	"github.com/hongminglow/credit-approval/internal/models"
	"github.com/hongminglow/credit-approval/internal/storage"
)

// Default workbook names inside the data directory.
const (
	CustomerFile = "customer_data.xlsx"
	LoanFile     = "loan_data.xlsx"
)

// MaxTenureMonths bounds imported tenures to fifty years.
const MaxTenureMonths = 600

// DebtRecomputer resets a customer's stored debt from their active loans.
type DebtRecomputer interface {
	RecomputeDebt(ctx context.Context, customerID int64) (int64, error)
}

// RowError is a data row that could not be loaded.
type RowError struct {
	File string
	Row  int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Err)
}

// Report summarizes an import.
type Report struct {
	CustomersLoaded int
	LoansLoaded     int
	DebtsUpdated    int
	Skipped         []RowError
}

// Importer writes spreadsheet rows through an ImportStore.
type Importer struct {
	store  storage.ImportStore
	debts  DebtRecomputer
	logger *slog.Logger
}

// NewImporter builds an importer. debts may be nil to leave stored debt
// untouched.
func NewImporter(store storage.ImportStore, debts DebtRecomputer, logger *slog.Logger) *Importer {
	return &Importer{store: store, debts: debts, logger: logger}
}

// Run loads both workbooks from dir, customers first, then recomputes the
// debt of every customer that received loans.
func (im *Importer) Run(ctx context.Context, dir string) (Report, error) {
	var rep Report

	cf, err := os.Open(filepath.Join(dir, CustomerFile))
	if err != nil {
		return rep, fmt.Errorf("open customers: %w", err)
	}
	defer cf.Close()
	if err := im.LoadCustomers(ctx, cf, &rep); err != nil {
		return rep, err
	}

	lf, err := os.Open(filepath.Join(dir, LoanFile))
	if err != nil {
		return rep, fmt.Errorf("open loans: %w", err)
	}
	defer lf.Close()
	touched, err := im.LoadLoans(ctx, lf, &rep)
	if err != nil {
		return rep, err
	}

	if im.debts != nil {
		for _, id := range touched {
			if _, err := im.debts.RecomputeDebt(ctx, id); err != nil {
				return rep, fmt.Errorf("recompute debt for customer %d: %w", id, err)
			}
			rep.DebtsUpdated++
		}
	}
	return rep, nil
}

// LoadCustomers upserts every customer row of the workbook read from r.
// Imported customers start with zero debt; a blank approved limit is derived
// from salary.
func (im *Importer) LoadCustomers(ctx context.Context, r io.Reader, rep *Report) error {
	s, err := readSheet(r)
	if err != nil {
		return fmt.Errorf("%s: %w", CustomerFile, err)
	}
	if err := s.require("customer_id", "first_name", "last_name", "phone_number", "monthly_salary"); err != nil {
		return fmt.Errorf("%s: %w", CustomerFile, err)
	}

	for i, cells := range s.rows {
		if blank(cells) {
			continue
		}
		rowNum := i + 2
		c, err := parseCustomer(row{sheet: s, cells: cells})
		if err == nil {
			err = im.store.UpsertCustomer(ctx, c)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			im.skip(ctx, rep, CustomerFile, rowNum, err)
			continue
		}
		rep.CustomersLoaded++
	}
	im.logger.InfoContext(ctx, "customers loaded", "count", rep.CustomersLoaded)
	return nil
}

// LoadLoans upserts every loan row of the workbook read from r and returns
// the distinct customer ids that received loans, in first-seen order.
func (im *Importer) LoadLoans(ctx context.Context, r io.Reader, rep *Report) ([]int64, error) {
	s, err := readSheet(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", LoanFile, err)
	}
	if err := s.require("customer_id", "loan_id", "loan_amount", "tenure", "interest_rate"); err != nil {
		return nil, fmt.Errorf("%s: %w", LoanFile, err)
	}

	seen := make(map[int64]bool)
	var touched []int64
	for i, cells := range s.rows {
		if blank(cells) {
			continue
		}
		rowNum := i + 2
		l, err := parseLoan(row{sheet: s, cells: cells})
		if err == nil {
			err = im.store.UpsertLoan(ctx, l)
		}
		if err != nil {
			if ctx.Err() != nil {
				return touched, ctx.Err()
			}
			if errors.Is(err, storage.ErrNotFound) {
				err = fmt.Errorf("customer %d does not exist", l.CustomerID)
			}
			im.skip(ctx, rep, LoanFile, rowNum, err)
			continue
		}
		rep.LoansLoaded++
		if !seen[l.CustomerID] {
			seen[l.CustomerID] = true
			touched = append(touched, l.CustomerID)
		}
	}
	im.logger.InfoContext(ctx, "loans loaded", "count", rep.LoansLoaded)
	return touched, nil
}

func (im *Importer) skip(ctx context.Context, rep *Report, file string, rowNum int, err error) {
	rep.Skipped = append(rep.Skipped, RowError{File: file, Row: rowNum, Err: err})
	im.logger.WarnContext(ctx, "row skipped", "file", file, "row", rowNum, "error", err)
}

func parseCustomer(r row) (models.Customer, error) {
	var c models.Customer
	var err error
	if c.ID, err = r.integer("customer_id"); err != nil {
		return c, err
	}
	c.FirstName, c.LastName = r.str("first_name"), r.str("last_name")
	if c.FirstName == "" || c.LastName == "" {
		return c, errors.New("first_name and last_name are required")
	}
	if r.str("age") != "" {
		age, err := r.integer("age")
		if err != nil {
			return c, err
		}
		c.Age = int(age)
	}
	if c.PhoneNumber, err = r.integer("phone_number"); err != nil {
		return c, err
	}
	if c.MonthlySalary, err = r.integer("monthly_salary"); err != nil {
		return c, err
	}
	if r.str("approved_limit") == "" {
		c.ApprovedLimit = credit.ApprovedLimit(c.MonthlySalary)
	} else if c.ApprovedLimit, err = r.integer("approved_limit"); err != nil {
		return c, err
	}
	return c, nil
}

func parseLoan(r row) (models.Loan, error) {
	var l models.Loan
	var err error
	if l.CustomerID, err = r.integer("customer_id"); err != nil {
		return l, err
	}
	if l.ID, err = r.integer("loan_id"); err != nil {
		return l, err
	}
	if l.Amount, err = r.number("loan_amount"); err != nil {
		return l, err
	}
	if l.Amount <= 0 {
		return l, fmt.Errorf("loan_amount: must be positive, got %v", l.Amount)
	}
	tenure, err := r.integer("tenure")
	if err != nil {
		return l, err
	}
	if tenure <= 0 || tenure > MaxTenureMonths {
		return l, fmt.Errorf("tenure: must be between 1 and %d months, got %d", MaxTenureMonths, tenure)
	}
	l.Tenure = int(tenure)
	if l.InterestRate, err = r.number("interest_rate"); err != nil {
		return l, err
	}
	if l.InterestRate < 0 {
		return l, fmt.Errorf("interest_rate: must not be negative, got %v", l.InterestRate)
	}

	if r.str("monthly_payment") != "" {
		if l.MonthlyInstallment, err = r.number("monthly_payment"); err != nil {
			return l, err
		}
		if l.MonthlyInstallment <= 0 {
			return l, fmt.Errorf("monthly_payment: must be positive, got %v", l.MonthlyInstallment)
		}
	} else if l.MonthlyInstallment, err = credit.EMI(l.Amount, l.InterestRate, l.Tenure); err != nil {
		return l, err
	}

	if l.EMIsPaidOnTime, err = paidOnTime(r.str("emis_paid_on_time"), l.Tenure); err != nil {
		return l, err
	}

	start, err := r.date("date_of_approval")
	if err != nil {
		return l, err
	}
	if start.IsZero() {
		return l, errors.New("date_of_approval: missing value")
	}
	l.StartDate = calendar.DateOf(start)

	end, err := r.date("end_date")
	if err != nil {
		return l, err
	}
	if end.IsZero() {
		l.EndDate = calendar.AddMonths(l.StartDate, l.Tenure)
	} else {
		l.EndDate = calendar.DateOf(end)
	}
	return l, nil
}

// paidOnTime reads either a boolean flag or a count of punctual EMIs. Raw
// boolean cells arrive as "1" or "0" and are read as flags; any other number
// is a count, on time only when it covers the whole tenure.
func paidOnTime(v string, tenure int) (bool, error) {
	switch strings.ToLower(v) {
	case "", "0", "false", "no", "n", "f":
		return false, nil
	case "1", "true", "yes", "y", "t":
		return true, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return false, fmt.Errorf("emis_paid_on_time: %q is neither a flag nor a count", v)
	}
	return n >= float64(tenure), nil
}
