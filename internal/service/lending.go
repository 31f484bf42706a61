// Package service exposes the lending operations: registration, eligibility
// checks, loan origination, and loan lookups.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/hongminglow/credit-approval/internal/calendar"
	"github.com/hongminglow/credit-approval/internal/credit"
	"github.com/hongminglow/credit-approval/internal/metrics"
	"github.com/hongminglow/credit-approval/internal/models"
	"github.com/hongminglow/credit-approval/internal/storage"
)

// RegisterInput carries the fields of a new customer.
type RegisterInput struct {
	FirstName     string
	LastName      string
	Age           int
	PhoneNumber   int64
	MonthlySalary int64
}

// LoanDetail is a loan together with its owner.
type LoanDetail struct {
	Loan     models.Loan
	Customer models.Customer
}

// ActiveLoan is a loan still being repaid.
type ActiveLoan struct {
	Loan            models.Loan
	MonthsRemaining int
}

// Lending implements the lending operations on top of a store.
type Lending struct {
	store   storage.LendingStore
	engine  *credit.Engine
	now     func() time.Time
	locks   *customerLocks
	logger  *slog.Logger
	metrics *metrics.Lending
}

// Option customizes a Lending service.
type Option func(*Lending)

// WithClock replaces the wall clock used to pick the evaluation day.
func WithClock(now func() time.Time) Option {
	return func(l *Lending) { l.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lending) { l.logger = logger }
}

// WithMetrics sets the decision counters.
func WithMetrics(m *metrics.Lending) Option {
	return func(l *Lending) { l.metrics = m }
}

// NewLending constructs the service.
func NewLending(store storage.LendingStore, engine *credit.Engine, opts ...Option) *Lending {
	l := &Lending{
		store:  store,
		engine: engine,
		now:    time.Now,
		locks:  newCustomerLocks(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (s *Lending) today() time.Time {
	return calendar.DateOf(s.now())
}

// RegisterCustomer validates in and stores a new customer with a limit
// derived from salary and zero debt.
func (s *Lending) RegisterCustomer(ctx context.Context, in RegisterInput) (models.Customer, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	switch {
	case in.FirstName == "":
		return models.Customer{}, invalid("first_name", "is required")
	case in.LastName == "":
		return models.Customer{}, invalid("last_name", "is required")
	case in.Age <= 0:
		return models.Customer{}, invalid("age", "must be a positive integer")
	case in.PhoneNumber <= 0:
		return models.Customer{}, invalid("phone_number", "must be a positive integer")
	case in.MonthlySalary <= 0:
		return models.Customer{}, invalid("monthly_income", "must be a positive integer")
	}

	created, err := s.store.CreateCustomer(ctx, models.Customer{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Age:           in.Age,
		PhoneNumber:   in.PhoneNumber,
		MonthlySalary: in.MonthlySalary,
		ApprovedLimit: credit.ApprovedLimit(in.MonthlySalary),
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.Customer{}, ErrDuplicatePhoneNumber
		}
		return models.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	s.metrics.CustomerRegistered()
	s.logger.InfoContext(ctx, "customer registered", "customer_id", created.ID, "approved_limit", created.ApprovedLimit)
	return created, nil
}

// CheckEligibility decides app without persisting anything.
func (s *Lending) CheckEligibility(ctx context.Context, app credit.Application) (credit.Decision, error) {
	customer, history, err := s.load(ctx, app.CustomerID)
	if err != nil {
		return credit.Decision{}, err
	}
	d, err := s.engine.Evaluate(customer, history, app, s.today())
	if err != nil {
		return credit.Decision{}, err
	}
	s.metrics.ObserveDecision("check", d.Approved, d.CreditScore)
	return d, nil
}

// CreateLoan decides app and, when approved, persists the loan and the debt
// increment together. Decisions for one customer are serialized so each
// sees the loans approved before it.
func (s *Lending) CreateLoan(ctx context.Context, app credit.Application) (credit.Decision, *models.Loan, error) {
	if app.CustomerID <= 0 {
		return credit.Decision{}, nil, invalid("customer_id", "must be a positive integer")
	}
	unlock := s.locks.lock(app.CustomerID)
	defer unlock()

	customer, history, err := s.load(ctx, app.CustomerID)
	if err != nil {
		return credit.Decision{}, nil, err
	}
	day := s.today()
	d, err := s.engine.Evaluate(customer, history, app, day)
	if err != nil {
		return credit.Decision{}, nil, err
	}
	s.metrics.ObserveDecision("create", d.Approved, d.CreditScore)
	if !d.Approved {
		s.logger.InfoContext(ctx, "loan rejected", "customer_id", app.CustomerID, "credit_score", d.CreditScore, "reason", d.Reason)
		return d, nil, nil
	}

	loan, err := s.store.CreateLoan(ctx, s.engine.Originate(app, d, day))
	if err != nil {
		return credit.Decision{}, nil, fmt.Errorf("create loan: %w", err)
	}
	s.metrics.LoanOriginated()
	s.logger.InfoContext(ctx, "loan created",
		"loan_id", loan.ID,
		"customer_id", loan.CustomerID,
		"credit_score", d.CreditScore,
		"interest_rate", loan.InterestRate,
	)
	return d, &loan, nil
}

// GetLoan returns a loan and its owner.
func (s *Lending) GetLoan(ctx context.Context, loanID int64) (LoanDetail, error) {
	if loanID <= 0 {
		return LoanDetail{}, invalid("loan_id", "must be a positive integer")
	}
	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return LoanDetail{}, err
	}
	customer, err := s.store.GetCustomer(ctx, loan.CustomerID)
	if err != nil {
		return LoanDetail{}, err
	}
	return LoanDetail{Loan: loan, Customer: customer}, nil
}

// ListActiveLoans returns the customer's loans that have not ended, with the
// months left on each.
func (s *Lending) ListActiveLoans(ctx context.Context, customerID int64) ([]ActiveLoan, error) {
	_, history, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	day := s.today()
	out := make([]ActiveLoan, 0, len(history))
	for _, l := range history {
		if !l.ActiveOn(day) {
			continue
		}
		out = append(out, ActiveLoan{Loan: l, MonthsRemaining: calendar.MonthsBetween(day, l.EndDate)})
	}
	return out, nil
}

// RecomputeDebt resets the customer's stored debt to the principal of their
// active loans and returns the new value.
func (s *Lending) RecomputeDebt(ctx context.Context, customerID int64) (int64, error) {
	unlock := s.locks.lock(customerID)
	defer unlock()

	_, history, err := s.load(ctx, customerID)
	if err != nil {
		return 0, err
	}
	debt := int64(math.Round(credit.ActiveDebt(history, s.today())))
	if err := s.store.UpdateCustomerDebt(ctx, customerID, debt); err != nil {
		return 0, fmt.Errorf("update debt: %w", err)
	}
	return debt, nil
}

func (s *Lending) load(ctx context.Context, customerID int64) (models.Customer, []models.Loan, error) {
	if customerID <= 0 {
		return models.Customer{}, nil, invalid("customer_id", "must be a positive integer")
	}
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return models.Customer{}, nil, err
	}
	history, err := s.store.ListLoans(ctx, customerID)
	if err != nil {
		return models.Customer{}, nil, fmt.Errorf("list loans: %w", err)
	}
	return customer, history, nil
}
