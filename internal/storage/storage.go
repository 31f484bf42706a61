package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/credit-approval/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// LendingStore captures persistence operations needed by the lending service.
type LendingStore interface {
	CreateCustomer(ctx context.Context, customer models.Customer) (models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (models.Customer, error)
	UpdateCustomerDebt(ctx context.Context, id int64, debt int64) error

	GetLoan(ctx context.Context, id int64) (models.Loan, error)
	ListLoans(ctx context.Context, customerID int64) ([]models.Loan, error)
	// CreateLoan inserts loan and adds its principal to the owning customer's
	// current debt. Both happen or neither does.
	CreateLoan(ctx context.Context, loan models.Loan) (models.Loan, error)

	ImportStore
}

// ImportStore upserts records by identifier for bulk loading.
type ImportStore interface {
	UpsertCustomer(ctx context.Context, customer models.Customer) error
	UpsertLoan(ctx context.Context, loan models.Loan) error
}
