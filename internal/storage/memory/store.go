// Package memory is an in-process LendingStore for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/hongminglow/credit-approval/internal/models"
	"github.com/hongminglow/credit-approval/internal/storage"
)

var _ storage.LendingStore = (*Store)(nil)

// Store keeps customers and loans in maps guarded by a single mutex.
type Store struct {
	mu        sync.RWMutex
	customers map[int64]models.Customer
	loans     map[int64]models.Loan
	nextCust  int64
	nextLoan  int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		customers: make(map[int64]models.Customer),
		loans:     make(map[int64]models.Loan),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// CreateCustomer assigns an id and stores the customer.
func (s *Store) CreateCustomer(_ context.Context, customer models.Customer) (models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.customers {
		if c.PhoneNumber == customer.PhoneNumber {
			return models.Customer{}, storage.ErrAlreadyExists
		}
	}
	s.nextCust++
	customer.ID = s.nextCust
	s.customers[customer.ID] = customer
	return customer, nil
}

// GetCustomer fetches a customer by id.
func (s *Store) GetCustomer(_ context.Context, id int64) (models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return models.Customer{}, storage.ErrNotFound
	}
	return c, nil
}

// UpdateCustomerDebt overwrites a customer's current debt.
func (s *Store) UpdateCustomerDebt(_ context.Context, id int64, debt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.CurrentDebt = debt
	s.customers[id] = c
	return nil
}

// GetLoan fetches a loan by id.
func (s *Store) GetLoan(_ context.Context, id int64) (models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.loans[id]
	if !ok {
		return models.Loan{}, storage.ErrNotFound
	}
	return l, nil
}

// ListLoans returns a customer's loans ordered by id.
func (s *Store) ListLoans(_ context.Context, customerID int64) ([]models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Loan
	for _, l := range s.loans {
		if l.CustomerID == customerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateLoan stores loan and bumps the customer's debt under one lock.
func (s *Store) CreateLoan(_ context.Context, loan models.Loan) (models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[loan.CustomerID]
	if !ok {
		return models.Loan{}, fmt.Errorf("create loan: customer %d: %w", loan.CustomerID, storage.ErrNotFound)
	}
	s.nextLoan++
	loan.ID = s.nextLoan
	s.loans[loan.ID] = loan
	c.CurrentDebt += int64(math.Round(loan.Amount))
	s.customers[c.ID] = c
	return loan, nil
}

// UpsertCustomer inserts or replaces the customer with the given id.
func (s *Store) UpsertCustomer(_ context.Context, customer models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.customers {
		if id != customer.ID && c.PhoneNumber == customer.PhoneNumber {
			return storage.ErrAlreadyExists
		}
	}
	s.customers[customer.ID] = customer
	s.nextCust = max(s.nextCust, customer.ID)
	return nil
}

// UpsertLoan inserts or replaces the loan with the given id.
func (s *Store) UpsertLoan(_ context.Context, loan models.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[loan.CustomerID]; !ok {
		return fmt.Errorf("upsert loan %d: customer %d: %w", loan.ID, loan.CustomerID, storage.ErrNotFound)
	}
	s.loans[loan.ID] = loan
	s.nextLoan = max(s.nextLoan, loan.ID)
	return nil
}
