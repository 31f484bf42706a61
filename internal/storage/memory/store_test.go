package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/credit-approval/internal/models"
	"github.com/hongminglow/credit-approval/internal/storage"
)

func TestCreateCustomerRejectsDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first, err := s.CreateCustomer(ctx, models.Customer{FirstName: "Asha", PhoneNumber: 9876543210})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	_, err = s.CreateCustomer(ctx, models.Customer{FirstName: "Ravi", PhoneNumber: 9876543210})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestCreateLoanIncrementsDebt(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c, err := s.CreateCustomer(ctx, models.Customer{PhoneNumber: 1, CurrentDebt: 1000})
	require.NoError(t, err)

	l, err := s.CreateLoan(ctx, models.Loan{CustomerID: c.ID, Amount: 2500.4, StartDate: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), l.ID)

	got, err := s.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), got.CurrentDebt)

	_, err = s.CreateLoan(ctx, models.Loan{CustomerID: 99, Amount: 1})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateLoanConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c, err := s.CreateCustomer(ctx, models.Customer{PhoneNumber: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.CreateLoan(ctx, models.Loan{CustomerID: c.ID, Amount: 100})
		}()
	}
	wg.Wait()

	got, err := s.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.CurrentDebt)
	loans, err := s.ListLoans(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, loans, 50)
}

func TestUpsertKeepsIdsAndAdvancesCounters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.UpsertCustomer(ctx, models.Customer{ID: 10, FirstName: "Old", PhoneNumber: 5}))
	require.NoError(t, s.UpsertCustomer(ctx, models.Customer{ID: 10, FirstName: "New", PhoneNumber: 5}))
	got, err := s.GetCustomer(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "New", got.FirstName)

	next, err := s.CreateCustomer(ctx, models.Customer{PhoneNumber: 6})
	require.NoError(t, err)
	assert.Equal(t, int64(11), next.ID)

	assert.ErrorIs(t, s.UpsertLoan(ctx, models.Loan{ID: 3, CustomerID: 42}), storage.ErrNotFound)
	require.NoError(t, s.UpsertLoan(ctx, models.Loan{ID: 3, CustomerID: 10}))
	l, err := s.CreateLoan(ctx, models.Loan{CustomerID: 10, Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(4), l.ID)
}

func TestGetMissing(t *testing.T) {
	s := NewStore()
	_, err := s.GetCustomer(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetLoan(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateCustomerDebt(context.Background(), 1, 0), storage.ErrNotFound)
}
