package ingest_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hongminglow/credit-approval/internal/credit"
	"github.com/hongminglow/credit-approval/internal/ingest"
	"github.com/hongminglow/credit-approval/internal/service"
	"github.com/hongminglow/credit-approval/internal/storage/memory"
)

var today = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func newImporter(store *memory.Store) *ingest.Importer {
	svc := service.NewLending(store, credit.NewEngine(), service.WithClock(func() time.Time { return today }))
	return ingest.NewImporter(store, svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunLoadsBothWorkbooks(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, ingest.CustomerFile), [][]any{
		{"Customer ID", "First Name", "Last Name", "Age", "Phone Number", "Monthly Salary", "Approved Limit"},
		{1, "Asha", "Rao", 30, 9000000001, 50000, 1800000},
		{2, "Ravi", "Kumar", "", 9000000002, 100000, ""},
		{3, "Bad", "Phone", 41, "not-a-number", 70000, 2500000},
	})
	writeWorkbook(t, filepath.Join(dir, ingest.LoanFile), [][]any{
		{"customer_id", "loan_id", "loan_amount", "tenure", "interest_rate", "monthly_payment", "EMIs paid on Time", "Date of Approval", "End Date"},
		{1, 10, 200000, 12, 10, 17583.18, true, time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), ""},
		{1, 11, 100000, 6, 8, "", 6, "2023-03-01", "2023-09-01"},
		{2, 12, 50000, 24, 12, 2353.67, 20, "2024-12-01", "2026-12-01"},
		{99, 14, 1000, 6, 8, 170, 1, "2024-01-01", ""},
		{2, 13, 1000, 0, 8, 170, 1, "2024-01-01", ""},
	})

	ctx := context.Background()
	store := memory.NewStore()
	rep, err := newImporter(store).Run(ctx, dir)
	require.NoError(t, err)

	assert.Equal(t, 2, rep.CustomersLoaded)
	assert.Equal(t, 3, rep.LoansLoaded)
	assert.Equal(t, 2, rep.DebtsUpdated)
	require.Len(t, rep.Skipped, 3)
	assert.Equal(t, ingest.CustomerFile, rep.Skipped[0].File)
	assert.Equal(t, 4, rep.Skipped[0].Row)
	assert.Equal(t, ingest.LoanFile, rep.Skipped[1].File)
	assert.Equal(t, 5, rep.Skipped[1].Row)
	assert.Contains(t, rep.Skipped[1].Error(), "customer 99 does not exist")
	assert.Equal(t, 6, rep.Skipped[2].Row)

	ravi, err := store.GetCustomer(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, credit.ApprovedLimit(100000), ravi.ApprovedLimit)
	assert.Zero(t, ravi.Age)
	assert.Equal(t, int64(50000), ravi.CurrentDebt)

	asha, err := store.GetCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), asha.CurrentDebt)

	derived, err := store.GetLoan(ctx, 10)
	require.NoError(t, err)
	assert.True(t, derived.EMIsPaidOnTime)
	assert.Equal(t, time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), derived.StartDate)
	assert.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), derived.EndDate)

	computed, err := store.GetLoan(ctx, 11)
	require.NoError(t, err)
	assert.True(t, computed.EMIsPaidOnTime)
	emi, err := credit.EMI(100000, 8, 6)
	require.NoError(t, err)
	assert.InDelta(t, emi, computed.MonthlyInstallment, 1e-9)

	late, err := store.GetLoan(ctx, 12)
	require.NoError(t, err)
	assert.False(t, late.EMIsPaidOnTime)
	assert.Equal(t, 2353.67, late.MonthlyInstallment)

	// Re-running replaces records by id instead of duplicating them.
	rep, err = newImporter(store).Run(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.LoansLoaded)
	loans, err := store.ListLoans(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, loans, 2)
}

func TestLoadLoansValidatesEveryRow(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, ingest.CustomerFile), [][]any{
		{"customer_id", "first_name", "last_name", "phone_number", "monthly_salary"},
		{1, "Asha", "Rao", 9000000001, 50000},
	})
	header := []any{"customer_id", "loan_id", "loan_amount", "tenure", "interest_rate", "monthly_payment", "emis_paid_on_time", "date_of_approval", "end_date"}
	writeWorkbook(t, filepath.Join(dir, ingest.LoanFile), [][]any{
		header,
		{1, 20, -5000, 12, 10, 450, true, "2025-01-01", ""},
		{1, 21, 5000, 12, -3, 450, true, "2025-01-01", ""},
		{1, 22, 5000, 1_000_000_000, 10, 450, true, "2025-01-01", ""},
		{1, 23, 5000, ingest.MaxTenureMonths + 1, 10, 450, true, "2025-01-01", ""},
		{1, 24, 5000, 12, 10, "NaN", true, "2025-01-01", ""},
		{1, 25, 5000, 12, 10, 0, true, "2025-01-01", ""},
		{1, 26, "Inf", 12, 10, "", true, "2025-01-01", ""},
		{1, 27, 5000, 12, 10, 450, true, "2025-01-01", ""},
	})

	ctx := context.Background()
	store := memory.NewStore()
	rep, err := newImporter(store).Run(ctx, dir)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.LoansLoaded)
	var rows []int
	for _, s := range rep.Skipped {
		rows = append(rows, s.Row)
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8}, rows)

	loans, err := store.ListLoans(ctx, 1)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, int64(27), loans[0].ID)
}

func TestLoadCustomersRequiresColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.xlsx")
	writeWorkbook(t, path, [][]any{
		{"customer_id", "first_name", "phone_number"},
		{1, "Asha", 9000000001},
	})
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var rep ingest.Report
	err = newImporter(memory.NewStore()).LoadCustomers(context.Background(), f, &rep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last_name")
	assert.Contains(t, err.Error(), "monthly_salary")
}

func TestRunMissingWorkbook(t *testing.T) {
	_, err := newImporter(memory.NewStore()).Run(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type traceKey struct{}

// traceHandler records the trace value carried by each warning's context.
type traceHandler struct {
	traces *[]any
}

func (h traceHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h traceHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h traceHandler) WithGroup(string) slog.Handler           { return h }

func (h traceHandler) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level == slog.LevelWarn {
		*h.traces = append(*h.traces, ctx.Value(traceKey{}))
	}
	return nil
}

func TestSkippedRowsLogWithCallerContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), ingest.CustomerFile)
	writeWorkbook(t, path, [][]any{
		{"customer_id", "first_name", "last_name", "phone_number", "monthly_salary"},
		{1, "Asha", "", 9000000001, 50000},
	})
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var traces []any
	im := ingest.NewImporter(memory.NewStore(), nil, slog.New(traceHandler{traces: &traces}))
	ctx := context.WithValue(context.Background(), traceKey{}, "import-7")

	var rep ingest.Report
	require.NoError(t, im.LoadCustomers(ctx, f, &rep))
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, []any{"import-7"}, traces)
}
