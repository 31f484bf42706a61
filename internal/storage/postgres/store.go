package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/credit-approval/internal/models"
	"github.com/hongminglow/credit-approval/internal/storage"
)

// Ensure Store satisfies the storage.LendingStore interface at compile time.
var _ storage.LendingStore = (*Store)(nil)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Store provides Postgres-backed persistence for customers and loans.
type Store struct {
	pool *pgxpool.Pool
}

// NewLendingStore connects to Postgres and runs migrations. A positive
// maxConns caps the pool size; zero keeps the pgx default.
func NewLendingStore(ctx context.Context, databaseURL string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(databaseURL); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const customerColumns = `id, first_name, last_name, age, phone_number, monthly_salary, approved_limit, current_debt`

const loanColumns = `id, customer_id, loan_amount, tenure, interest_rate, monthly_installment, emis_paid_on_time, start_date, end_date`

// CreateCustomer inserts a new customer row.
func (s *Store) CreateCustomer(ctx context.Context, c models.Customer) (models.Customer, error) {
	const query = `
		INSERT INTO customers (first_name, last_name, age, phone_number, monthly_salary, approved_limit, current_debt)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + customerColumns
	row := s.pool.QueryRow(ctx, query, c.FirstName, c.LastName, c.Age, c.PhoneNumber, c.MonthlySalary, c.ApprovedLimit, c.CurrentDebt)
	created, err := scanCustomer(row)
	if err != nil {
		if isPgCode(err, uniqueViolation) {
			return models.Customer{}, storage.ErrAlreadyExists
		}
		return models.Customer{}, err
	}
	return created, nil
}

// GetCustomer fetches a customer by id.
func (s *Store) GetCustomer(ctx context.Context, id int64) (models.Customer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

// UpdateCustomerDebt overwrites a customer's current debt.
func (s *Store) UpdateCustomerDebt(ctx context.Context, id int64, debt int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE customers SET current_debt = $2 WHERE id = $1`, id, debt)
	if err != nil {
		return fmt.Errorf("update customer debt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetLoan fetches a loan by id.
func (s *Store) GetLoan(ctx context.Context, id int64) (models.Loan, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	return scanLoan(row)
}

// ListLoans returns all loans of a customer ordered by id.
func (s *Store) ListLoans(ctx context.Context, customerID int64) ([]models.Loan, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+loanColumns+` FROM loans WHERE customer_id = $1 ORDER BY id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var out []models.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return out, nil
}

// CreateLoan inserts the loan and increments the customer's debt in one
// transaction, holding the customer row lock until commit.
func (s *Store) CreateLoan(ctx context.Context, l models.Loan) (models.Loan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Loan{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx, `SELECT id FROM customers WHERE id = $1 FOR UPDATE`, l.CustomerID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Loan{}, fmt.Errorf("create loan: customer %d: %w", l.CustomerID, storage.ErrNotFound)
		}
		return models.Loan{}, fmt.Errorf("lock customer: %w", err)
	}

	const insert = `
		INSERT INTO loans (customer_id, loan_amount, tenure, interest_rate, monthly_installment, emis_paid_on_time, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + loanColumns
	created, err := scanLoan(tx.QueryRow(ctx, insert,
		l.CustomerID, l.Amount, l.Tenure, l.InterestRate, l.MonthlyInstallment, l.EMIsPaidOnTime, l.StartDate, l.EndDate,
	))
	if err != nil {
		return models.Loan{}, fmt.Errorf("insert loan: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE customers SET current_debt = current_debt + ROUND($2::double precision)::bigint WHERE id = $1`, l.CustomerID, l.Amount); err != nil {
		return models.Loan{}, fmt.Errorf("increment debt: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Loan{}, fmt.Errorf("commit loan: %w", err)
	}
	return created, nil
}

// UpsertCustomer inserts or replaces the customer with the given id.
func (s *Store) UpsertCustomer(ctx context.Context, c models.Customer) error {
	const query = `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			first_name     = EXCLUDED.first_name,
			last_name      = EXCLUDED.last_name,
			age            = EXCLUDED.age,
			phone_number   = EXCLUDED.phone_number,
			monthly_salary = EXCLUDED.monthly_salary,
			approved_limit = EXCLUDED.approved_limit,
			current_debt   = EXCLUDED.current_debt`
	if _, err := s.pool.Exec(ctx, query, c.ID, c.FirstName, c.LastName, c.Age, c.PhoneNumber, c.MonthlySalary, c.ApprovedLimit, c.CurrentDebt); err != nil {
		if isPgCode(err, uniqueViolation) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("upsert customer %d: %w", c.ID, err)
	}
	return s.syncSequence(ctx, "customers")
}

// UpsertLoan inserts or replaces the loan with the given id.
func (s *Store) UpsertLoan(ctx context.Context, l models.Loan) error {
	const query = `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			customer_id         = EXCLUDED.customer_id,
			loan_amount         = EXCLUDED.loan_amount,
			tenure              = EXCLUDED.tenure,
			interest_rate       = EXCLUDED.interest_rate,
			monthly_installment = EXCLUDED.monthly_installment,
			emis_paid_on_time   = EXCLUDED.emis_paid_on_time,
			start_date          = EXCLUDED.start_date,
			end_date            = EXCLUDED.end_date`
	if _, err := s.pool.Exec(ctx, query,
		l.ID, l.CustomerID, l.Amount, l.Tenure, l.InterestRate, l.MonthlyInstallment, l.EMIsPaidOnTime, l.StartDate, l.EndDate,
	); err != nil {
		if isPgCode(err, foreignKeyViolation) {
			return fmt.Errorf("upsert loan %d: customer %d: %w", l.ID, l.CustomerID, storage.ErrNotFound)
		}
		return fmt.Errorf("upsert loan %d: %w", l.ID, err)
	}
	return s.syncSequence(ctx, "loans")
}

// syncSequence moves the id sequence past explicitly inserted ids so later
// inserts do not collide with imported rows.
func (s *Store) syncSequence(ctx context.Context, table string) error {
	query := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), (SELECT MAX(id) FROM %[1]s))`, table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("sync %s sequence: %w", table, err)
	}
	return nil
}

func scanCustomer(row pgx.Row) (models.Customer, error) {
	var c models.Customer
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Age, &c.PhoneNumber, &c.MonthlySalary, &c.ApprovedLimit, &c.CurrentDebt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Customer{}, storage.ErrNotFound
		}
		return models.Customer{}, err
	}
	return c, nil
}

func scanLoan(row pgx.Row) (models.Loan, error) {
	var l models.Loan
	if err := row.Scan(&l.ID, &l.CustomerID, &l.Amount, &l.Tenure, &l.InterestRate, &l.MonthlyInstallment, &l.EMIsPaidOnTime, &l.StartDate, &l.EndDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Loan{}, storage.ErrNotFound
		}
		return models.Loan{}, err
	}
	return l, nil
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
