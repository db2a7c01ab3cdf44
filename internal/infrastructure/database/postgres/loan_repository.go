package postgres

import (
	"context"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const loanColumns = `loan_id, customer_id, loan_amount, tenure, interest_rate, monthly_repayment,
        emis_paid_on_time, start_date, end_date, created_at`

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	if db == nil {
		panic("DBPool cannot be nil for LoanRepository")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoanRepository{
		db:     db,
		logger: logger.With("component", "LoanRepository"),
	}
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1`

	startTime := time.Now()
	l, err := scanLoan(r.db.QueryRow(ctx, query, loanID))
	observeQuery("GetLoanByID", startTime, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, fmt.Errorf("%w: loan %d", apperrors.ErrNotFound, loanID)
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) FindLoansByCustomer(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	return findLoansByCustomer(ctx, r.db, r.logger, customerID)
}

func (r *LoanRepository) WithinCustomerTx(ctx context.Context, customerID int64, fn func(tx loan.TxRepository, cust *customer.Customer) error) error {
	logCtx := r.logger.With(slog.Int64("customerID", customerID))

	return withTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id = $1 FOR UPDATE`

		startTime := time.Now()
		cust, err := scanCustomer(tx.QueryRow(ctx, query, customerID))
		observeQuery("LockCustomer", startTime, err)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				logCtx.WarnContext(ctx, "Customer not found for locking")
				return fmt.Errorf("%w: customer %d", apperrors.ErrNotFound, customerID)
			}
			logCtx.ErrorContext(ctx, "Failed to lock customer row", "error", err)
			return fmt.Errorf("%w: failed to lock customer: %w", apperrors.ErrDatabase, err)
		}
		logCtx.DebugContext(ctx, "Customer row locked")

		return fn(&loanTx{tx: tx, logger: logCtx}, cust)
	})
}

func (r *LoanRepository) PortfolioSummary(ctx context.Context) (*loan.PortfolioSummary, error) {
	query := `
        SELECT
            (SELECT COUNT(*) FROM customers),
            (SELECT COUNT(*) FROM loans),
            (SELECT COALESCE(SUM(current_debt), 0) FROM customers)`

	var summary loan.PortfolioSummary
	startTime := time.Now()
	err := r.db.QueryRow(ctx, query).Scan(&summary.Customers, &summary.Loans, &summary.OutstandingDebt)
	observeQuery("PortfolioSummary", startTime, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to compute portfolio summary", "error", err)
		return nil, fmt.Errorf("%w: failed to compute portfolio summary: %w", apperrors.ErrDatabase, err)
	}
	return &summary, nil
}

// loanTx implements loan.TxRepository on top of an open transaction.
type loanTx struct {
	tx     pgx.Tx
	logger *slog.Logger
}

var _ loan.TxRepository = (*loanTx)(nil)

func (t *loanTx) FindLoansByCustomer(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	return findLoansByCustomer(ctx, t.tx, t.logger, customerID)
}

func (t *loanTx) CreateLoan(ctx context.Context, l *loan.Loan) error {
	query := `
        INSERT INTO loans (customer_id, loan_amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        RETURNING loan_id, created_at`

	startTime := time.Now()
	err := t.tx.QueryRow(ctx, query,
		l.CustomerID, l.LoanAmount, l.Tenure, l.InterestRate, l.MonthlyRepayment,
		l.EMIsPaidOnTime, l.StartDate, l.EndDate,
	).Scan(&l.ID, &l.CreatedAt)
	observeQuery("CreateLoan", startTime, err)
	if err != nil {
		t.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return translateDBError(err, t.logger)
	}

	t.logger.InfoContext(ctx, "Loan created in DB", "loan_id", l.ID)
	return nil
}

func (t *loanTx) UpdateCustomerDebt(ctx context.Context, customerID int64, delta float64) (float64, error) {
	query := `
        UPDATE customers
        SET current_debt = current_debt + $1,
            updated_at = NOW()
        WHERE customer_id = $2
        RETURNING current_debt`

	var debt float64
	startTime := time.Now()
	err := t.tx.QueryRow(ctx, query, delta, customerID).Scan(&debt)
	observeQuery("UpdateCustomerDebt", startTime, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: customer %d", apperrors.ErrNotFound, customerID)
		}
		t.logger.ErrorContext(ctx, "Failed to update customer debt", "error", err)
		return 0, fmt.Errorf("%w: failed to update customer debt: %w", apperrors.ErrDatabase, err)
	}
	return debt, nil
}

func findLoansByCustomer(ctx context.Context, q querier, logger *slog.Logger, customerID int64) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY loan_id`

	startTime := time.Now()
	rows, err := q.Query(ctx, query, customerID)
	if err != nil {
		observeQuery("FindLoansByCustomer", startTime, err)
		logger.ErrorContext(ctx, "Failed to query loans", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("%w: failed to query loans: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to scan loan row", "error", err)
			return nil, fmt.Errorf("%w: failed to scan loan row: %w", apperrors.ErrDatabase, err)
		}
		loans = append(loans, l)
	}
	err = rows.Err()
	observeQuery("FindLoansByCustomer", startTime, err)
	if err != nil {
		logger.ErrorContext(ctx, "Error iterating loan rows", "error", err)
		return nil, fmt.Errorf("%w: error iterating loan rows: %w", apperrors.ErrDatabase, err)
	}

	return loans, nil
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID,
		&l.CustomerID,
		&l.LoanAmount,
		&l.Tenure,
		&l.InterestRate,
		&l.MonthlyRepayment,
		&l.EMIsPaidOnTime,
		&l.StartDate,
		&l.EndDate,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
