package postgres

import (
	"context"
	"credit-approval/internal/dataload"
	"credit-approval/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	upsertCustomerQuery = `
        INSERT INTO customers (customer_id, first_name, last_name, phone_number, age, monthly_salary, approved_limit, current_debt, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        ON CONFLICT (customer_id) DO UPDATE SET
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            phone_number = EXCLUDED.phone_number,
            age = EXCLUDED.age,
            monthly_salary = EXCLUDED.monthly_salary,
            approved_limit = EXCLUDED.approved_limit,
            current_debt = EXCLUDED.current_debt,
            updated_at = NOW()`

	// The EXISTS guard turns a dangling customer id into zero affected rows
	// instead of an FK error that would abort the transaction.
	upsertLoanQuery = `
        INSERT INTO loans (loan_id, customer_id, loan_amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, created_at)
        SELECT $1::bigint, $2::bigint, $3::numeric, $4::int, $5::numeric, $6::numeric, $7::int, $8::date, $9::date, NOW()
        WHERE EXISTS (SELECT 1 FROM customers WHERE customer_id = $2::bigint)
        ON CONFLICT (loan_id) DO UPDATE SET
            customer_id = EXCLUDED.customer_id,
            loan_amount = EXCLUDED.loan_amount,
            tenure = EXCLUDED.tenure,
            interest_rate = EXCLUDED.interest_rate,
            monthly_repayment = EXCLUDED.monthly_repayment,
            emis_paid_on_time = EXCLUDED.emis_paid_on_time,
            start_date = EXCLUDED.start_date,
            end_date = EXCLUDED.end_date`

	syncCustomerSequenceQuery = `SELECT setval(pg_get_serial_sequence('customers', 'customer_id'), COALESCE((SELECT MAX(customer_id) FROM customers), 0) + 1, false)`
	syncLoanSequenceQuery     = `SELECT setval(pg_get_serial_sequence('loans', 'loan_id'), COALESCE((SELECT MAX(loan_id) FROM loans), 0) + 1, false)`
)

type ImportRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ dataload.Store = (*ImportRepository)(nil)

func NewImportRepository(db DBPool, logger *slog.Logger) *ImportRepository {
	if db == nil {
		panic("DBPool cannot be nil for ImportRepository")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ImportRepository{
		db:     db,
		logger: logger.With("component", "ImportRepository"),
	}
}

// Import upserts customers and then loans by id in a single transaction and
// moves both serial sequences past the largest id afterwards.
func (r *ImportRepository) Import(ctx context.Context, batch dataload.Batch) (*dataload.Result, error) {
	result := &dataload.Result{}

	err := withTransaction(ctx, r.db, func(tx pgx.Tx) error {
		for _, rec := range batch.Customers {
			c := rec.Customer
			startTime := time.Now()
			_, err := tx.Exec(ctx, upsertCustomerQuery,
				c.CustomerID, c.FirstName, c.LastName, c.PhoneNumber, c.Age,
				c.MonthlySalary, c.ApprovedLimit, c.CurrentDebt,
			)
			observeQuery("ImportCustomer", startTime, err)
			if err != nil {
				return fmt.Errorf("customer row %d (id %d): %w", rec.Row, c.CustomerID, translateDBError(err, r.logger))
			}
			result.Customers++
		}

		for _, rec := range batch.Loans {
			l := rec.Loan
			startTime := time.Now()
			tag, err := tx.Exec(ctx, upsertLoanQuery,
				l.ID, l.CustomerID, l.LoanAmount, l.Tenure, l.InterestRate,
				l.MonthlyRepayment, l.EMIsPaidOnTime, l.StartDate, l.EndDate,
			)
			observeQuery("ImportLoan", startTime, err)
			if err != nil {
				return fmt.Errorf("loan row %d (id %d): %w", rec.Row, l.ID, translateDBError(err, r.logger))
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: loan row %d (id %d) references unknown customer %d",
					apperrors.ErrValidation, rec.Row, l.ID, l.CustomerID)
			}
			result.Loans++
		}

		for _, q := range []string{syncCustomerSequenceQuery, syncLoanSequenceQuery} {
			if _, err := tx.Exec(ctx, q); err != nil {
				return fmt.Errorf("%w: failed to realign id sequence: %w", apperrors.ErrDatabase, err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Import rolled back", "error", err)
		return nil, err
	}

	r.logger.InfoContext(ctx, "Import committed", "customers", result.Customers, "loans", result.Loans)
	return result, nil
}
