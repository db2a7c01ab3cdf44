package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"credit-approval/internal/domain/customer"
	"credit-approval/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

const pgxmockExpectationsNotMetMsg = "pgxmock expectations not met"

var customerRowColumns = []string{
	"customer_id", "first_name", "last_name", "phone_number", "age",
	"monthly_salary", "approved_limit", "current_debt", "created_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	t.Cleanup(mockPool.Close)
	return mockPool
}

func setupCustomerRepo(t *testing.T) (context.Context, *CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool := newMockPool(t)
	return context.Background(), NewCustomerRepository(mockPool, logger), mockPool
}

func TestCustomerRepositorySave(t *testing.T) {
	age := 30
	newCustomer := func() *customer.Customer {
		return &customer.Customer{
			FirstName:     "Aaron",
			LastName:      "Garcia",
			PhoneNumber:   "9629317944",
			Age:           &age,
			MonthlySalary: 50000,
			ApprovedLimit: 1800000,
		}
	}
	insertSQL := regexp.QuoteMeta("INSERT INTO customers (first_name, last_name, phone_number, age, monthly_salary, approved_limit, current_debt, created_at, updated_at)")

	t.Run("successful insert assigns id and timestamps", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		cust := newCustomer()
		now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

		mockPool.ExpectQuery(insertSQL).
			WithArgs("Aaron", "Garcia", "9629317944", &age, 50000.0, 1800000.0, 0.0).
			WillReturnRows(pgxmock.NewRows([]string{"customer_id", "created_at", "updated_at"}).
				AddRow(int64(42), now, now))

		err := repo.Save(ctx, cust)
		require.NoError(t, err)
		assert.Equal(t, int64(42), cust.CustomerID)
		assert.Equal(t, now, cust.CreatedAt)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("duplicate phone number", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)

		mockPool.ExpectQuery(insertSQL).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "customers_phone_number_key"})

		err := repo.Save(ctx, newCustomer())
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		assert.Contains(t, err.Error(), "customers_phone_number_key")
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("generic failure", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)

		mockPool.ExpectQuery(insertSQL).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(context.DeadlineExceeded)

		err := repo.Save(ctx, newCustomer())
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		assert.Contains(t, err.Error(), "failed to insert customer: context deadline exceeded")
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("nil customer", func(t *testing.T) {
		ctx, repo, _ := setupCustomerRepo(t)

		err := repo.Save(ctx, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})
}

func TestCustomerRepositoryFindByID(t *testing.T) {
	selectSQL := regexp.QuoteMeta("FROM customers WHERE customer_id = $1")

	t.Run("found", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		age := 63
		now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

		mockPool.ExpectQuery(selectSQL).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(customerRowColumns).
				AddRow(int64(1), "Aaron", "Garcia", "9629317944", &age, 50000.0, 1800000.0, 250000.0, now, now))

		cust, err := repo.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), cust.CustomerID)
		assert.Equal(t, "Aaron Garcia", cust.FullName())
		require.NotNil(t, cust.Age)
		assert.Equal(t, 63, *cust.Age)
		assert.Equal(t, 250000.0, cust.CurrentDebt)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("null age", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		now := time.Now()

		mockPool.ExpectQuery(selectSQL).
			WithArgs(int64(2)).
			WillReturnRows(pgxmock.NewRows(customerRowColumns).
				AddRow(int64(2), "Adan", "Hall", "9762019837", (*int)(nil), 60000.0, 2200000.0, 0.0, now, now))

		cust, err := repo.FindByID(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, cust.Age)
	})

	t.Run("not found", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)

		mockPool.ExpectQuery(selectSQL).WithArgs(int64(99)).WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByID(ctx, 99)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Contains(t, err.Error(), "customer 99")
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("database failure", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)

		mockPool.ExpectQuery(selectSQL).WithArgs(int64(1)).WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByID(ctx, 1)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})
}
