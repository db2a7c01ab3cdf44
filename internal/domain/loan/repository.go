package loan

import (
	"context"
	"credit-approval/internal/domain/customer"
)

type PortfolioSummary struct {
	Customers       int64
	Loans           int64
	OutstandingDebt float64
}

type Repository interface {
	GetLoanByID(ctx context.Context, loanID int64) (*Loan, error)

	FindLoansByCustomer(ctx context.Context, customerID int64) ([]*Loan, error)

	// WithinCustomerTx runs fn in one transaction holding a row lock on the
	// customer. fn returning an error rolls back everything it wrote.
	WithinCustomerTx(ctx context.Context, customerID int64, fn func(tx TxRepository, cust *customer.Customer) error) error

	PortfolioSummary(ctx context.Context) (*PortfolioSummary, error)
}

// TxRepository is the persistence surface available inside WithinCustomerTx.
type TxRepository interface {
	FindLoansByCustomer(ctx context.Context, customerID int64) ([]*Loan, error)

	CreateLoan(ctx context.Context, loan *Loan) error

	// UpdateCustomerDebt adds delta to current_debt and returns the new balance.
	UpdateCustomerDebt(ctx context.Context, customerID int64, delta float64) (float64, error)
}
