package dataload

import (
	"context"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
)

// CustomerRecord is a parsed customer row. Row is the 1-based spreadsheet
// line it came from, header included.
type CustomerRecord struct {
	Row      int
	Customer customer.Customer
}

type LoanRecord struct {
	Row  int
	Loan loan.Loan
}

type Batch struct {
	Customers []CustomerRecord
	Loans     []LoanRecord
}

type Result struct {
	Customers int
	Loans     int
}

// Store persists a parsed batch atomically: either every record is written
// or none is.
type Store interface {
	Import(ctx context.Context, batch Batch) (*Result, error)
}
