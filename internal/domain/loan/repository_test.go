package loan

import (
	"context"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/pkg/apperrors"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetLoanByID(ctx context.Context, loanID int64) (*Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Loan), args.Error(1)
}

func (m *MockRepository) FindLoansByCustomer(ctx context.Context, customerID int64) ([]*Loan, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Loan), args.Error(1)
}

func (m *MockRepository) WithinCustomerTx(ctx context.Context, customerID int64, fn func(tx TxRepository, cust *customer.Customer) error) error {
	args := m.Called(ctx, customerID, fn)
	return args.Error(0)
}

func (m *MockRepository) PortfolioSummary(ctx context.Context) (*PortfolioSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PortfolioSummary), args.Error(1)
}

// memoryRepository keeps customers and loans in maps and serializes
// WithinCustomerTx per customer, the way the row lock does in postgres.
// Writes made inside a failed transaction are discarded.
type memoryRepository struct {
	mu        sync.Mutex
	locks     map[int64]*sync.Mutex
	customers map[int64]*customer.Customer
	loans     []*Loan
	nextID    int64

	failCreateLoan error
	failDebtUpdate error
}

func newMemoryRepository(customers ...*customer.Customer) *memoryRepository {
	r := &memoryRepository{
		locks:     make(map[int64]*sync.Mutex),
		customers: make(map[int64]*customer.Customer),
	}
	for _, c := range customers {
		r.customers[c.CustomerID] = c
	}
	return r
}

func (r *memoryRepository) lockFor(customerID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[customerID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[customerID] = l
	}
	return l
}

func (r *memoryRepository) GetLoanByID(_ context.Context, loanID int64) (*Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.loans {
		if l.ID == loanID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: loan %d", apperrors.ErrNotFound, loanID)
}

func (r *memoryRepository) FindLoansByCustomer(_ context.Context, customerID int64) ([]*Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loansOf(customerID), nil
}

func (r *memoryRepository) loansOf(customerID int64) []*Loan {
	var out []*Loan
	for _, l := range r.loans {
		if l.CustomerID == customerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out
}

func (r *memoryRepository) WithinCustomerTx(ctx context.Context, customerID int64, fn func(tx TxRepository, cust *customer.Customer) error) error {
	lock := r.lockFor(customerID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	stored, ok := r.customers[customerID]
	var snapshot customer.Customer
	if ok {
		snapshot = *stored
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: customer %d", apperrors.ErrNotFound, customerID)
	}

	tx := &memoryTx{repo: r, debt: snapshot.CurrentDebt}
	if err := fn(tx, &snapshot); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans = append(r.loans, tx.created...)
	r.customers[customerID].CurrentDebt = tx.debt
	return nil
}

func (r *memoryRepository) PortfolioSummary(context.Context) (*PortfolioSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := &PortfolioSummary{Customers: int64(len(r.customers)), Loans: int64(len(r.loans))}
	for _, c := range r.customers {
		sum.OutstandingDebt += c.CurrentDebt
	}
	return sum, nil
}

func (r *memoryRepository) debtOf(customerID int64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.customers[customerID].CurrentDebt
}

func (r *memoryRepository) loanCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loans)
}

type memoryTx struct {
	repo    *memoryRepository
	created []*Loan
	debt    float64
}

func (tx *memoryTx) FindLoansByCustomer(_ context.Context, customerID int64) ([]*Loan, error) {
	tx.repo.mu.Lock()
	loans := tx.repo.loansOf(customerID)
	tx.repo.mu.Unlock()
	return append(loans, tx.created...), nil
}

func (tx *memoryTx) CreateLoan(_ context.Context, l *Loan) error {
	if tx.repo.failCreateLoan != nil {
		return tx.repo.failCreateLoan
	}
	tx.repo.mu.Lock()
	tx.repo.nextID++
	l.ID = tx.repo.nextID
	tx.repo.mu.Unlock()

	cp := *l
	tx.created = append(tx.created, &cp)
	return nil
}

func (tx *memoryTx) UpdateCustomerDebt(_ context.Context, _ int64, delta float64) (float64, error) {
	if tx.repo.failDebtUpdate != nil {
		return 0, tx.repo.failDebtUpdate
	}
	tx.debt += delta
	return tx.debt, nil
}
