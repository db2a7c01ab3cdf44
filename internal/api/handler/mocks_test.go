package handler

import (
	"context"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) Register(ctx context.Context, req customer.RegistrationRequest) (*customer.Customer, error) {
	ret := _m.Called(ctx, req)
	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, customer.RegistrationRequest) *customer.Customer); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

type MockLoanService struct {
	mock.Mock
}

func (_m *MockLoanService) CheckEligibility(ctx context.Context, app loan.Application) (*loan.EligibilityResult, error) {
	ret := _m.Called(ctx, app)
	var r0 *loan.EligibilityResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*loan.EligibilityResult)
	}
	return r0, ret.Error(1)
}

func (_m *MockLoanService) BookLoan(ctx context.Context, app loan.Application) (*loan.BookingResult, error) {
	ret := _m.Called(ctx, app)
	var r0 *loan.BookingResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*loan.BookingResult)
	}
	return r0, ret.Error(1)
}

func (_m *MockLoanService) GetLoanDetails(ctx context.Context, loanID int64) (*loan.Details, error) {
	ret := _m.Called(ctx, loanID)
	var r0 *loan.Details
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*loan.Details)
	}
	return r0, ret.Error(1)
}

func (_m *MockLoanService) ListCustomerLoans(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	ret := _m.Called(ctx, customerID)
	var r0 []*loan.Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*loan.Loan)
	}
	return r0, ret.Error(1)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
