package handler

import (
	"credit-approval/internal/domain/credit"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const applicationBody = `{"customer_id":1,"loan_amount":100000,"tenure":12,"interest_rate":10}`

var expectedApplication = loan.Application{CustomerID: 1, Amount: 100000, Tenure: 12, InterestRate: 10}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestLoanHandler_CheckEligibility(t *testing.T) {
	t.Run("Approved", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("CheckEligibility", mock.Anything, expectedApplication).Return(&loan.EligibilityResult{
			CustomerID: 1, Tenure: 12, RequestedRate: 10,
			Decision: credit.Decision{Approved: true, Score: 62, CorrectedRate: 12, MonthlyInstallment: 8884.88},
		}, nil).Once()

		rr := httptest.NewRecorder()
		h.CheckEligibility(rr, httptest.NewRequest(http.MethodPost, "/check-eligibility", strings.NewReader(applicationBody)))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeBody(t, rr)
		assert.Equal(t, true, resp["approval"])
		assert.Equal(t, float64(10), resp["interest_rate"])
		assert.Equal(t, float64(12), resp["corrected_interest_rate"])
		assert.Equal(t, 8884.88, resp["monthly_installment"])
		assert.Equal(t, float64(62), resp["credit_score"])
		svc.AssertExpectations(t)
	})

	t.Run("Rejected", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("CheckEligibility", mock.Anything, expectedApplication).Return(&loan.EligibilityResult{
			CustomerID: 1, Tenure: 12, RequestedRate: 10,
			Decision: credit.Decision{Approved: false, Score: 5, Reason: credit.ReasonScoreTooLow},
		}, nil).Once()

		rr := httptest.NewRecorder()
		h.CheckEligibility(rr, httptest.NewRequest(http.MethodPost, "/check-eligibility", strings.NewReader(applicationBody)))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeBody(t, rr)
		assert.Equal(t, false, resp["approval"])
		assert.Equal(t, credit.ReasonScoreTooLow, resp["message"])
		assert.Equal(t, float64(5), resp["credit_score"])
	})

	t.Run("Numeric strings are accepted", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("CheckEligibility", mock.Anything, expectedApplication).Return(&loan.EligibilityResult{
			CustomerID: 1, Decision: credit.Decision{Approved: true, Score: 80, CorrectedRate: 10},
		}, nil).Once()

		body := `{"customer_id":"1","loan_amount":"100000","tenure":"12","interest_rate":"10"}`
		rr := httptest.NewRecorder()
		h.CheckEligibility(rr, httptest.NewRequest(http.MethodPost, "/check-eligibility", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Missing fields", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)

		rr := httptest.NewRecorder()
		h.CheckEligibility(rr, httptest.NewRequest(http.MethodPost, "/check-eligibility", strings.NewReader(`{"customer_id":1}`)))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Missing required fields: loan_amount, tenure, interest_rate")
		svc.AssertNotCalled(t, "CheckEligibility", mock.Anything, mock.Anything)
	})

	t.Run("Customer not found", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("CheckEligibility", mock.Anything, expectedApplication).
			Return(nil, fmt.Errorf("%w: customer 1", apperrors.ErrNotFound)).Once()

		rr := httptest.NewRecorder()
		h.CheckEligibility(rr, httptest.NewRequest(http.MethodPost, "/check-eligibility", strings.NewReader(applicationBody)))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Out of range tenure", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("CheckEligibility", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("tenure", "tenure must be positive")).Once()

		body := `{"customer_id":1,"loan_amount":100000,"tenure":0,"interest_rate":10}`
		rr := httptest.NewRecorder()
		h.CheckEligibility(rr, httptest.NewRequest(http.MethodPost, "/check-eligibility", strings.NewReader(body)))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeBody(t, rr)
		assert.Equal(t, "tenure must be positive", resp["error"])
		assert.Equal(t, "tenure", resp["details"])
	})
}

func TestLoanHandler_CreateLoan(t *testing.T) {
	t.Run("Booked", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("BookLoan", mock.Anything, expectedApplication).Return(&loan.BookingResult{
			CustomerID: 1,
			Decision:   credit.Decision{Approved: true, Score: 62, CorrectedRate: 12, MonthlyInstallment: 8884.88},
			Loan:       &loan.Loan{ID: 42, CustomerID: 1, LoanAmount: 100000, Tenure: 12, InterestRate: 12, MonthlyRepayment: 8884.88},
		}, nil).Once()

		rr := httptest.NewRecorder()
		h.CreateLoan(rr, httptest.NewRequest(http.MethodPost, "/create-loan", strings.NewReader(applicationBody)))

		require.Equal(t, http.StatusCreated, rr.Code)
		resp := decodeBody(t, rr)
		assert.Equal(t, float64(42), resp["loan_id"])
		assert.Equal(t, true, resp["loan_approved"])
		assert.Equal(t, "Loan approved and created successfully", resp["message"])
		assert.Equal(t, 8884.88, resp["monthly_repayment"])
		assert.Equal(t, float64(12), resp["corrected_interest_rate"])
		svc.AssertExpectations(t)
	})

	t.Run("Rejected", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("BookLoan", mock.Anything, expectedApplication).Return(&loan.BookingResult{
			CustomerID: 1,
			Decision:   credit.Decision{Approved: false, Score: 0, Reason: credit.ReasonDebtExceedsLimit},
		}, nil).Once()

		rr := httptest.NewRecorder()
		h.CreateLoan(rr, httptest.NewRequest(http.MethodPost, "/create-loan", strings.NewReader(applicationBody)))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeBody(t, rr)
		assert.Contains(t, resp, "loan_id")
		assert.Nil(t, resp["loan_id"])
		assert.Equal(t, false, resp["loan_approved"])
		assert.Equal(t, credit.ReasonDebtExceedsLimit, resp["message"])
		assert.Equal(t, float64(0), resp["credit_score"])
	})

	t.Run("Transaction failure", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("BookLoan", mock.Anything, expectedApplication).
			Return(nil, fmt.Errorf("failed to book loan for customer 1: %w", apperrors.ErrDatabase)).Once()

		rr := httptest.NewRecorder()
		h.CreateLoan(rr, httptest.NewRequest(http.MethodPost, "/create-loan", strings.NewReader(applicationBody)))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Internal server error", decodeBody(t, rr)["error"])
	})

	t.Run("Empty body", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)

		rr := httptest.NewRecorder()
		h.CreateLoan(rr, httptest.NewRequest(http.MethodPost, "/create-loan", strings.NewReader("")))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Missing required fields")
	})
}

func TestLoanHandler_ViewLoan(t *testing.T) {
	age := 41
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Found", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("GetLoanDetails", mock.Anything, int64(42)).Return(&loan.Details{
			Loan: &loan.Loan{ID: 42, CustomerID: 3, LoanAmount: 50000, Tenure: 6, InterestRate: 14,
				MonthlyRepayment: 8680.42, StartDate: start},
			Customer: &customer.Customer{CustomerID: 3, FirstName: "Ravi", LastName: "Kumar",
				PhoneNumber: "9000000000", Age: &age},
		}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/view-loan/42", nil), "loan_id", "42")
		rr := httptest.NewRecorder()
		h.ViewLoan(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeBody(t, rr)
		assert.Equal(t, float64(42), resp["loan_id"])
		assert.Equal(t, float64(50000), resp["loan_amount"])
		assert.Equal(t, float64(6), resp["tenure"])
		cust, ok := resp["customer"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(3), cust["id"])
		assert.Equal(t, "Ravi", cust["first_name"])
		assert.Equal(t, float64(41), cust["age"])
		svc.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("GetLoanDetails", mock.Anything, int64(99)).
			Return(nil, fmt.Errorf("%w: loan 99", apperrors.ErrNotFound)).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/view-loan/99", nil), "loan_id", "99")
		rr := httptest.NewRecorder()
		h.ViewLoan(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Invalid id", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/view-loan/abc", nil), "loan_id", "abc")
		rr := httptest.NewRecorder()
		h.ViewLoan(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "GetLoanDetails", mock.Anything, mock.Anything)
	})
}

func TestLoanHandler_ViewLoans(t *testing.T) {
	t.Run("Lists loans with repayments left", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("ListCustomerLoans", mock.Anything, int64(3)).Return([]*loan.Loan{
			{ID: 1, LoanAmount: 1000, InterestRate: 10, MonthlyRepayment: 100, Tenure: 12, EMIsPaidOnTime: 4},
			{ID: 2, LoanAmount: 2000, InterestRate: 12, MonthlyRepayment: 200, Tenure: 6, EMIsPaidOnTime: 9},
		}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/view-loans/3", nil), "customer_id", "3")
		rr := httptest.NewRecorder()
		h.ViewLoans(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp []map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, float64(8), resp[0]["repayments_left"])
		assert.Equal(t, float64(0), resp[1]["repayments_left"])
		assert.Equal(t, float64(200), resp[1]["monthly_installment"])
	})

	t.Run("Customer without loans", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("ListCustomerLoans", mock.Anything, int64(3)).Return([]*loan.Loan{}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/view-loans/3", nil), "customer_id", "3")
		rr := httptest.NewRecorder()
		h.ViewLoans(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("Unknown customer", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)
		svc.On("ListCustomerLoans", mock.Anything, int64(404)).
			Return(nil, fmt.Errorf("%w: customer 404", apperrors.ErrNotFound)).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/view-loans/404", nil), "customer_id", "404")
		rr := httptest.NewRecorder()
		h.ViewLoans(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Negative id", func(t *testing.T) {
		svc := new(MockLoanService)
		h := NewLoanHandler(svc, testLogger)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/view-loans/-1", nil), "customer_id", "-1")
		rr := httptest.NewRecorder()
		h.ViewLoans(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
