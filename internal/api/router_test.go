package api

import (
	"context"
	"credit-approval/internal/config"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCustomerService struct {
	mock.Mock
}

func (m *mockCustomerService) Register(ctx context.Context, req customer.RegistrationRequest) (*customer.Customer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *mockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

type mockLoanService struct {
	mock.Mock
}

func (m *mockLoanService) CheckEligibility(ctx context.Context, app loan.Application) (*loan.EligibilityResult, error) {
	args := m.Called(ctx, app)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.EligibilityResult), args.Error(1)
}

func (m *mockLoanService) BookLoan(ctx context.Context, app loan.Application) (*loan.BookingResult, error) {
	args := m.Called(ctx, app)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.BookingResult), args.Error(1)
}

func (m *mockLoanService) GetLoanDetails(ctx context.Context, loanID int64) (*loan.Details, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Details), args.Error(1)
}

func (m *mockLoanService) ListCustomerLoans(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Loan), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			RateLimit: config.RateLimitConfig{Enabled: false},
			Auth:      config.AuthConfig{Enabled: true, JWTSecret: "router-secret"},
		},
		Metrics: config.MetricsConfig{Path: "/metrics"},
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSetupRouter(t *testing.T) {
	loans := new(mockLoanService)
	customers := new(mockCustomerService)
	router := SetupRouter(loans, customers, testConfig(), nil, discardLogger)

	t.Run("health is public", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "credit_approval_")
	})

	t.Run("credit routes require a token", func(t *testing.T) {
		for _, tc := range []struct{ method, path string }{
			{http.MethodPost, "/register"},
			{http.MethodPost, "/check-eligibility"},
			{http.MethodPost, "/create-loan"},
			{http.MethodGet, "/view-loan/1"},
			{http.MethodGet, "/view-loans/1"},
		} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		}
	})

	t.Run("issued token unlocks credit routes", func(t *testing.T) {
		loans.On("ListCustomerLoans", mock.Anything, int64(5)).
			Return(nil, fmt.Errorf("%w: customer 5", apperrors.ErrNotFound)).Once()

		tokenRec := httptest.NewRecorder()
		router.ServeHTTP(tokenRec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"username":"ops"}`)))
		require.Equal(t, http.StatusOK, tokenRec.Code)

		var token struct {
			Token string `json:"token"`
		}
		require.NoError(t, jsonDecode(tokenRec, &token))

		req := httptest.NewRequest(http.MethodGet, "/view-loans/5", nil)
		req.Header.Set("Authorization", "Bearer "+token.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		loans.AssertExpectations(t)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loans", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func jsonDecode(rec *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}
