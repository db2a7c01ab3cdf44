package loan

import (
	"context"
	"credit-approval/internal/domain/credit"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/event"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

type Money = float64

// Application is a request to evaluate or book a loan for a customer.
type Application struct {
	CustomerID   int64
	Amount       Money
	Tenure       int
	InterestRate float64
}

type EligibilityResult struct {
	CustomerID    int64
	Tenure        int
	RequestedRate float64
	Decision      credit.Decision
}

type BookingResult struct {
	CustomerID int64
	Decision   credit.Decision
	// Loan is nil when the application was rejected.
	Loan *Loan
}

type Details struct {
	Loan     *Loan
	Customer *customer.Customer
}

type LoanService interface {
	CheckEligibility(ctx context.Context, app Application) (*EligibilityResult, error)

	BookLoan(ctx context.Context, app Application) (*BookingResult, error)

	GetLoanDetails(ctx context.Context, loanID int64) (*Details, error)

	ListCustomerLoans(ctx context.Context, customerID int64) ([]*Loan, error)
}

var _ LoanService = (*loanServiceImpl)(nil)

type loanServiceImpl struct {
	repo            Repository
	customerService customer.CustomerService
	pub             event.EventPublisher
	engine          *credit.Engine
	now             func() time.Time
	logger          *slog.Logger
}

func NewLoanService(r Repository, cs customer.CustomerService, pub event.EventPublisher, now func() time.Time, logger *slog.Logger) LoanService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if pub == nil {
		pub = event.NewNoopPublisher(logger)
	}
	return &loanServiceImpl{
		repo:            r,
		customerService: cs,
		pub:             pub,
		engine:          credit.NewEngine(now),
		now:             now,
		logger:          logger.With(slog.String("component", "loanService")),
	}
}

func (s *loanServiceImpl) CheckEligibility(ctx context.Context, app Application) (*EligibilityResult, error) {
	if err := validateApplication(app); err != nil {
		return nil, err
	}
	logger := s.logger.With(slog.Int64("customerID", app.CustomerID))

	cust, err := s.customerService.GetCustomer(ctx, app.CustomerID)
	if err != nil {
		return nil, err
	}

	loans, err := s.repo.FindLoansByCustomer(ctx, app.CustomerID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load loan history", slog.Any("error", err))
		return nil, fmt.Errorf("failed to load loan history for customer %d: %w", app.CustomerID, err)
	}

	decision := s.engine.Evaluate(cust.CreditProfile(), CreditHistory(loans), app.creditRequest())
	monitoring.RecordEligibilityDecision("check", decision.Approved)
	logger.InfoContext(ctx, "Eligibility evaluated",
		slog.Bool("approved", decision.Approved),
		slog.Int("score", decision.Score),
		slog.String("reason", decision.Reason))

	return &EligibilityResult{
		CustomerID:    cust.CustomerID,
		Tenure:        app.Tenure,
		RequestedRate: app.InterestRate,
		Decision:      decision,
	}, nil
}

func (s *loanServiceImpl) BookLoan(ctx context.Context, app Application) (*BookingResult, error) {
	if err := validateApplication(app); err != nil {
		return nil, err
	}
	logger := s.logger.With(slog.Int64("customerID", app.CustomerID))
	logger.InfoContext(ctx, "Booking loan", slog.Float64("amount", app.Amount), slog.Int("tenure", app.Tenure))

	var result *BookingResult
	err := s.repo.WithinCustomerTx(ctx, app.CustomerID, func(tx TxRepository, cust *customer.Customer) error {
		loans, err := tx.FindLoansByCustomer(ctx, cust.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to load loan history: %w", err)
		}

		decision := s.engine.Evaluate(cust.CreditProfile(), CreditHistory(loans), app.creditRequest())
		result = &BookingResult{CustomerID: cust.CustomerID, Decision: decision}
		if !decision.Approved {
			return nil
		}

		l := NewLoan(cust.CustomerID, app.Amount, app.Tenure, decision.CorrectedRate, decision.MonthlyInstallment, s.now())
		if err := tx.CreateLoan(ctx, l); err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
		if _, err := tx.UpdateCustomerDebt(ctx, cust.CustomerID, app.Amount); err != nil {
			return fmt.Errorf("failed to update customer debt: %w", err)
		}
		result.Loan = l
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "Customer not found for booking")
			return nil, err
		}
		logger.ErrorContext(ctx, "Loan booking transaction failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to book loan for customer %d: %w", app.CustomerID, err)
	}

	monitoring.RecordEligibilityDecision("book", result.Decision.Approved)
	if result.Loan == nil {
		logger.InfoContext(ctx, "Loan application rejected",
			slog.Int("score", result.Decision.Score),
			slog.String("reason", result.Decision.Reason))
		return result, nil
	}

	monitoring.RecordLoanBooked(app.Amount)
	logger.InfoContext(ctx, "Loan booked", slog.Int64("loanID", result.Loan.ID))
	s.publishLoanBooked(ctx, result)

	return result, nil
}

func (s *loanServiceImpl) GetLoanDetails(ctx context.Context, loanID int64) (*Details, error) {
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", slog.Int64("loanID", loanID))
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", slog.Int64("loanID", loanID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}

	cust, err := s.customerService.GetCustomer(ctx, l.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner of loan %d: %w", loanID, err)
	}

	return &Details{Loan: l, Customer: cust}, nil
}

func (s *loanServiceImpl) ListCustomerLoans(ctx context.Context, customerID int64) ([]*Loan, error) {
	if _, err := s.customerService.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	loans, err := s.repo.FindLoansByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loans", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loans for customer %d: %w", customerID, err)
	}
	return loans, nil
}

func (s *loanServiceImpl) publishLoanBooked(ctx context.Context, result *BookingResult) {
	l := result.Loan
	evt := event.LoanBookedEvent{
		Timestamp: s.now(),
		Payload: event.LoanPayload{
			LoanID:           l.ID,
			CustomerID:       l.CustomerID,
			LoanAmount:       l.LoanAmount,
			Tenure:           l.Tenure,
			InterestRate:     l.InterestRate,
			MonthlyRepayment: l.MonthlyRepayment,
			CreditScore:      result.Decision.Score,
			StartDate:        l.StartDate,
			EndDate:          l.EndDate,
		},
	}
	if err := s.pub.PublishLoanBooked(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Loan booked, but FAILED to publish event", slog.Int64("loanID", l.ID), slog.Any("error", err))
	}
}

func (a Application) creditRequest() credit.Request {
	return credit.Request{Amount: a.Amount, Tenure: a.Tenure, InterestRate: a.InterestRate}
}

func validateApplication(app Application) error {
	switch {
	case math.IsNaN(app.Amount) || math.IsInf(app.Amount, 0) || app.Amount <= 0:
		return apperrors.NewValidationError("loan_amount", "Loan amount must be positive")
	case app.Tenure <= 0:
		return apperrors.NewValidationError("tenure", "Tenure must be positive")
	case math.IsNaN(app.InterestRate) || math.IsInf(app.InterestRate, 0) || app.InterestRate < 0:
		return apperrors.NewValidationError("interest_rate", "Interest rate cannot be negative")
	}
	return nil
}
