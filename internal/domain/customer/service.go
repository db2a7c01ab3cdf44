package customer

import (
	"context"
	"credit-approval/internal/event"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

const (
	maxNameLength  = 100
	maxPhoneLength = 15
)

type RegistrationRequest struct {
	FirstName     string
	LastName      string
	Age           *int
	MonthlyIncome float64
	PhoneNumber   string
}

type CustomerService interface {
	Register(ctx context.Context, req RegistrationRequest) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, pub event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if pub == nil {
		pub = event.NewNoopPublisher(logger)
	}

	return &customerService{
		repo:   repo,
		pub:    pub,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) Register(ctx context.Context, req RegistrationRequest) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to register customer")

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := validateRegistration(req); err != nil {
		field, _ := apperrors.FieldOf(err)
		s.logger.WarnContext(ctx, "Registration validation failed", slog.String("field", field), slog.Any("error", err))
		return nil, err
	}

	cust := NewCustomer(req.FirstName, req.LastName, req.PhoneNumber, req.Age, req.MonthlyIncome)

	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			s.logger.WarnContext(ctx, "Phone number already registered")
			return nil, fmt.Errorf("%w: phone number %s is already registered", apperrors.ErrConflict, req.PhoneNumber)
		}
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	logger := s.logger.With(slog.Int64("customerID", cust.CustomerID))
	logger.InfoContext(ctx, "Customer registered", slog.Float64("approvedLimit", cust.ApprovedLimit))
	monitoring.RecordCustomerRegistered()

	registered := event.CustomerRegisteredEvent{
		Timestamp: time.Now(),
		Payload: event.CustomerPayload{
			CustomerID:    cust.CustomerID,
			FirstName:     cust.FirstName,
			LastName:      cust.LastName,
			PhoneNumber:   cust.PhoneNumber,
			MonthlySalary: cust.MonthlySalary,
			ApprovedLimit: cust.ApprovedLimit,
		},
	}
	if pubErr := s.pub.PublishCustomerRegistered(ctx, registered); pubErr != nil {
		logger.ErrorContext(ctx, "Customer registered, but FAILED to publish registration event", slog.Any("error", pubErr))
	}

	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}
	return cust, nil
}

func validateRegistration(req RegistrationRequest) error {
	switch {
	case req.FirstName == "":
		return apperrors.NewValidationError("first_name", "must not be empty")
	case len(req.FirstName) > maxNameLength:
		return apperrors.NewValidationError("first_name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	case req.LastName == "":
		return apperrors.NewValidationError("last_name", "must not be empty")
	case len(req.LastName) > maxNameLength:
		return apperrors.NewValidationError("last_name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	case req.PhoneNumber == "":
		return apperrors.NewValidationError("phone_number", "must not be empty")
	case len(req.PhoneNumber) > maxPhoneLength:
		return apperrors.NewValidationError("phone_number", fmt.Sprintf("must be at most %d characters", maxPhoneLength))
	case math.IsNaN(req.MonthlyIncome) || math.IsInf(req.MonthlyIncome, 0) || req.MonthlyIncome <= 0:
		return apperrors.NewValidationError("monthly_income", "must be positive")
	case req.Age != nil && *req.Age < 0:
		return apperrors.NewValidationError("age", "must not be negative")
	}
	return nil
}
