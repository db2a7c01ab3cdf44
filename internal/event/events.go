package event

import (
	"context"
	"log/slog"
	"time"
)

type CustomerPayload struct {
	CustomerID    int64   `json:"customerId"`
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	PhoneNumber   string  `json:"phoneNumber"`
	MonthlySalary float64 `json:"monthlySalary"`
	ApprovedLimit float64 `json:"approvedLimit"`
}

type CustomerRegisteredEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	Payload   CustomerPayload `json:"payload"`
}

type LoanPayload struct {
	LoanID           int64     `json:"loanId"`
	CustomerID       int64     `json:"customerId"`
	LoanAmount       float64   `json:"loanAmount"`
	Tenure           int       `json:"tenure"`
	InterestRate     float64   `json:"interestRate"`
	MonthlyRepayment float64   `json:"monthlyRepayment"`
	CreditScore      int       `json:"creditScore"`
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
}

type LoanBookedEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Payload   LoanPayload `json:"payload"`
}

// NoopPublisher drops every event. Used when RabbitMQ is disabled.
type NoopPublisher struct {
	logger *slog.Logger
}

var _ EventPublisher = (*NoopPublisher)(nil)

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger.With("component", "NoopPublisher")}
}

func (p *NoopPublisher) PublishCustomerRegistered(ctx context.Context, event CustomerRegisteredEvent) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", RoutingKeyCustomerRegistered, "customerId", event.Payload.CustomerID)
	return nil
}

func (p *NoopPublisher) PublishLoanBooked(ctx context.Context, event LoanBookedEvent) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", RoutingKeyLoanBooked, "loanId", event.Payload.LoanID)
	return nil
}
