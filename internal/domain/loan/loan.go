package loan

import (
	"credit-approval/internal/domain/credit"
	"time"
)

// daysPerMonth approximates a tenure month when computing the end date.
const daysPerMonth = 30

type Loan struct {
	ID               int64
	CustomerID       int64
	LoanAmount       float64
	Tenure           int
	InterestRate     float64
	MonthlyRepayment float64
	EMIsPaidOnTime   int
	StartDate        time.Time
	EndDate          time.Time
	CreatedAt        time.Time
}

func NewLoan(customerID int64, amount float64, tenure int, rate, monthlyRepayment float64, today time.Time) *Loan {
	start := truncateToDate(today)
	return &Loan{
		CustomerID:       customerID,
		LoanAmount:       amount,
		Tenure:           tenure,
		InterestRate:     rate,
		MonthlyRepayment: monthlyRepayment,
		EMIsPaidOnTime:   0,
		StartDate:        start,
		EndDate:          start.AddDate(0, 0, daysPerMonth*tenure),
	}
}

// RepaymentsLeft never goes below zero, even when more installments were
// recorded as paid than the tenure allows.
func (l *Loan) RepaymentsLeft() int {
	return max(0, l.Tenure-l.EMIsPaidOnTime)
}

func CreditHistory(loans []*Loan) []credit.LoanRecord {
	history := make([]credit.LoanRecord, 0, len(loans))
	for _, l := range loans {
		history = append(history, credit.LoanRecord{
			EMIsPaidOnTime: l.EMIsPaidOnTime,
			StartDate:      l.StartDate,
		})
	}
	return history
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
