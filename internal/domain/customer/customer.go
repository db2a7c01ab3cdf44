package customer

import (
	"credit-approval/internal/domain/credit"
	"time"

	"github.com/shopspring/decimal"
)

var (
	limitIncomeShare = decimal.NewFromInt(36)
	limitUnit        = decimal.NewFromInt(100000)
)

type Customer struct {
	CustomerID    int64
	FirstName     string
	LastName      string
	PhoneNumber   string
	Age           *int
	MonthlySalary float64
	ApprovedLimit float64
	CurrentDebt   float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewCustomer(firstName, lastName, phone string, age *int, monthlyIncome float64) *Customer {
	now := time.Now()
	return &Customer{
		FirstName:     firstName,
		LastName:      lastName,
		PhoneNumber:   phone,
		Age:           age,
		MonthlySalary: monthlyIncome,
		ApprovedLimit: ApprovedLimitFor(monthlyIncome),
		CurrentDebt:   0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

func (c *Customer) CreditProfile() credit.Profile {
	return credit.Profile{
		CurrentDebt:   c.CurrentDebt,
		ApprovedLimit: c.ApprovedLimit,
		MonthlySalary: c.MonthlySalary,
	}
}

// ApprovedLimitFor is 36 times the monthly income rounded to the nearest
// 100000, with halves going to the even multiple.
func ApprovedLimitFor(monthlyIncome float64) float64 {
	units := decimal.NewFromFloat(monthlyIncome).Mul(limitIncomeShare).Div(limitUnit).RoundBank(0)
	return units.Mul(limitUnit).InexactFloat64()
}
