package dto

import (
	"credit-approval/internal/domain/loan"
	"encoding/json"
)

const msgLoanCreated = "Loan approved and created successfully"

var applicationFields = []string{"customer_id", "loan_amount", "tenure", "interest_rate"}

// LoanApplicationRequest is the body of both /check-eligibility and /create-loan.
type LoanApplicationRequest struct {
	CustomerID   *json.Number `json:"customer_id" swaggertype:"integer"`
	LoanAmount   *json.Number `json:"loan_amount" swaggertype:"number"`
	Tenure       *json.Number `json:"tenure" swaggertype:"integer"`
	InterestRate *json.Number `json:"interest_rate" swaggertype:"number"`
}

func (r *LoanApplicationRequest) ToDomain() (loan.Application, error) {
	if err := requireFields(applicationFields, []bool{
		r.CustomerID != nil, r.LoanAmount != nil, r.Tenure != nil, r.InterestRate != nil,
	}); err != nil {
		return loan.Application{}, err
	}

	customerID, err := parseInt("customer_id", r.CustomerID)
	if err != nil {
		return loan.Application{}, err
	}
	amount, err := parseFloat("loan_amount", r.LoanAmount)
	if err != nil {
		return loan.Application{}, err
	}
	tenure, err := parseInt("tenure", r.Tenure)
	if err != nil {
		return loan.Application{}, err
	}
	rate, err := parseFloat("interest_rate", r.InterestRate)
	if err != nil {
		return loan.Application{}, err
	}

	return loan.Application{
		CustomerID:   customerID,
		Amount:       amount,
		Tenure:       int(tenure),
		InterestRate: rate,
	}, nil
}

type EligibilityResponse struct {
	CustomerID            int64   `json:"customer_id"`
	Approval              bool    `json:"approval"`
	InterestRate          float64 `json:"interest_rate"`
	CorrectedInterestRate float64 `json:"corrected_interest_rate"`
	Tenure                int     `json:"tenure"`
	MonthlyInstallment    float64 `json:"monthly_installment"`
	CreditScore           int     `json:"credit_score"`
}

type EligibilityRejectedResponse struct {
	CustomerID  int64  `json:"customer_id"`
	Approval    bool   `json:"approval"`
	Message     string `json:"message"`
	CreditScore int    `json:"credit_score"`
}

// NewEligibilityResponse returns either an EligibilityResponse or an
// EligibilityRejectedResponse together with whether the loan was approved.
func NewEligibilityResponse(res *loan.EligibilityResult) (any, bool) {
	d := res.Decision
	if !d.Approved {
		return EligibilityRejectedResponse{
			CustomerID:  res.CustomerID,
			Approval:    false,
			Message:     d.Reason,
			CreditScore: d.Score,
		}, false
	}
	return EligibilityResponse{
		CustomerID:            res.CustomerID,
		Approval:              true,
		InterestRate:          res.RequestedRate,
		CorrectedInterestRate: d.CorrectedRate,
		Tenure:                res.Tenure,
		MonthlyInstallment:    d.MonthlyInstallment,
		CreditScore:           d.Score,
	}, true
}

type CreateLoanResponse struct {
	LoanID                int64   `json:"loan_id"`
	CustomerID            int64   `json:"customer_id"`
	LoanApproved          bool    `json:"loan_approved"`
	Message               string  `json:"message"`
	MonthlyRepayment      float64 `json:"monthly_repayment"`
	CorrectedInterestRate float64 `json:"corrected_interest_rate"`
}

type LoanRejectedResponse struct {
	LoanID       *int64 `json:"loan_id"`
	CustomerID   int64  `json:"customer_id"`
	LoanApproved bool   `json:"loan_approved"`
	Message      string `json:"message"`
	CreditScore  int    `json:"credit_score"`
}

func NewCreateLoanResponse(res *loan.BookingResult) (any, bool) {
	if res.Loan == nil {
		return LoanRejectedResponse{
			LoanID:       nil,
			CustomerID:   res.CustomerID,
			LoanApproved: false,
			Message:      res.Decision.Reason,
			CreditScore:  res.Decision.Score,
		}, false
	}
	return CreateLoanResponse{
		LoanID:                res.Loan.ID,
		CustomerID:            res.CustomerID,
		LoanApproved:          true,
		Message:               msgLoanCreated,
		MonthlyRepayment:      res.Loan.MonthlyRepayment,
		CorrectedInterestRate: res.Loan.InterestRate,
	}, true
}

type LoanDetailsResponse struct {
	LoanID             int64           `json:"loan_id"`
	Customer           CustomerSummary `json:"customer"`
	LoanAmount         float64         `json:"loan_amount"`
	InterestRate       float64         `json:"interest_rate"`
	MonthlyInstallment float64         `json:"monthly_installment"`
	Tenure             int             `json:"tenure"`
}

func NewLoanDetailsResponse(d *loan.Details) LoanDetailsResponse {
	return LoanDetailsResponse{
		LoanID:             d.Loan.ID,
		Customer:           NewCustomerSummary(d.Customer),
		LoanAmount:         d.Loan.LoanAmount,
		InterestRate:       d.Loan.InterestRate,
		MonthlyInstallment: d.Loan.MonthlyRepayment,
		Tenure:             d.Loan.Tenure,
	}
}

type LoanSummaryResponse struct {
	LoanID             int64   `json:"loan_id"`
	LoanAmount         float64 `json:"loan_amount"`
	InterestRate       float64 `json:"interest_rate"`
	MonthlyInstallment float64 `json:"monthly_installment"`
	RepaymentsLeft     int     `json:"repayments_left"`
}

func NewLoanSummaryResponses(loans []*loan.Loan) []LoanSummaryResponse {
	resp := make([]LoanSummaryResponse, len(loans))
	for i, l := range loans {
		resp[i] = LoanSummaryResponse{
			LoanID:             l.ID,
			LoanAmount:         l.LoanAmount,
			InterestRate:       l.InterestRate,
			MonthlyInstallment: l.MonthlyRepayment,
			RepaymentsLeft:     l.RepaymentsLeft(),
		}
	}
	return resp
}
