package dto

import (
	"credit-approval/internal/domain/customer"
	"encoding/json"
)

var registerFields = []string{"first_name", "last_name", "monthly_income", "phone_number"}

type RegisterRequest struct {
	FirstName     *string         `json:"first_name"`
	LastName      *string         `json:"last_name"`
	Age           *json.Number    `json:"age" swaggertype:"integer"`
	MonthlyIncome *json.Number    `json:"monthly_income" swaggertype:"number"`
	PhoneNumber   *FlexibleString `json:"phone_number" swaggertype:"string"`
}

// ToDomain checks presence and types; range rules are left to the service.
func (r *RegisterRequest) ToDomain() (customer.RegistrationRequest, error) {
	if err := requireFields(registerFields, []bool{
		r.FirstName != nil, r.LastName != nil, r.MonthlyIncome != nil, r.PhoneNumber != nil,
	}); err != nil {
		return customer.RegistrationRequest{}, err
	}

	income, err := parseFloat("monthly_income", r.MonthlyIncome)
	if err != nil {
		return customer.RegistrationRequest{}, err
	}

	var age *int
	if r.Age != nil {
		v, err := parseInt("age", r.Age)
		if err != nil {
			return customer.RegistrationRequest{}, err
		}
		a := int(v)
		age = &a
	}

	return customer.RegistrationRequest{
		FirstName:     *r.FirstName,
		LastName:      *r.LastName,
		Age:           age,
		MonthlyIncome: income,
		PhoneNumber:   string(*r.PhoneNumber),
	}, nil
}

type RegisterResponse struct {
	CustomerID    int64   `json:"customer_id"`
	Name          string  `json:"name"`
	Age           *int    `json:"age"`
	MonthlyIncome float64 `json:"monthly_income"`
	ApprovedLimit float64 `json:"approved_limit"`
	PhoneNumber   string  `json:"phone_number"`
}

func NewRegisterResponse(cust *customer.Customer) RegisterResponse {
	return RegisterResponse{
		CustomerID:    cust.CustomerID,
		Name:          cust.FullName(),
		Age:           cust.Age,
		MonthlyIncome: cust.MonthlySalary,
		ApprovedLimit: cust.ApprovedLimit,
		PhoneNumber:   cust.PhoneNumber,
	}
}

type CustomerSummary struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Age         *int   `json:"age"`
}

func NewCustomerSummary(cust *customer.Customer) CustomerSummary {
	return CustomerSummary{
		ID:          cust.CustomerID,
		FirstName:   cust.FirstName,
		LastName:    cust.LastName,
		PhoneNumber: cust.PhoneNumber,
		Age:         cust.Age,
	}
}
