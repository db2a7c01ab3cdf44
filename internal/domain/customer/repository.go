package customer

import "context"

type CustomerRepository interface {
	// Save inserts a new customer and fills in its generated ID and timestamps.
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)
}
