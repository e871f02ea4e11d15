package customer

import "context"

type Repository interface {
	Create(ctx context.Context, c *Customer) (*Customer, error)
	Update(ctx context.Context, c *Customer) (*Customer, error)
	// Delete fails with ErrCustomerHasOrders while orders reference the
	// customer's client number.
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Customer, error)
	GetByClientNumber(ctx context.Context, clientNumber string) (*Customer, error)
	List(ctx context.Context) ([]*Customer, error)
}
