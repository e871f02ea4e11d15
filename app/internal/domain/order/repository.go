package order

import "context"

type Repository interface {
	// Create stores the order and its items in one transaction and fills
	// in the generated identifiers.
	Create(ctx context.Context, o *Order) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error)
}
