package customer

import "errors"

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrEmptyClientNumber  = errors.New("client number is required")
	ErrClientNumberExists = errors.New("client number already exists")
	ErrInvalidCustomer    = errors.New("invalid customer")
	ErrCustomerHasOrders  = errors.New("customer has orders")
)
