package order

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrEmptyOrderItems     = errors.New("no items to order")
	ErrInvalidPayload      = errors.New("invalid order payload")
	ErrTotalsMismatch      = errors.New("order totals do not reconcile")
	ErrOrderNumberConflict = errors.New("order number already exists")
)
