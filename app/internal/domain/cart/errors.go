package cart

import "errors"

var (
	ErrInvalidPrice  = errors.New("product price must be a finite non-negative amount")
	ErrUnknownAction = errors.New("unknown cart action")
)
