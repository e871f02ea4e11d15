package cart

import domproduct "example.com/cleantec-orders/app/internal/domain/product"

type ActionType string

const (
	ActionAddItem        ActionType = "ADD_ITEM"
	ActionUpdateQuantity ActionType = "UPDATE_QUANTITY"
	ActionRemoveItem     ActionType = "REMOVE_ITEM"
	ActionClearCart      ActionType = "CLEAR_CART"
)

type Action struct {
	Type      ActionType
	Product   domproduct.Product
	ProductID int64
	Quantity  int64
}

// Reduce applies a to a copy of c and returns the copy; c is left untouched.
func Reduce(c *Cart, a Action) (*Cart, error) {
	next := c.Clone()
	if err := next.Apply(a); err != nil {
		return nil, err
	}
	return next, nil
}

func (c *Cart) Apply(a Action) error {
	switch a.Type {
	case ActionAddItem:
		return c.Add(a.Product)
	case ActionUpdateQuantity:
		c.UpdateQuantity(a.ProductID, a.Quantity)
	case ActionRemoveItem:
		c.Remove(a.ProductID)
	case ActionClearCart:
		c.Clear()
	default:
		return ErrUnknownAction
	}
	return nil
}
