package cart

import (
	"github.com/shopspring/decimal"

	domproduct "example.com/cleantec-orders/app/internal/domain/product"
)

// LineItem pairs a product snapshot with a quantity of at least one.
type LineItem struct {
	domproduct.Product
	Quantity int64
}

func (i LineItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(i.Quantity))
}

// Cart holds at most one line item per product, in insertion order.
// The total is recomputed from the items after every mutation.
type Cart struct {
	items []LineItem
	total decimal.Decimal
}

func New() *Cart {
	return &Cart{items: []LineItem{}, total: decimal.Zero}
}

// FromItems rebuilds a cart from persisted line items. Items with a
// non-positive quantity are dropped and duplicates are merged.
func FromItems(items []LineItem) (*Cart, error) {
	c := New()
	for _, item := range items {
		if !domproduct.ValidPrice(item.Price) {
			return nil, ErrInvalidPrice
		}
		if item.Quantity <= 0 {
			continue
		}
		if idx := c.indexOf(item.ID); idx >= 0 {
			c.items[idx].Quantity += item.Quantity
			continue
		}
		c.items = append(c.items, item)
	}
	c.recompute()
	return c, nil
}

// Add puts one unit of p in the cart, incrementing an existing line.
func (c *Cart) Add(p domproduct.Product) error {
	if !domproduct.ValidPrice(p.Price) {
		return ErrInvalidPrice
	}
	if idx := c.indexOf(p.ID); idx >= 0 {
		c.items[idx].Quantity++
	} else {
		c.items = append(c.items, LineItem{Product: p, Quantity: 1})
	}
	c.recompute()
	return nil
}

// UpdateQuantity sets an absolute quantity. Zero or less removes the line;
// unknown products are ignored.
func (c *Cart) UpdateQuantity(productID, quantity int64) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return
	}
	c.items[idx].Quantity = quantity
	c.recompute()
}

func (c *Cart) Remove(productID int64) {
	if idx := c.indexOf(productID); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
	c.recompute()
}

func (c *Cart) Clear() {
	c.items = []LineItem{}
	c.recompute()
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Total() decimal.Decimal {
	return c.total
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int64 {
	var n int64
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) Clone() *Cart {
	return &Cart{items: c.Items(), total: c.total}
}

func (c *Cart) indexOf(productID int64) int {
	for i := range c.items {
		if c.items[i].ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) recompute() {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	c.total = total
}
