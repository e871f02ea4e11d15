package order

import (
	"strings"

	"github.com/shopspring/decimal"

	domcart "example.com/cleantec-orders/app/internal/domain/cart"
	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
)

// reconcileTolerance bounds float drift between the payload's amounts.
var reconcileTolerance = decimal.RequireFromString("0.005")

// Payload is the order-creation request sent to the persistence boundary.
type Payload struct {
	ClientNumber  string
	ClientName    string
	ClientCompany string
	ClientAddress string
	ClientPhone   string
	Subtotal      float64
	Tax           float64
	Total         float64
	Notes         string
	Items         []OrderItem
}

// NewPayload denormalizes the customer and prices the cart. Amounts are
// unrounded; the same Totals feed the review screen.
func NewPayload(c *domcart.Cart, cust *domcustomer.Customer, notes string) Payload {
	totals := ComputeTotals(c.Total())
	items := make([]OrderItem, 0, len(c.Items()))
	for _, line := range c.Items() {
		items = append(items, OrderItem{
			ProductID:   line.ID,
			ProductName: line.Name,
			ProductSKU:  line.SKU,
			Quantity:    line.Quantity,
			UnitPrice:   line.Price,
			LineTotal:   line.LineTotal().InexactFloat64(),
		})
	}
	return Payload{
		ClientNumber:  cust.ClientNumber,
		ClientName:    cust.ClientName,
		ClientCompany: cust.CompanyName(),
		ClientAddress: cust.FullAddress(),
		ClientPhone:   cust.Phone,
		Subtotal:      totals.Subtotal.InexactFloat64(),
		Tax:           totals.Tax.InexactFloat64(),
		Total:         totals.Total.InexactFloat64(),
		Notes:         strings.TrimSpace(notes),
		Items:         items,
	}
}

// Validate rejects payloads whose amounts do not reconcile.
func (p *Payload) Validate() error {
	if strings.TrimSpace(p.ClientNumber) == "" {
		return ErrInvalidPayload
	}
	if len(p.Items) == 0 {
		return ErrEmptyOrderItems
	}

	sum := decimal.Zero
	for _, item := range p.Items {
		if item.Quantity < 1 || item.UnitPrice < 0 {
			return ErrInvalidPayload
		}
		line := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(item.Quantity))
		if !within(line, decimal.NewFromFloat(item.LineTotal)) {
			return ErrTotalsMismatch
		}
		sum = sum.Add(line)
	}

	subtotal := decimal.NewFromFloat(p.Subtotal)
	if !within(sum, subtotal) {
		return ErrTotalsMismatch
	}
	want := ComputeTotals(subtotal)
	if !within(want.Tax, decimal.NewFromFloat(p.Tax)) || !within(want.Total, decimal.NewFromFloat(p.Total)) {
		return ErrTotalsMismatch
	}
	return nil
}

// Order converts an accepted payload into a new order with the given number.
func (p *Payload) Order(number string) *Order {
	items := make([]OrderItem, len(p.Items))
	copy(items, p.Items)
	return &Order{
		OrderNumber:   number,
		ClientNumber:  strings.TrimSpace(p.ClientNumber),
		ClientName:    p.ClientName,
		ClientCompany: p.ClientCompany,
		ClientAddress: p.ClientAddress,
		ClientPhone:   p.ClientPhone,
		Subtotal:      p.Subtotal,
		Tax:           p.Tax,
		Total:         p.Total,
		Status:        StatusConfirmed,
		Notes:         p.Notes,
		Items:         items,
	}
}

func within(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(reconcileTolerance)
}
