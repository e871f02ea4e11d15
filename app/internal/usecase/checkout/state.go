package checkout

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domcart "example.com/cleantec-orders/app/internal/domain/cart"
	domcheckout "example.com/cleantec-orders/app/internal/domain/checkout"
	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
	domproduct "example.com/cleantec-orders/app/internal/domain/product"
)

type State struct {
	Step            domcheckout.Step
	Items           []domcart.LineItem
	ItemCount       int64
	Totals          domorder.Totals
	Client          *domcustomer.Customer
	Error           string
	Validating      bool
	Submitting      bool
	Receipt         *domorder.Receipt
	SubmittedTotals *domorder.Totals
	// SubmittedItemCount and EstimatedDelivery are set once an order has
	// been created and survive the delayed cart clear.
	SubmittedItemCount int64
	EstimatedDelivery  time.Time
}

// Snapshot is the persisted form of a wizard. In-flight flags are not
// part of it; a restored wizard never has a request outstanding.
type Snapshot struct {
	Step           domcheckout.Step      `json:"step"`
	Items          []SnapshotItem        `json:"items"`
	Client         *domcustomer.Customer `json:"client,omitempty"`
	Error          string                `json:"error,omitempty"`
	OrderID        int64                 `json:"order_id,omitempty"`
	OrderNo        string                `json:"order_number,omitempty"`
	Submitted      *SnapshotTotals       `json:"submitted,omitempty"`
	SubmittedItems int64                 `json:"submitted_items,omitempty"`
	DeliveryBy     time.Time             `json:"delivery_by,omitempty"`
	ClearAt        time.Time             `json:"clear_at,omitempty"`
	LastActive     time.Time             `json:"last_active"`
}

type SnapshotItem struct {
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	SKU         string  `json:"sku,omitempty"`
	Quantity    int64   `json:"quantity"`
}

type SnapshotTotals struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func (w *Wizard) Snapshot() *Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := &Snapshot{
		Step:           w.step,
		Items:          make([]SnapshotItem, 0, len(w.cart.Items())),
		Error:          w.errMsg,
		SubmittedItems: w.submittedItems,
		DeliveryBy:     w.deliveryBy,
		ClearAt:        w.clearAt,
		LastActive:     w.lastActive,
	}
	for _, item := range w.cart.Items() {
		snap.Items = append(snap.Items, SnapshotItem{
			ProductID:   item.ID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Category:    item.Category,
			ImageURL:    item.ImageURL,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
		})
	}
	if w.client != nil {
		c := *w.client
		snap.Client = &c
	}
	if w.receipt != nil {
		snap.OrderID = w.receipt.OrderID
		snap.OrderNo = w.receipt.OrderNumber
	}
	if w.submitted != nil {
		snap.Submitted = &SnapshotTotals{
			Subtotal: w.submitted.Subtotal.String(),
			Tax:      w.submitted.Tax.String(),
			Total:    w.submitted.Total.String(),
		}
	}
	return snap
}

// Restore rebuilds a wizard from a snapshot. Snapshots that would violate
// the step rules are pulled back to the last consistent step.
func Restore(snap *Snapshot, validator ClientValidator, submitter OrderSubmitter, opts Options) (*Wizard, error) {
	items := make([]domcart.LineItem, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, domcart.LineItem{
			Product: domproduct.Product{
				ID:          it.ProductID,
				Name:        it.Name,
				Description: it.Description,
				Price:       it.Price,
				Category:    it.Category,
				ImageURL:    it.ImageURL,
				SKU:         it.SKU,
				IsActive:    true,
			},
			Quantity: it.Quantity,
		})
	}
	c, err := domcart.FromItems(items)
	if err != nil {
		return nil, err
	}

	w := NewWizard(validator, submitter, opts)
	w.cart = c
	w.errMsg = snap.Error
	w.submittedItems = snap.SubmittedItems
	w.deliveryBy = snap.DeliveryBy
	w.clearAt = snap.ClearAt
	if !snap.LastActive.IsZero() {
		w.lastActive = snap.LastActive
	}
	if snap.Client != nil {
		client := *snap.Client
		w.client = &client
	}
	if snap.OrderNo != "" {
		w.receipt = &domorder.Receipt{OrderID: snap.OrderID, OrderNumber: snap.OrderNo}
	}
	if snap.Submitted != nil {
		totals, err := parseTotals(snap.Submitted)
		if err != nil {
			return nil, err
		}
		w.submitted = totals
	}

	w.step = snap.Step
	switch {
	case !w.step.IsValid():
		w.step = domcheckout.StepCart
	case w.step == domcheckout.StepConfirmation && w.client == nil && w.receipt == nil:
		w.step = domcheckout.StepValidation
	}
	if w.cart.IsEmpty() && (w.step == domcheckout.StepReview || w.step == domcheckout.StepValidation) {
		w.step = domcheckout.StepCart
	}
	return w, nil
}

func parseTotals(s *SnapshotTotals) (*domorder.Totals, error) {
	subtotal, err := decimal.NewFromString(s.Subtotal)
	if err != nil {
		return nil, fmt.Errorf("parse submitted subtotal: %w", err)
	}
	totals := domorder.ComputeTotals(subtotal)
	return &totals, nil
}
