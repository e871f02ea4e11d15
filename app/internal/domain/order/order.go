package order

import "time"

type Status string

const (
	StatusConfirmed  Status = "confirmado"
	StatusProcessing Status = "procesando"
	StatusDelivered  Status = "entregado"
	StatusCanceled   Status = "cancelado"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusProcessing, StatusDelivered, StatusCanceled:
		return true
	default:
		return false
	}
}

// Order is the persisted order. Client fields are copied from the customer
// at submission time and never re-fetched.
type Order struct {
	ID            int64
	OrderNumber   string
	ClientNumber  string
	ClientName    string
	ClientCompany string
	ClientAddress string
	ClientPhone   string
	Subtotal      float64
	Tax           float64
	Total         float64
	Status        Status
	Notes         string
	Items         []OrderItem
	CreatedAt     time.Time
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	ProductSKU  string
	Quantity    int64
	UnitPrice   float64
	LineTotal   float64
}

// ItemCount is the number of units across all items.
func (o *Order) ItemCount() int64 {
	var n int64
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

type ListFilter struct {
	ClientNumber string
}

// Receipt is what the submitter hands back after a successful create.
type Receipt struct {
	OrderID     int64
	OrderNumber string
}
