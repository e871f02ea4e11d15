package backoffice

import (
	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
)

type clientInfo struct {
	ClientNumber string  `json:"clientNumber"`
	ClientName   string  `json:"clientName"`
	RFC          *string `json:"RFC"`
	Direccion    *string `json:"direccion"`
	Colonia      *string `json:"colonia"`
	Ciudad       *string `json:"ciudad"`
	Estado       *string `json:"estado"`
	CP           *string `json:"cp"`
	Correo       *string `json:"correo"`
	Tel          *string `json:"tel"`
}

func (c *clientInfo) toDomain() *domcustomer.Customer {
	return &domcustomer.Customer{
		ClientNumber: c.ClientNumber,
		ClientName:   c.ClientName,
		TaxID:        str(c.RFC),
		Street:       str(c.Direccion),
		District:     str(c.Colonia),
		City:         str(c.Ciudad),
		State:        str(c.Estado),
		PostalCode:   str(c.CP),
		Email:        str(c.Correo),
		Phone:        str(c.Tel),
	}
}

type clientResponse struct {
	Success bool        `json:"success"`
	Client  *clientInfo `json:"client"`
	Error   string      `json:"error"`
}

type orderItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	ProductSKU  string  `json:"product_sku"`
	Quantity    int64   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type orderRequest struct {
	ClientNumber  string      `json:"client_number"`
	ClientName    string      `json:"client_name"`
	ClientCompany string      `json:"client_company"`
	ClientAddress string      `json:"client_address"`
	ClientPhone   string      `json:"client_phone"`
	Subtotal      float64     `json:"subtotal"`
	IVA           float64     `json:"iva"`
	Total         float64     `json:"total"`
	Notes         string      `json:"notes"`
	Items         []orderItem `json:"items"`
}

func newOrderRequest(p domorder.Payload) orderRequest {
	items := make([]orderItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, orderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ProductSKU:  it.ProductSKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.LineTotal,
		})
	}
	return orderRequest{
		ClientNumber:  p.ClientNumber,
		ClientName:    p.ClientName,
		ClientCompany: p.ClientCompany,
		ClientAddress: p.ClientAddress,
		ClientPhone:   p.ClientPhone,
		Subtotal:      p.Subtotal,
		IVA:           p.Tax,
		Total:         p.Total,
		Notes:         p.Notes,
		Items:         items,
	}
}

type orderResponse struct {
	Success     bool   `json:"success"`
	OrderID     int64  `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Message     string `json:"message"`
	Error       string `json:"error"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
