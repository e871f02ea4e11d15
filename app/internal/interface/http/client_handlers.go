package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
)

const (
	msgClientNumberRequired = "Client number is required"
	msgClientNotFound       = "Client not found"
	msgClientLookupFailed   = "Error al obtener información del cliente"
	msgOrderCreated         = "Pedido creado exitosamente"
	msgOrderCreateFailed    = "Error al crear el pedido"
)

// clientInfo is the storefront shape of a customer; absent fields are null.
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

func newClientInfo(c *domcustomer.Customer) *clientInfo {
	return &clientInfo{
		ClientNumber: c.ClientNumber,
		ClientName:   c.ClientName,
		RFC:          optional(c.TaxID),
		Direccion:    optional(c.Street),
		Colonia:      optional(c.District),
		Ciudad:       optional(c.City),
		Estado:       optional(c.State),
		CP:           optional(c.PostalCode),
		Correo:       optional(c.Email),
		Tel:          optional(c.Phone),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (a *API) handleLookupClient(w http.ResponseWriter, r *http.Request) {
	c, err := a.customerSvc.Lookup(r.Context(), r.URL.Query().Get("clientNumber"))
	switch {
	case errors.Is(err, domcustomer.ErrEmptyClientNumber):
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": msgClientNumberRequired})
		return
	case errors.Is(err, domcustomer.ErrCustomerNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": msgClientNotFound})
		return
	case err != nil:
		a.logger.Error("client lookup", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": msgClientLookupFailed})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "client": newClientInfo(c)})
}

type orderItemRequest struct {
	ProductID   int64   `json:"product_id" validate:"required"`
	ProductName string  `json:"product_name" validate:"required"`
	ProductSKU  string  `json:"product_sku"`
	Quantity    int64   `json:"quantity" validate:"gte=1"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	TotalPrice  float64 `json:"total_price" validate:"gte=0"`
}

type createOrderRequest struct {
	ClientNumber  string             `json:"client_number" validate:"required"`
	ClientName    string             `json:"client_name"`
	ClientCompany string             `json:"client_company"`
	ClientAddress string             `json:"client_address"`
	ClientPhone   string             `json:"client_phone"`
	Subtotal      float64            `json:"subtotal" validate:"gte=0"`
	IVA           float64            `json:"iva" validate:"gte=0"`
	Total         float64            `json:"total" validate:"gte=0"`
	Notes         string             `json:"notes"`
	Items         []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (req createOrderRequest) payload() domorder.Payload {
	items := make([]domorder.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domorder.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ProductSKU:  it.ProductSKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.TotalPrice,
		})
	}
	return domorder.Payload{
		ClientNumber:  req.ClientNumber,
		ClientName:    req.ClientName,
		ClientCompany: req.ClientCompany,
		ClientAddress: req.ClientAddress,
		ClientPhone:   req.ClientPhone,
		Subtotal:      req.Subtotal,
		Tax:           req.IVA,
		Total:         req.Total,
		Notes:         req.Notes,
		Items:         items,
	}
}

func (a *API) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}

	receipt, err := a.orderSvc.CreateOrder(r.Context(), req.payload())
	if err != nil {
		status := domainStatus(err)
		if status == http.StatusUnprocessableEntity {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
			return
		}
		a.logger.Error("create order", zap.String("client_number", req.ClientNumber), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": msgOrderCreateFailed})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"orderId":     receipt.OrderID,
		"orderNumber": receipt.OrderNumber,
		"message":     msgOrderCreated,
	})
}
