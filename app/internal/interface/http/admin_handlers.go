package http

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
	"example.com/cleantec-orders/app/internal/infra/document"
	customeruc "example.com/cleantec-orders/app/internal/usecase/customer"
)

type createCustomerRequest struct {
	ClientNumber string `json:"client_number" validate:"required"`
	ClientName   string `json:"client_name" validate:"required"`
	TaxID        string `json:"rfc"`
	Street       string `json:"street"`
	District     string `json:"district"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
}

type updateCustomerRequest struct {
	ClientNumber *string `json:"client_number"`
	ClientName   *string `json:"client_name"`
	TaxID        *string `json:"rfc"`
	Street       *string `json:"street"`
	District     *string `json:"district"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postal_code"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone"`
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := a.customerSvc.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, mapCustomer(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	c, err := a.customerSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCustomer(c))
}

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	c, err := a.customerSvc.Create(r.Context(), &domcustomer.Customer{
		ClientNumber: req.ClientNumber,
		ClientName:   req.ClientName,
		TaxID:        req.TaxID,
		Street:       req.Street,
		District:     req.District,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Email:        req.Email,
		Phone:        req.Phone,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCustomer(c))
}

func (a *API) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateCustomerRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	c, err := a.customerSvc.Update(r.Context(), id, customeruc.Patch{
		ClientNumber: req.ClientNumber,
		ClientName:   req.ClientName,
		TaxID:        req.TaxID,
		Street:       req.Street,
		District:     req.District,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Email:        req.Email,
		Phone:        req.Phone,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCustomer(c))
}

func (a *API) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.customerSvc.Delete(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := a.orderSvc.List(r.Context(), domorder.ListFilter{
		ClientNumber: r.URL.Query().Get("clientNumber"),
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, mapOrder(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	o, err := a.orderSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

func (a *API) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateOrderStatusRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	o, err := a.orderSvc.UpdateStatus(r.Context(), id, domorder.Status(req.Status))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

func (a *API) handleOrderDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	o, err := a.orderSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	body, err := document.Render(o)
	if err != nil {
		a.logger.Error("render order document", zap.Int64("order_id", o.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, errors.New("failed to render order document"))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+document.FileName(o)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func mapCustomer(c *domcustomer.Customer) map[string]any {
	return map[string]any{
		"id":            c.ID,
		"client_number": c.ClientNumber,
		"client_name":   c.ClientName,
		"rfc":           c.TaxID,
		"street":        c.Street,
		"district":      c.District,
		"city":          c.City,
		"state":         c.State,
		"postal_code":   c.PostalCode,
		"email":         c.Email,
		"phone":         c.Phone,
		"full_address":  c.FullAddress(),
		"created_at":    c.CreatedAt,
	}
}

func mapOrder(o *domorder.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"id":           it.ID,
			"product_id":   it.ProductID,
			"product_name": it.ProductName,
			"product_sku":  it.ProductSKU,
			"quantity":     it.Quantity,
			"unit_price":   it.UnitPrice,
			"total_price":  it.LineTotal,
		})
	}
	return map[string]any{
		"id":             o.ID,
		"order_number":   o.OrderNumber,
		"client_number":  o.ClientNumber,
		"client_name":    o.ClientName,
		"client_company": o.ClientCompany,
		"client_address": o.ClientAddress,
		"client_phone":   o.ClientPhone,
		"subtotal":       o.Subtotal,
		"iva":            o.Tax,
		"total":          o.Total,
		"status":         o.Status,
		"notes":          o.Notes,
		"item_count":     o.ItemCount(),
		"items":          items,
		"created_at":     o.CreatedAt,
	}
}
