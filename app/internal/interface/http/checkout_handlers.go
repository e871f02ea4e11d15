package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	checkoutuc "example.com/cleantec-orders/app/internal/usecase/checkout"
)

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// Quantity zero or below removes the line.
type updateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type validateClientRequest struct {
	ClientNumber string `json:"client_number"`
}

type submitOrderRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

func (a *API) handleStartCheckout(w http.ResponseWriter, r *http.Request) {
	id, state, err := a.checkout.Start(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCheckout(id, state))
}

func (a *API) handleGetCheckout(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	state, err := a.checkout.State(r.Context(), sid)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCheckout(sid, state))
}

func (a *API) handleEndCheckout(w http.ResponseWriter, r *http.Request) {
	if err := a.checkout.End(r.Context(), chi.URLParam(r, "sid")); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	sid := chi.URLParam(r, "sid")
	state, err := a.checkout.AddProduct(r.Context(), sid, req.ProductID)
	respondCheckout(w, sid, state, err)
}

func (a *API) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	pid, err := parseIDParam(r, "pid")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	a.doCheckout(w, r, func(wz *checkoutuc.Wizard) error {
		return wz.UpdateQuantity(pid, req.Quantity)
	})
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	pid, err := parseIDParam(r, "pid")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	a.doCheckout(w, r, func(wz *checkoutuc.Wizard) error {
		return wz.RemoveItem(pid)
	})
}

func (a *API) handleClearCart(w http.ResponseWriter, r *http.Request) {
	a.doCheckout(w, r, (*checkoutuc.Wizard).ClearCart)
}

func (a *API) handleProceed(w http.ResponseWriter, r *http.Request) {
	a.doCheckout(w, r, (*checkoutuc.Wizard).Proceed)
}

func (a *API) handleBack(w http.ResponseWriter, r *http.Request) {
	a.doCheckout(w, r, (*checkoutuc.Wizard).Back)
}

func (a *API) handleCompleteCheckout(w http.ResponseWriter, r *http.Request) {
	a.doCheckout(w, r, (*checkoutuc.Wizard).Complete)
}

func (a *API) handleValidateClient(w http.ResponseWriter, r *http.Request) {
	var req validateClientRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	ctx := r.Context()
	a.doCheckout(w, r, func(wz *checkoutuc.Wizard) error {
		return wz.ValidateClient(ctx, req.ClientNumber)
	})
}

func (a *API) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if r.ContentLength != 0 {
		if err := a.decodeAndValidate(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
	}
	// The submission outlives a dropped connection so a created order is
	// never lost from the session.
	ctx := context.WithoutCancel(r.Context())
	a.doCheckout(w, r, func(wz *checkoutuc.Wizard) error {
		_, err := wz.Submit(ctx, req.Notes)
		return err
	})
}

func (a *API) doCheckout(w http.ResponseWriter, r *http.Request, fn func(*checkoutuc.Wizard) error) {
	sid := chi.URLParam(r, "sid")
	state, err := a.checkout.Do(r.Context(), sid, fn)
	respondCheckout(w, sid, state, err)
}

// respondCheckout reports an operation error together with the session
// view when one is available, so the client can render the message.
func respondCheckout(w http.ResponseWriter, sid string, state checkoutuc.State, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, mapCheckout(sid, state))
		return
	}
	if state.Step == "" {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, domainStatus(err), errorResponse{
		Error:   err.Error(),
		Details: mapCheckout(sid, state),
	})
}

func mapCheckout(sid string, s checkoutuc.State) map[string]any {
	items := make([]map[string]any, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, map[string]any{
			"product_id": it.ID,
			"name":       it.Name,
			"sku":        it.SKU,
			"category":   it.Category,
			"image_url":  it.ImageURL,
			"price":      it.Price,
			"quantity":   it.Quantity,
			"line_total": it.LineTotal().StringFixed(2),
		})
	}

	resp := map[string]any{
		"session_id": sid,
		"step":       s.Step,
		"items":      items,
		"item_count": s.ItemCount,
		"totals":     s.Totals.Display(),
		"error":      s.Error,
		"validating": s.Validating,
		"submitting": s.Submitting,
		"client":     nil,
		"order":      nil,
	}
	if s.Client != nil {
		resp["client"] = map[string]any{
			"client_number": s.Client.ClientNumber,
			"client_name":   s.Client.ClientName,
			"company":       s.Client.CompanyName(),
			"address":       s.Client.FullAddress(),
			"phone":         s.Client.Phone,
			"email":         s.Client.Email,
		}
	}
	if s.Receipt != nil {
		order := map[string]any{
			"order_id":     s.Receipt.OrderID,
			"order_number": s.Receipt.OrderNumber,
			"item_count":   s.SubmittedItemCount,
		}
		if !s.EstimatedDelivery.IsZero() {
			order["estimated_delivery"] = s.EstimatedDelivery.Format(time.DateOnly)
		}
		if s.SubmittedTotals != nil {
			order["totals"] = s.SubmittedTotals.Display()
		}
		resp["order"] = order
	}
	return resp
}
