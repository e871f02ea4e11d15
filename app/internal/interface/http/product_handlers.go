package http

import (
	"net/http"

	domcategory "example.com/cleantec-orders/app/internal/domain/category"
	domproduct "example.com/cleantec-orders/app/internal/domain/product"
	"example.com/cleantec-orders/app/internal/infra/catalogcsv"
	productuc "example.com/cleantec-orders/app/internal/usecase/product"
)

const maxImportBytes = 10 << 20

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domproduct.ListFilter{
		OnlyActive: true,
		Category:   r.URL.Query().Get("category"),
		Search:     r.URL.Query().Get("q"),
	}

	products, err := a.productSvc.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p, err := a.productSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categorySvc.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, mapCategory(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleListProductsAdmin(w http.ResponseWriter, r *http.Request) {
	filter := domproduct.ListFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
	}
	if status := r.URL.Query().Get("only_active"); status == "1" || status == "true" {
		filter.OnlyActive = true
	}

	products, err := a.productSvc.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

type createProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Price2      float64 `json:"price2" validate:"gte=0"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Stock       int64   `json:"stock" validate:"gte=0"`
	SKU         string  `json:"sku"`
	IsActive    *bool   `json:"is_active"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Price2      *float64 `json:"price2" validate:"omitempty,gte=0"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"image_url"`
	Stock       *int64   `json:"stock" validate:"omitempty,gte=0"`
	SKU         *string  `json:"sku"`
	IsActive    *bool    `json:"is_active"`
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	p, err := a.productSvc.Create(r.Context(), &domproduct.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Price2:      req.Price2,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		SKU:         req.SKU,
		IsActive:    isActive,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(p))
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateProductRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.productSvc.Update(r.Context(), id, productuc.Patch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Price2:      req.Price2,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		SKU:         req.SKU,
		IsActive:    req.IsActive,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.productSvc.Delete(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImportProducts takes a raw CSV body and upserts its rows by name.
func (a *API) handleImportProducts(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	rows, err := catalogcsv.Parse(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	summary, err := a.productSvc.Import(r.Context(), rows)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func mapProduct(p *domproduct.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"price2":      p.Price2,
		"category":    p.Category,
		"image_url":   p.ImageURL,
		"stock":       p.Stock,
		"in_stock":    p.InStock(),
		"sku":         p.SKU,
		"is_active":   p.IsActive,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

func mapCategory(c *domcategory.Category) map[string]any {
	return map[string]any{
		"name":          c.Name,
		"product_count": c.ProductCount,
	}
}
