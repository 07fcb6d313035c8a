package handler

import (
	"net/http"

	"github.com/mmeshcher/supplyhub/internal/service"
)

type createProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	PriceKZT    string `json:"price_kzt"`
	StockQty    int64  `json:"stock_qty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type updateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	SKU         *string `json:"sku,omitempty"`
	PriceKZT    *string `json:"price_kzt,omitempty"`
	StockQty    *int64  `json:"stock_qty,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type addStaffRequest struct {
	UserID    int64  `json:"user_id"`
	StaffRole string `json:"staff_role"`
}

// CreateProduct добавляет товар в каталог поставщика. Новый товар по умолчанию активен.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	supplierID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req createProductRequest
	if !decodeJSON(r, &req) {
		badRequest(w)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	p, err := h.service.CreateProduct(r.Context(), userID, supplierID, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		PriceKZT:    req.PriceKZT,
		StockQty:    req.StockQty,
		IsActive:    active,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toProductResponse(*p))
}

// UpdateProduct частично изменяет товар.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateProductRequest
	if !decodeJSON(r, &req) {
		badRequest(w)
		return
	}

	p, err := h.service.UpdateProduct(r.Context(), userID, productID, service.ProductPatch(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(*p))
}

// DeleteProduct удаляет товар из каталога.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), userID, productID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCatalog возвращает каталог поставщика.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	supplierID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	f, ok := listFilter(w, r)
	if !ok {
		return
	}

	products, err := h.service.Catalog(r.Context(), userID, supplierID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeList(h, w, mapSlice(products, toProductResponse))
}

// AddStaff добавляет сотрудника в персонал поставщика.
func (h *Handler) AddStaff(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	supplierID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addStaffRequest
	if !decodeJSON(r, &req) || req.UserID <= 0 {
		badRequest(w)
		return
	}

	st, err := h.service.AddStaff(r.Context(), userID, supplierID, req.UserID, req.StaffRole)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, staffResponse{
		ID:         st.ID,
		UserID:     st.UserID,
		SupplierID: st.SupplierID,
		StaffRole:  string(st.StaffRole),
	})
}
