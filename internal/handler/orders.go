package handler

import (
	"net/http"

	"github.com/mmeshcher/supplyhub/internal/model"
)

type orderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Qty       int64 `json:"qty"`
}

type createOrderRequest struct {
	SupplierID int64              `json:"supplier_id"`
	Items      []orderItemRequest `json:"items"`
}

// CreateOrder оформляет заказ текущего потребителя. Проверка позиций выполняется сервисом.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if !decodeJSON(r, &req) || req.SupplierID <= 0 {
		badRequest(w)
		return
	}

	lines := make([]model.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, model.OrderLine{ProductID: it.ProductID, Qty: it.Qty})
	}

	order, err := h.service.CreateOrder(r.Context(), userID, req.SupplierID, lines)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toOrderResponse(*order))
}

// GetOrders возвращает заказы текущего потребителя или поставщика.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	supplierID, ok := supplierQuery(w, r)
	if !ok {
		return
	}
	f, ok := listFilter(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListOrders(r.Context(), userID, supplierID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeList(h, w, mapSlice(orders, toOrderResponse))
}

// GetOrder возвращает заказ с позициями.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// UpdateOrderStatus меняет статус заказа.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req statusRequest
	if !decodeJSON(r, &req) || req.Status == "" {
		badRequest(w)
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), userID, orderID, model.OrderStatus(req.Status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(*order))
}
