package handler

import (
	"time"

	"github.com/mmeshcher/supplyhub/internal/model"
)

// Денежные суммы передаются строками с двумя знаками после запятой.

type linkResponse struct {
	ID         int64  `json:"id"`
	ConsumerID int64  `json:"consumer_id"`
	SupplierID int64  `json:"supplier_id"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toLinkResponse(l model.Link) linkResponse {
	return linkResponse{
		ID:         l.ID,
		ConsumerID: l.ConsumerID,
		SupplierID: l.SupplierID,
		Status:     string(l.Status),
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  l.UpdatedAt.Format(time.RFC3339),
	}
}

type orderItemResponse struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	Qty          int64  `json:"qty"`
	UnitPriceKZT string `json:"unit_price_kzt"`
	LineTotalKZT string `json:"line_total_kzt"`
}

type orderResponse struct {
	ID         int64               `json:"id"`
	SupplierID int64               `json:"supplier_id"`
	ConsumerID int64               `json:"consumer_id"`
	Status     string              `json:"status"`
	TotalKZT   string              `json:"total_kzt"`
	CreatedAt  string              `json:"created_at"`
	Items      []orderItemResponse `json:"items"`
}

func toOrderResponse(o model.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			Qty:          it.Qty,
			UnitPriceKZT: it.UnitPriceKZT.StringFixed(2),
			LineTotalKZT: it.LineTotal().StringFixed(2),
		})
	}
	return orderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		ConsumerID: o.ConsumerID,
		Status:     string(o.Status),
		TotalKZT:   o.TotalKZT.StringFixed(2),
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
		Items:      items,
	}
}

type complaintResponse struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ConsumerID  int64   `json:"consumer_id"`
	SalesRepID  int64   `json:"sales_rep_id"`
	ManagerID   int64   `json:"manager_id"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
	Resolution  *string `json:"resolution,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toComplaintResponse(c model.Complaint) complaintResponse {
	return complaintResponse{
		ID:          c.ID,
		OrderID:     c.OrderID,
		ConsumerID:  c.ConsumerID,
		SalesRepID:  c.SalesRepID,
		ManagerID:   c.ManagerID,
		Status:      string(c.Status),
		Description: c.Description,
		Resolution:  c.Resolution,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

type productResponse struct {
	ID          int64  `json:"id"`
	SupplierID  int64  `json:"supplier_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	PriceKZT    string `json:"price_kzt"`
	StockQty    int64  `json:"stock_qty"`
	IsActive    bool   `json:"is_active"`
}

func toProductResponse(p model.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		SupplierID:  p.SupplierID,
		Name:        p.Name,
		Description: p.Description,
		SKU:         p.SKU,
		PriceKZT:    p.PriceKZT.StringFixed(2),
		StockQty:    p.StockQty,
		IsActive:    p.IsActive,
	}
}

type chatSessionResponse struct {
	ID         int64  `json:"id"`
	ConsumerID int64  `json:"consumer_id"`
	SalesRepID int64  `json:"sales_rep_id"`
	OrderID    *int64 `json:"order_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func toChatSessionResponse(cs model.ChatSession) chatSessionResponse {
	return chatSessionResponse{
		ID:         cs.ID,
		ConsumerID: cs.ConsumerID,
		SalesRepID: cs.SalesRepID,
		OrderID:    cs.OrderID,
		CreatedAt:  cs.CreatedAt.Format(time.RFC3339),
	}
}

type staffResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	SupplierID int64  `json:"supplier_id"`
	StaffRole  string `json:"staff_role"`
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
