// Package pricing проверяет позиции заказа и рассчитывает его сумму.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/supplyhub/internal/model"
)

// ProductSource возвращает товары по идентификаторам. Отсутствующие товары просто не попадают в результат.
type ProductSource interface {
	ProductsByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
}

// Request описывает запрос на создание заказа.
type Request struct {
	ConsumerID int64
	SupplierID int64
	Items      []model.OrderLine
}

// BuildOrder проверяет запрос и собирает ещё не сохранённый заказ со снимком цен.
// Проверки выполняются по порядку до первой ошибки: принятая связь, количества, товары.
func BuildOrder(ctx context.Context, src ProductSource, link *model.Link, req Request, now time.Time) (*model.Order, error) {
	if link == nil || link.ConsumerID != req.ConsumerID || link.SupplierID != req.SupplierID ||
		link.Status != model.LinkStatusAccepted {
		return nil, fmt.Errorf("%w: no accepted link with supplier %d", model.ErrPermissionDenied, req.SupplierID)
	}

	if err := ValidateLines(req.Items); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.ProductID)
	}

	products, err := src.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	order := &model.Order{
		SupplierID: req.SupplierID,
		ConsumerID: req.ConsumerID,
		Status:     model.OrderStatusPending,
		TotalKZT:   decimal.Zero,
		CreatedAt:  now,
		Items:      make([]model.OrderItem, 0, len(req.Items)),
	}

	for _, it := range req.Items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d", model.ErrNotFound, it.ProductID)
		}
		if p.SupplierID != req.SupplierID {
			return nil, fmt.Errorf("%w: product %d does not belong to supplier %d", model.ErrValidation, p.ID, req.SupplierID)
		}
		if !p.IsActive {
			return nil, fmt.Errorf("%w: product %d is not active", model.ErrValidation, p.ID)
		}

		item := model.OrderItem{
			ProductID:    p.ID,
			Qty:          it.Qty,
			UnitPriceKZT: p.PriceKZT.Round(2),
		}
		order.TotalKZT = order.TotalKZT.Add(item.LineTotal())
		order.Items = append(order.Items, item)
	}

	order.TotalKZT = order.TotalKZT.Round(2)

	return order, nil
}

// ValidateLines проверяет, что список позиций не пуст и все количества положительны.
func ValidateLines(lines []model.OrderLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", model.ErrValidation)
	}
	for _, it := range lines {
		if it.Qty <= 0 {
			return fmt.Errorf("%w: quantity must be positive for product %d", model.ErrValidation, it.ProductID)
		}
	}
	return nil
}
