package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/supplyhub/internal/access"
	"github.com/mmeshcher/supplyhub/internal/model"
	"github.com/mmeshcher/supplyhub/internal/notify"
	"github.com/mmeshcher/supplyhub/internal/pricing"
	"github.com/mmeshcher/supplyhub/internal/repository"
	"github.com/mmeshcher/supplyhub/internal/statemachine"
)

// CreateOrder оформляет заказ потребителя у поставщика по цене товаров на момент создания.
// Отсутствие принятой связи возвращает ErrPermissionDenied, а не ErrNotFound.
func (s *Service) CreateOrder(ctx context.Context, userID, supplierID int64, items []model.OrderLine) (*model.Order, error) {
	var res *model.Order

	err := s.inTx(ctx, func(tx repository.Tx, out *outbox) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !actor.IsConsumer() {
			return fmt.Errorf("%w: only consumers can place orders", model.ErrPermissionDenied)
		}

		link, err := findLink(ctx, tx, actor.ConsumerID, supplierID)
		if err != nil {
			return err
		}

		order, err := pricing.BuildOrder(ctx, tx, link, pricing.Request{
			ConsumerID: actor.ConsumerID,
			SupplierID: supplierID,
			Items:      items,
		}, s.now())
		if err != nil {
			return err
		}

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		supplier, err := tx.GetSupplier(ctx, supplierID)
		if err != nil {
			return err
		}
		out.add(supplier.UserID, notify.TypeOrderCreated, order.ID, "new order %d for %s KZT", order.ID, order.TotalKZT.StringFixed(2))

		res = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.Int64("order_id", res.ID),
		zap.Int64("supplier_id", supplierID),
		zap.String("total_kzt", res.TotalKZT.StringFixed(2)),
	)
	return res, nil
}

// GetOrder возвращает заказ с позициями, если пользователь имеет право его видеть.
func (s *Service) GetOrder(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	var res *model.Order

	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		o, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !access.CanViewOrder(actor, *o) {
			return denied("order", orderID)
		}

		res = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListOrders возвращает заказы потребителя либо заказы поставщика для его владельца и менеджеров.
func (s *Service) ListOrders(ctx context.Context, userID, supplierID int64, f model.ListFilter) ([]model.Order, error) {
	f, err := normalizeFilter(statemachine.Order, f)
	if err != nil {
		return nil, err
	}

	var res []model.Order
	err = s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		if actor.IsConsumer() {
			res, err = tx.ListOrdersByConsumer(ctx, actor.ConsumerID, f)
			return err
		}

		id, err := managedSupplier(actor, supplierID)
		if err != nil {
			return err
		}
		res, err = tx.ListOrdersBySupplier(ctx, id, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateOrderStatus меняет статус заказа. Доступно владельцу и менеджерам поставщика.
func (s *Service) UpdateOrderStatus(ctx context.Context, userID, orderID int64, to model.OrderStatus) (*model.Order, error) {
	var (
		res  model.Order
		from model.OrderStatus
	)

	err := s.inTx(ctx, func(tx repository.Tx, out *outbox) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		cur, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !access.CanMutateOrderStatus(actor, *cur) {
			return denied("order", orderID)
		}

		from = cur.Status
		res, err = statemachine.ApplyOrder(*cur, to)
		if err != nil {
			return err
		}

		if err := tx.UpdateOrderStatus(ctx, res, from); err != nil {
			return err
		}

		consumer, err := tx.GetConsumer(ctx, res.ConsumerID)
		if err != nil {
			return err
		}
		out.add(consumer.UserID, notify.TypeOrderStatusChanged, res.ID, "order %d is now %s", res.ID, res.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.Int64("order_id", res.ID),
		zap.String("from", string(from)),
		zap.String("to", string(res.Status)),
	)
	return &res, nil
}
