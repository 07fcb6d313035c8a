package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/supplyhub/internal/model"
)

const orderColumns = `id, supplier_id, consumer_id, status, total_kzt::text, created_at`

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		o     model.Order
		total string
	)
	if err := row.Scan(&o.ID, &o.SupplierID, &o.ConsumerID, &o.Status, &total, &o.CreatedAt); err != nil {
		return o, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return o, fmt.Errorf("parse order total %q: %w", total, err)
	}
	o.TotalKZT = d
	return o, nil
}

// GetOrder возвращает заказ вместе с позициями.
func (t *pgTx) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	return t.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// LockOrder возвращает заказ с позициями, блокируя строку заказа до конца транзакции.
func (t *pgTx) LockOrder(ctx context.Context, id int64) (*model.Order, error) {
	return t.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (t *pgTx) getOrder(ctx context.Context, query string, id int64) (*model.Order, error) {
	o, err := scanOrder(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "order", id)
	}

	items, err := t.orderItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

// CreateOrder сохраняет заказ и его позиции, заполняя идентификаторы.
func (t *pgTx) CreateOrder(ctx context.Context, o *model.Order) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO orders (supplier_id, consumer_id, status, total_kzt, created_at)
		 VALUES ($1, $2, $3, $4::text::numeric, $5) RETURNING id`,
		o.SupplierID, o.ConsumerID, string(o.Status), o.TotalKZT.StringFixed(2), o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		it := o.Items[i]
		batch.Queue(
			`INSERT INTO order_items (order_id, product_id, qty, unit_price_kzt)
			 VALUES ($1, $2, $3, $4::text::numeric) RETURNING id`,
			it.OrderID, it.ProductID, it.Qty, it.UnitPriceKZT.StringFixed(2),
		)
	}

	br := t.tx.SendBatch(ctx, batch)
	for i := range o.Items {
		if err := br.QueryRow().Scan(&o.Items[i].ID); err != nil {
			br.Close()
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return nil
}

// UpdateOrderStatus переводит заказ в o.Status, если в базе он всё ещё в статусе from.
func (t *pgTx) UpdateOrderStatus(ctx context.Context, o model.Order, from model.OrderStatus) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`,
		o.ID, string(from), string(o.Status),
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return staleWrite(tag, "order", o.ID)
}

// ListOrdersByConsumer возвращает заказы потребителя.
func (t *pgTx) ListOrdersByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.Order, error) {
	return t.listOrders(ctx, `consumer_id = $1`, consumerID, f)
}

// ListOrdersBySupplier возвращает заказы, поступившие поставщику.
func (t *pgTx) ListOrdersBySupplier(ctx context.Context, supplierID int64, f model.ListFilter) ([]model.Order, error) {
	return t.listOrders(ctx, `supplier_id = $1`, supplierID, f)
}

func (t *pgTx) listOrders(ctx context.Context, where string, id int64, f model.ListFilter) ([]model.Order, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE `+where+` AND ($2::text IS NULL OR status = $2)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3 OFFSET $4`,
		id, statusArg(f.Status), f.Limit, f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	res := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		res = append(res, o)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(res) == 0 {
		return res, nil
	}

	ids := make([]int64, 0, len(res))
	for _, o := range res {
		ids = append(ids, o.ID)
	}
	items, err := t.orderItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range res {
		res[i].Items = items[res[i].ID]
	}
	return res, nil
}

func (t *pgTx) orderItems(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, order_id, product_id, qty, unit_price_kzt::text
		 FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		orderIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	res := make(map[int64][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var (
			it    model.OrderItem
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Qty, &price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if it.UnitPriceKZT, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse unit price %q: %w", price, err)
		}
		res[it.OrderID] = append(res[it.OrderID], it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}
