package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/supplyhub/internal/model"
)

const productColumns = `id, supplier_id, name, description, sku, price_kzt::text, stock_qty, is_active, created_at`

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		p     model.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.SupplierID, &p.Name, &p.Description, &p.SKU, &price,
		&p.StockQty, &p.IsActive, &p.CreatedAt); err != nil {
		return p, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return p, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.PriceKZT = d
	return p, nil
}

// LockProduct возвращает товар, блокируя строку до конца транзакции.
func (t *pgTx) LockProduct(ctx context.Context, id int64) (*model.Product, error) {
	p, err := scanProduct(t.tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

// ProductsByIDs возвращает найденные товары по идентификаторам. Отсутствующие в результат не попадают.
func (t *pgTx) ProductsByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	res := make(map[int64]model.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// CreateProduct сохраняет товар и заполняет ID и CreatedAt.
func (t *pgTx) CreateProduct(ctx context.Context, p *model.Product) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO products (supplier_id, name, description, sku, price_kzt, stock_qty, is_active)
		 VALUES ($1, $2, $3, $4, $5::text::numeric, $6, $7) RETURNING id, created_at`,
		p.SupplierID, p.Name, p.Description, p.SKU, p.PriceKZT.StringFixed(2), p.StockQty, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return uniqueViolation(err, "product sku")
	}
	return nil
}

// UpdateProduct перезаписывает изменяемые поля товара.
func (t *pgTx) UpdateProduct(ctx context.Context, p model.Product) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE products
		 SET name = $2, description = $3, sku = $4, price_kzt = $5::text::numeric, stock_qty = $6, is_active = $7
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.SKU, p.PriceKZT.StringFixed(2), p.StockQty, p.IsActive,
	)
	if err != nil {
		return uniqueViolation(err, "product sku")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", model.ErrNotFound, p.ID)
	}
	return nil
}

// DeleteProduct удаляет товар. Товар, на который ссылаются позиции заказов, не удаляется:
// возвращается model.ErrConflict.
func (t *pgTx) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("%w: product %d is referenced by orders", model.ErrConflict, id)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", model.ErrNotFound, id)
	}
	return nil
}

// ListProducts возвращает товары поставщика; при activeOnly только активные.
func (t *pgTx) ListProducts(ctx context.Context, supplierID int64, activeOnly bool, f model.ListFilter) ([]model.Product, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE supplier_id = $1 AND (NOT $2 OR is_active)
		 ORDER BY id
		 LIMIT $3 OFFSET $4`,
		supplierID, activeOnly, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	res := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}
