package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/supplyhub/internal/model"
)

const linkColumns = `id, consumer_id, supplier_id, status, created_at, updated_at`

func scanLink(row pgx.Row) (model.Link, error) {
	var l model.Link
	err := row.Scan(&l.ID, &l.ConsumerID, &l.SupplierID, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// GetLink возвращает связь по идентификатору.
func (t *pgTx) GetLink(ctx context.Context, id int64) (*model.Link, error) {
	l, err := scanLink(t.tx.QueryRow(ctx, `SELECT `+linkColumns+` FROM links WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "link", id)
	}
	return &l, nil
}

// LockLink возвращает связь, блокируя строку до конца транзакции.
func (t *pgTx) LockLink(ctx context.Context, id int64) (*model.Link, error) {
	l, err := scanLink(t.tx.QueryRow(ctx, `SELECT `+linkColumns+` FROM links WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "link", id)
	}
	return &l, nil
}

// FindLink возвращает связь пары потребитель-поставщик с блокировкой строки.
func (t *pgTx) FindLink(ctx context.Context, consumerID, supplierID int64) (*model.Link, error) {
	l, err := scanLink(t.tx.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM links WHERE consumer_id = $1 AND supplier_id = $2 FOR UPDATE`,
		consumerID, supplierID,
	))
	if err != nil {
		return nil, notFound(err, "link with supplier", supplierID)
	}
	return &l, nil
}

// CreateLink сохраняет новую связь и заполняет ID.
func (t *pgTx) CreateLink(ctx context.Context, l *model.Link) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO links (consumer_id, supplier_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		l.ConsumerID, l.SupplierID, string(l.Status), l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
	if err != nil {
		return uniqueViolation(err, "link")
	}
	return nil
}

// UpdateLinkStatus переводит связь в l.Status, если в базе она всё ещё в статусе from.
func (t *pgTx) UpdateLinkStatus(ctx context.Context, l model.Link, from model.LinkStatus) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE links SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		l.ID, string(from), string(l.Status), l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	return staleWrite(tag, "link", l.ID)
}

// ListLinksByConsumer возвращает связи потребителя.
func (t *pgTx) ListLinksByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.Link, error) {
	return t.listLinks(ctx, `consumer_id = $1`, consumerID, f)
}

// ListLinksBySupplier возвращает входящие запросы и связи поставщика.
func (t *pgTx) ListLinksBySupplier(ctx context.Context, supplierID int64, f model.ListFilter) ([]model.Link, error) {
	return t.listLinks(ctx, `supplier_id = $1`, supplierID, f)
}

func (t *pgTx) listLinks(ctx context.Context, where string, id int64, f model.ListFilter) ([]model.Link, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+linkColumns+` FROM links
		 WHERE `+where+` AND ($2::text IS NULL OR status = $2)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3 OFFSET $4`,
		id, statusArg(f.Status), f.Limit, f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("select links: %w", err)
	}
	defer rows.Close()

	res := make([]model.Link, 0)
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		res = append(res, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}
