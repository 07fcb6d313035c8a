package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/supplyhub/internal/model"
)

const complaintColumns = `id, order_id, consumer_id, sales_rep_id, manager_id, status, description, resolution, created_at`

func scanComplaint(row pgx.Row) (model.Complaint, error) {
	var c model.Complaint
	err := row.Scan(&c.ID, &c.OrderID, &c.ConsumerID, &c.SalesRepID, &c.ManagerID,
		&c.Status, &c.Description, &c.Resolution, &c.CreatedAt)
	return c, err
}

// GetComplaint возвращает жалобу по идентификатору.
func (t *pgTx) GetComplaint(ctx context.Context, id int64) (*model.Complaint, error) {
	c, err := scanComplaint(t.tx.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "complaint", id)
	}
	return &c, nil
}

// LockComplaint возвращает жалобу, блокируя строку до конца транзакции.
func (t *pgTx) LockComplaint(ctx context.Context, id int64) (*model.Complaint, error) {
	c, err := scanComplaint(t.tx.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "complaint", id)
	}
	return &c, nil
}

// CreateComplaint сохраняет жалобу и заполняет ID.
func (t *pgTx) CreateComplaint(ctx context.Context, c *model.Complaint) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO complaints (order_id, consumer_id, sales_rep_id, manager_id, status, description, resolution, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		c.OrderID, c.ConsumerID, c.SalesRepID, c.ManagerID, string(c.Status), c.Description, c.Resolution, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

// UpdateComplaintStatus сохраняет статус и решение жалобы, если в базе она всё ещё в статусе from.
func (t *pgTx) UpdateComplaintStatus(ctx context.Context, c model.Complaint, from model.ComplaintStatus) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE complaints SET status = $3, resolution = $4 WHERE id = $1 AND status = $2`,
		c.ID, string(from), string(c.Status), c.Resolution,
	)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	return staleWrite(tag, "complaint", c.ID)
}

// ListComplaintsByConsumer возвращает жалобы потребителя.
func (t *pgTx) ListComplaintsByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.Complaint, error) {
	return t.listComplaints(ctx, `consumer_id = $1`, consumerID, f)
}

// ListComplaintsByHandler возвращает жалобы, где пользователь указан торговым представителем
// или, если salesRepOnly ложно, менеджером.
func (t *pgTx) ListComplaintsByHandler(ctx context.Context, userID int64, salesRepOnly bool, f model.ListFilter) ([]model.Complaint, error) {
	if salesRepOnly {
		return t.listComplaints(ctx, `sales_rep_id = $1`, userID, f)
	}
	return t.listComplaints(ctx, `(sales_rep_id = $1 OR manager_id = $1)`, userID, f)
}

func (t *pgTx) listComplaints(ctx context.Context, where string, id int64, f model.ListFilter) ([]model.Complaint, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+complaintColumns+` FROM complaints
		 WHERE `+where+` AND ($2::text IS NULL OR status = $2)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3 OFFSET $4`,
		id, statusArg(f.Status), f.Limit, f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("select complaints: %w", err)
	}
	defer rows.Close()

	res := make([]model.Complaint, 0)
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}
