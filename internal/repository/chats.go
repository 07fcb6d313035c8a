package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/supplyhub/internal/model"
)

const chatSessionColumns = `id, consumer_id, sales_rep_id, order_id, created_at`

func scanChatSession(row pgx.Row) (model.ChatSession, error) {
	var cs model.ChatSession
	err := row.Scan(&cs.ID, &cs.ConsumerID, &cs.SalesRepID, &cs.OrderID, &cs.CreatedAt)
	return cs, err
}

// GetChatSession возвращает чат по идентификатору.
func (t *pgTx) GetChatSession(ctx context.Context, id int64) (*model.ChatSession, error) {
	cs, err := scanChatSession(t.tx.QueryRow(ctx, `SELECT `+chatSessionColumns+` FROM chat_sessions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "chat session", id)
	}
	return &cs, nil
}

// CreateChatSession сохраняет чат и заполняет ID.
func (t *pgTx) CreateChatSession(ctx context.Context, cs *model.ChatSession) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO chat_sessions (consumer_id, sales_rep_id, order_id, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		cs.ConsumerID, cs.SalesRepID, cs.OrderID, cs.CreatedAt,
	).Scan(&cs.ID)
	if err != nil {
		return fmt.Errorf("insert chat session: %w", err)
	}
	return nil
}

// ListChatSessionsByConsumer возвращает чаты потребителя, новые первыми.
func (t *pgTx) ListChatSessionsByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.ChatSession, error) {
	return t.listChatSessions(ctx, `consumer_id = $1`, consumerID, f)
}

// ListChatSessionsBySalesRep возвращает чаты, в которых пользователь указан торговым представителем.
func (t *pgTx) ListChatSessionsBySalesRep(ctx context.Context, userID int64, f model.ListFilter) ([]model.ChatSession, error) {
	return t.listChatSessions(ctx, `sales_rep_id = $1`, userID, f)
}

func (t *pgTx) listChatSessions(ctx context.Context, where string, id int64, f model.ListFilter) ([]model.ChatSession, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+chatSessionColumns+` FROM chat_sessions
		 WHERE `+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		id, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("select chat sessions: %w", err)
	}
	defer rows.Close()

	res := make([]model.ChatSession, 0)
	for rows.Next() {
		cs, err := scanChatSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat session: %w", err)
		}
		res = append(res, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}
