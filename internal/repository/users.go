package repository

import (
	"context"
	"fmt"

	"github.com/mmeshcher/supplyhub/internal/model"
)

// GetUser возвращает пользователя по идентификатору.
func (t *pgTx) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := t.tx.QueryRow(ctx,
		`SELECT id, email, role, is_active, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return &u, nil
}

// GetConsumer возвращает профиль потребителя по идентификатору.
func (t *pgTx) GetConsumer(ctx context.Context, id int64) (*model.Consumer, error) {
	var c model.Consumer
	err := t.tx.QueryRow(ctx,
		`SELECT id, user_id, organization_name, created_at FROM consumers WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.UserID, &c.OrganizationName, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "consumer", id)
	}
	return &c, nil
}

// GetConsumerByUser возвращает профиль потребителя, принадлежащий пользователю.
func (t *pgTx) GetConsumerByUser(ctx context.Context, userID int64) (*model.Consumer, error) {
	var c model.Consumer
	err := t.tx.QueryRow(ctx,
		`SELECT id, user_id, organization_name, created_at FROM consumers WHERE user_id = $1`,
		userID,
	).Scan(&c.ID, &c.UserID, &c.OrganizationName, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "consumer of user", userID)
	}
	return &c, nil
}

// GetSupplier возвращает поставщика по идентификатору.
func (t *pgTx) GetSupplier(ctx context.Context, id int64) (*model.Supplier, error) {
	var s model.Supplier
	err := t.tx.QueryRow(ctx,
		`SELECT id, user_id, name, is_active, created_at FROM suppliers WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.Name, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err, "supplier", id)
	}
	return &s, nil
}

// SuppliersOwnedBy возвращает поставщиков, владельцем которых является пользователь.
func (t *pgTx) SuppliersOwnedBy(ctx context.Context, userID int64) ([]model.Supplier, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, user_id, name, is_active, created_at FROM suppliers WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select suppliers: %w", err)
	}
	defer rows.Close()

	var res []model.Supplier
	for rows.Next() {
		var s model.Supplier
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		res = append(res, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// StaffByUser возвращает все членства пользователя в персонале поставщиков.
func (t *pgTx) StaffByUser(ctx context.Context, userID int64) ([]model.SupplierStaff, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, user_id, supplier_id, staff_role, created_at FROM supplier_staff WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select staff: %w", err)
	}
	defer rows.Close()

	var res []model.SupplierStaff
	for rows.Next() {
		var st model.SupplierStaff
		if err := rows.Scan(&st.ID, &st.UserID, &st.SupplierID, &st.StaffRole, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		res = append(res, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// AddStaff добавляет пользователя в персонал поставщика и заполняет ID и CreatedAt.
func (t *pgTx) AddStaff(ctx context.Context, st *model.SupplierStaff) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO supplier_staff (user_id, supplier_id, staff_role) VALUES ($1, $2, $3) RETURNING id, created_at`,
		st.UserID, st.SupplierID, string(st.StaffRole),
	).Scan(&st.ID, &st.CreatedAt)
	if err != nil {
		return uniqueViolation(err, "staff membership")
	}
	return nil
}
