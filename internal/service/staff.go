package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/supplyhub/internal/access"
	"github.com/mmeshcher/supplyhub/internal/model"
	"github.com/mmeshcher/supplyhub/internal/repository"
)

// AddStaff добавляет пользователя в персонал поставщика. Доступно только владельцу.
func (s *Service) AddStaff(ctx context.Context, userID, supplierID, staffUserID int64, role string) (*model.SupplierStaff, error) {
	staffRole, err := model.ParseStaffRole(role)
	if err != nil {
		return nil, err
	}

	var res model.SupplierStaff
	err = s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		if _, err := tx.GetSupplier(ctx, supplierID); err != nil {
			return err
		}
		if !access.CanManageStaff(actor, supplierID) {
			return denied("supplier", supplierID)
		}

		u, err := tx.GetUser(ctx, staffUserID)
		if err != nil {
			return err
		}
		if !u.Role.IsSupplierSide() {
			return fmt.Errorf("%w: user %d has role %s", model.ErrValidation, u.ID, u.Role)
		}

		res = model.SupplierStaff{UserID: u.ID, SupplierID: supplierID, StaffRole: staffRole}
		return tx.AddStaff(ctx, &res)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("staff added",
		zap.Int64("supplier_id", supplierID),
		zap.Int64("user_id", staffUserID),
		zap.String("staff_role", string(staffRole)),
	)
	return &res, nil
}
