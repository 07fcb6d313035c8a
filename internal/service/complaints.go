package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/supplyhub/internal/access"
	"github.com/mmeshcher/supplyhub/internal/model"
	"github.com/mmeshcher/supplyhub/internal/notify"
	"github.com/mmeshcher/supplyhub/internal/repository"
	"github.com/mmeshcher/supplyhub/internal/statemachine"
)

// ComplaintRequest описывает новую жалобу по заказу.
type ComplaintRequest struct {
	OrderID     int64
	SalesRepID  int64
	ManagerID   int64
	Description string
}

// CreateComplaint регистрирует жалобу потребителя по его заказу. Торговый представитель должен
// входить в персонал поставщика заказа, менеджер должен быть его владельцем или менеджером.
func (s *Service) CreateComplaint(ctx context.Context, userID int64, req ComplaintRequest) (*model.Complaint, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", model.ErrValidation)
	}

	var res model.Complaint

	err := s.inTx(ctx, func(tx repository.Tx, out *outbox) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		order, err := tx.GetOrder(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if !access.CanCreateComplaint(actor, *order) {
			return denied("order", order.ID)
		}

		rep, err := supplierAuthority(ctx, tx, req.SalesRepID, order.SupplierID)
		if err != nil {
			return err
		}
		if rep < model.AuthoritySales {
			return fmt.Errorf("%w: user %d is not staff of supplier %d", model.ErrValidation, req.SalesRepID, order.SupplierID)
		}

		mgr, err := supplierAuthority(ctx, tx, req.ManagerID, order.SupplierID)
		if err != nil {
			return err
		}
		if !mgr.CanManage() {
			return fmt.Errorf("%w: user %d is not a manager of supplier %d", model.ErrValidation, req.ManagerID, order.SupplierID)
		}

		res = model.Complaint{
			OrderID:     order.ID,
			ConsumerID:  order.ConsumerID,
			SalesRepID:  req.SalesRepID,
			ManagerID:   req.ManagerID,
			Status:      model.ComplaintStatusOpen,
			Description: req.Description,
			CreatedAt:   s.now(),
		}
		if err := tx.CreateComplaint(ctx, &res); err != nil {
			return err
		}

		out.add(res.SalesRepID, notify.TypeComplaintCreated, res.ID, "complaint on order %d", order.ID)
		if res.ManagerID != res.SalesRepID {
			out.add(res.ManagerID, notify.TypeComplaintCreated, res.ID, "complaint on order %d", order.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("complaint created", zap.Int64("complaint_id", res.ID), zap.Int64("order_id", res.OrderID))
	return &res, nil
}

// GetComplaint возвращает жалобу, если пользователь имеет право её видеть.
func (s *Service) GetComplaint(ctx context.Context, userID, complaintID int64) (*model.Complaint, error) {
	var res *model.Complaint

	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		c, err := tx.GetComplaint(ctx, complaintID)
		if err != nil {
			return err
		}
		if !access.CanViewComplaint(actor, *c) {
			return denied("complaint", complaintID)
		}

		res = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListComplaints возвращает жалобы потребителя, а для персонала поставщика жалобы, в которых
// пользователь указан торговым представителем или менеджером.
func (s *Service) ListComplaints(ctx context.Context, userID int64, f model.ListFilter) ([]model.Complaint, error) {
	f, err := normalizeFilter(statemachine.Complaint, f)
	if err != nil {
		return nil, err
	}

	var res []model.Complaint
	err = s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		switch {
		case actor.IsConsumer():
			res, err = tx.ListComplaintsByConsumer(ctx, actor.ConsumerID, f)
		case actor.Role.IsSupplierSide():
			res, err = tx.ListComplaintsByHandler(ctx, actor.UserID, actor.Role == model.RoleSupplierSales, f)
		default:
			err = fmt.Errorf("%w: user %d has no complaints", model.ErrPermissionDenied, userID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateComplaintStatus меняет статус жалобы. Закрытие требует непустого текста решения.
func (s *Service) UpdateComplaintStatus(ctx context.Context, userID, complaintID int64, to model.ComplaintStatus, resolution *string) (*model.Complaint, error) {
	var (
		res  model.Complaint
		from model.ComplaintStatus
	)

	err := s.inTx(ctx, func(tx repository.Tx, out *outbox) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		cur, err := tx.LockComplaint(ctx, complaintID)
		if err != nil {
			return err
		}
		if !access.CanMutateComplaintStatus(actor, *cur) {
			return denied("complaint", complaintID)
		}

		from = cur.Status
		res, err = statemachine.ApplyComplaint(*cur, to, statemachine.ComplaintChange{Resolution: resolution})
		if err != nil {
			return err
		}

		if err := tx.UpdateComplaintStatus(ctx, res, from); err != nil {
			return err
		}

		consumer, err := tx.GetConsumer(ctx, res.ConsumerID)
		if err != nil {
			return err
		}
		out.add(consumer.UserID, notify.TypeComplaintUpdated, res.ID, "complaint %d is now %s", res.ID, res.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("complaint status changed",
		zap.Int64("complaint_id", res.ID),
		zap.String("from", string(from)),
		zap.String("to", string(res.Status)),
	)
	return &res, nil
}
