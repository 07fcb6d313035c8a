package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/supplyhub/internal/access"
	"github.com/mmeshcher/supplyhub/internal/model"
	"github.com/mmeshcher/supplyhub/internal/notify"
	"github.com/mmeshcher/supplyhub/internal/repository"
	"github.com/mmeshcher/supplyhub/internal/statemachine"
)

// RequestLink создаёт запрос потребителя на связь с поставщиком. Отклонённая связь
// возвращается в статус pending; для любой другой существующей связи возвращается ErrConflict.
func (s *Service) RequestLink(ctx context.Context, userID, supplierID int64) (*model.Link, error) {
	var res model.Link

	err := s.inTx(ctx, func(tx repository.Tx, out *outbox) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !actor.IsConsumer() {
			return fmt.Errorf("%w: only consumers can request links", model.ErrPermissionDenied)
		}

		supplier, err := tx.GetSupplier(ctx, supplierID)
		if err != nil {
			return err
		}

		existing, err := findLink(ctx, tx, actor.ConsumerID, supplierID)
		if err != nil {
			return err
		}

		now := s.now()
		if existing == nil {
			res = model.Link{
				ConsumerID: actor.ConsumerID,
				SupplierID: supplierID,
				Status:     model.LinkStatusPending,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.CreateLink(ctx, &res); err != nil {
				return err
			}
		} else {
			if existing.Status != model.LinkStatusDenied {
				return fmt.Errorf("%w: link with supplier %d is already %s", model.ErrConflict, supplierID, existing.Status)
			}
			if !access.CanRequestLink(actor, *existing) {
				return denied("link", existing.ID)
			}
			res, err = statemachine.ApplyLink(*existing, model.LinkStatusPending)
			if err != nil {
				return err
			}
			res.UpdatedAt = now
			if err := tx.UpdateLinkStatus(ctx, res, existing.Status); err != nil {
				return err
			}
		}

		out.add(supplier.UserID, notify.TypeLinkRequested, res.ID, "consumer %d requested a link", actor.ConsumerID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("link requested", zap.Int64("link_id", res.ID), zap.Int64("supplier_id", supplierID))
	return &res, nil
}

// GetLink возвращает связь, если пользователь имеет право её видеть.
func (s *Service) GetLink(ctx context.Context, userID, linkID int64) (*model.Link, error) {
	var res *model.Link

	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		l, err := tx.GetLink(ctx, linkID)
		if err != nil {
			return err
		}
		if !access.CanViewLink(actor, *l) {
			return denied("link", linkID)
		}

		res = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateLinkStatus меняет статус связи. Доступно владельцу и менеджерам поставщика.
func (s *Service) UpdateLinkStatus(ctx context.Context, userID, linkID int64, to model.LinkStatus) (*model.Link, error) {
	var (
		res  model.Link
		from model.LinkStatus
	)

	err := s.inTx(ctx, func(tx repository.Tx, out *outbox) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		cur, err := tx.LockLink(ctx, linkID)
		if err != nil {
			return err
		}
		if !access.CanMutateLinkStatus(actor, *cur) {
			return denied("link", linkID)
		}

		from = cur.Status
		res, err = statemachine.ApplyLink(*cur, to)
		if err != nil {
			return err
		}
		res.UpdatedAt = s.now()

		if err := tx.UpdateLinkStatus(ctx, res, from); err != nil {
			return err
		}

		consumer, err := tx.GetConsumer(ctx, res.ConsumerID)
		if err != nil {
			return err
		}
		out.add(consumer.UserID, notify.TypeLinkStatusChanged, res.ID, "link with supplier %d is now %s", res.SupplierID, res.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("link status changed",
		zap.Int64("link_id", res.ID),
		zap.String("from", string(from)),
		zap.String("to", string(res.Status)),
	)
	return &res, nil
}

// ListLinks возвращает связи текущего потребителя.
func (s *Service) ListLinks(ctx context.Context, userID int64, f model.ListFilter) ([]model.Link, error) {
	f, err := normalizeFilter(statemachine.Link, f)
	if err != nil {
		return nil, err
	}

	var res []model.Link
	err = s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !actor.IsConsumer() {
			return fmt.Errorf("%w: only consumers have outgoing links", model.ErrPermissionDenied)
		}

		res, err = tx.ListLinksByConsumer(ctx, actor.ConsumerID, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListIncomingLinks возвращает связи поставщика. При supplierID == 0 берётся поставщик,
// которым управляет пользователь.
func (s *Service) ListIncomingLinks(ctx context.Context, userID, supplierID int64, f model.ListFilter) ([]model.Link, error) {
	f, err := normalizeFilter(statemachine.Link, f)
	if err != nil {
		return nil, err
	}

	var res []model.Link
	err = s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		id, err := managedSupplier(actor, supplierID)
		if err != nil {
			return err
		}

		res, err = tx.ListLinksBySupplier(ctx, id, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
