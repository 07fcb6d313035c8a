package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/supplyhub/internal/access"
	"github.com/mmeshcher/supplyhub/internal/model"
	"github.com/mmeshcher/supplyhub/internal/notify"
	"github.com/mmeshcher/supplyhub/internal/repository"
	"github.com/mmeshcher/supplyhub/internal/validation"
)

// ChatSessionRequest описывает новый чат потребителя с торговым представителем.
type ChatSessionRequest struct {
	SalesRepID int64
	OrderID    *int64
}

// CreateChatSession открывает чат потребителя с сотрудником поставщика. Если указан заказ, он
// должен принадлежать потребителю, а сотрудник должен входить в персонал поставщика заказа.
func (s *Service) CreateChatSession(ctx context.Context, userID int64, req ChatSessionRequest) (*model.ChatSession, error) {
	var res model.ChatSession

	err := s.inTx(ctx, func(tx repository.Tx, out *outbox) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !actor.IsConsumer() {
			return fmt.Errorf("%w: only consumers can start chats", model.ErrPermissionDenied)
		}

		rep, err := loadParticipant(ctx, tx, req.SalesRepID)
		if err != nil {
			return err
		}
		if !access.CanHandleChats(rep) {
			return fmt.Errorf("%w: user %d is not a sales representative", model.ErrValidation, req.SalesRepID)
		}

		if req.OrderID != nil {
			order, err := tx.GetOrder(ctx, *req.OrderID)
			if err != nil {
				return err
			}
			if order.ConsumerID != actor.ConsumerID {
				return denied("order", order.ID)
			}
			if rep.Authority(order.SupplierID) < model.AuthoritySales {
				return fmt.Errorf("%w: user %d is not staff of supplier %d", model.ErrValidation, req.SalesRepID, order.SupplierID)
			}
		}

		res = model.ChatSession{
			ConsumerID: actor.ConsumerID,
			SalesRepID: req.SalesRepID,
			OrderID:    req.OrderID,
			CreatedAt:  s.now(),
		}
		if err := tx.CreateChatSession(ctx, &res); err != nil {
			return err
		}

		out.add(res.SalesRepID, notify.TypeChatSessionCreated, res.ID, "new chat %d", res.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chat session created", zap.Int64("chat_session_id", res.ID), zap.Int64("sales_rep_id", res.SalesRepID))
	return &res, nil
}

// GetChatSession возвращает чат, если пользователь его участник.
func (s *Service) GetChatSession(ctx context.Context, userID, sessionID int64) (*model.ChatSession, error) {
	var res *model.ChatSession

	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		cs, err := tx.GetChatSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if !access.CanAccessChatSession(actor, *cs) {
			return denied("chat session", sessionID)
		}

		res = cs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListChatSessions возвращает чаты потребителя, а для персонала поставщика чаты, в которых
// пользователь указан торговым представителем.
func (s *Service) ListChatSessions(ctx context.Context, userID int64, f model.ListFilter) ([]model.ChatSession, error) {
	if f.Status != "" {
		return nil, fmt.Errorf("%w: chat sessions have no status", model.ErrValidation)
	}
	f.Limit, f.Offset = validation.NormalizeWindow(f.Limit, f.Offset)

	var res []model.ChatSession
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		actor, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}

		switch {
		case actor.IsConsumer():
			res, err = tx.ListChatSessionsByConsumer(ctx, actor.ConsumerID, f)
		case actor.Role.IsSupplierSide():
			res, err = tx.ListChatSessionsBySalesRep(ctx, actor.UserID, f)
		default:
			err = fmt.Errorf("%w: user %d has no chats", model.ErrPermissionDenied, userID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// loadParticipant загружает другого участника операции. В отличие от loadActor отсутствие
// пользователя означает ErrNotFound.
func loadParticipant(ctx context.Context, tx repository.Tx, userID int64) (access.Actor, error) {
	u, err := tx.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return access.Actor{}, err
		}
		return access.Actor{}, fmt.Errorf("load user %d: %w", userID, err)
	}
	d, err := loadDelegations(ctx, tx, *u)
	if err != nil {
		return access.Actor{}, err
	}
	return access.NewActor(*u, nil, d), nil
}
