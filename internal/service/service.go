// Package service реализует сценарии работы со связями, заказами, жалобами и каталогом.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/supplyhub/internal/access"
	"github.com/mmeshcher/supplyhub/internal/model"
	"github.com/mmeshcher/supplyhub/internal/notify"
	"github.com/mmeshcher/supplyhub/internal/repository"
	"github.com/mmeshcher/supplyhub/internal/statemachine"
	"github.com/mmeshcher/supplyhub/internal/validation"
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error
}

// Notifier доставляет уведомления пользователям.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) error
}

// notifyBudget ограничивает общее время отправки уведомлений одного запроса.
const notifyBudget = 2 * time.Second

// Service содержит бизнес-логику платформы заказов.
type Service struct {
	repo          Repository
	notifier      Notifier
	logger        *zap.Logger
	now           func() time.Time
	notifyTimeout time.Duration
}

// NewService создаёт сервис. notifier может быть nil, тогда уведомления не отправляются.
func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:          repo,
		notifier:      notifier,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		notifyTimeout: notifyBudget,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// outbox накапливает уведомления внутри транзакции; они отправляются только после фиксации.
type outbox []notify.Notification

func (o *outbox) add(recipient int64, kind string, entityID int64, format string, args ...any) {
	*o = append(*o, notify.Notification{
		RecipientUserID: recipient,
		Type:            kind,
		EntityID:        entityID,
		Message:         fmt.Sprintf(format, args...),
	})
}

// inTx выполняет fn в транзакции и после успешной фиксации рассылает накопленные уведомления.
func (s *Service) inTx(ctx context.Context, fn func(tx repository.Tx, out *outbox) error) error {
	var out outbox
	err := s.repo.WithinTx(ctx, func(tx repository.Tx) error {
		out = out[:0]
		return fn(tx, &out)
	})
	if err != nil {
		return err
	}
	s.dispatch(ctx, out)
	return nil
}

// dispatch отправляет уведомления после фиксации. Изменение уже сохранено, поэтому отмена запроса
// клиентом отправку не прерывает, а общее время ограничено notifyTimeout.
func (s *Service) dispatch(ctx context.Context, out outbox) {
	if s.notifier == nil || len(out) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	for _, n := range out {
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Warn("notification delivery failed",
				zap.Int64("recipient", n.RecipientUserID),
				zap.String("type", n.Type),
				zap.Error(err),
			)
		}
	}
}

// loadActor загружает пользователя, его профиль потребителя и делегирование у поставщиков.
// Неизвестный или деактивированный пользователь получает ErrUnauthorized.
func loadActor(ctx context.Context, tx repository.Tx, userID int64) (access.Actor, error) {
	u, err := tx.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return access.Actor{}, fmt.Errorf("%w: user %d", model.ErrUnauthorized, userID)
		}
		return access.Actor{}, err
	}
	if !u.IsActive {
		return access.Actor{}, fmt.Errorf("%w: user %d is deactivated", model.ErrUnauthorized, userID)
	}

	var consumer *model.Consumer
	if u.Role == model.RoleConsumer {
		consumer, err = tx.GetConsumerByUser(ctx, u.ID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return access.Actor{}, err
		}
	}

	d, err := loadDelegations(ctx, tx, *u)
	if err != nil {
		return access.Actor{}, err
	}

	return access.NewActor(*u, consumer, d), nil
}

// loadDelegations загружает владение поставщиками для любого пользователя и членство в персонале
// только для ролей персонала.
func loadDelegations(ctx context.Context, tx repository.Tx, u model.User) (access.Delegations, error) {
	owned, err := tx.SuppliersOwnedBy(ctx, u.ID)
	if err != nil {
		return access.Delegations{}, err
	}
	if !u.Role.IsSupplierSide() {
		return access.Delegations{Owned: owned}, nil
	}

	staff, err := tx.StaffByUser(ctx, u.ID)
	if err != nil {
		return access.Delegations{}, err
	}
	return access.Delegations{Owned: owned, Staff: staff}, nil
}

// supplierAuthority возвращает полномочия произвольного пользователя у поставщика.
func supplierAuthority(ctx context.Context, tx repository.Tx, userID, supplierID int64) (model.Authority, error) {
	p, err := loadParticipant(ctx, tx, userID)
	if err != nil {
		return model.AuthorityNone, err
	}
	return p.Authority(supplierID), nil
}

// findLink возвращает связь пары или nil, если её нет.
func findLink(ctx context.Context, tx repository.Tx, consumerID, supplierID int64) (*model.Link, error) {
	l, err := tx.FindLink(ctx, consumerID, supplierID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

// managedSupplier выбирает поставщика для списков на стороне поставщика: явно указанного
// (при наличии прав) или того, которым пользователь управляет.
func managedSupplier(a access.Actor, supplierID int64) (int64, error) {
	if supplierID != 0 {
		if !a.Authority(supplierID).CanManage() {
			return 0, fmt.Errorf("%w: supplier %d", model.ErrPermissionDenied, supplierID)
		}
		return supplierID, nil
	}
	id, ok := a.ManagedSupplierID()
	if !ok {
		return 0, fmt.Errorf("%w: user %d does not manage a supplier", model.ErrPermissionDenied, a.UserID)
	}
	return id, nil
}

// normalizeFilter проверяет фильтр статуса по автомату сущности и приводит окно выборки.
func normalizeFilter[S ~string, P any](m *statemachine.Machine[S, P], f model.ListFilter) (model.ListFilter, error) {
	if f.Status != "" {
		known := false
		for _, st := range m.States() {
			if string(st) == f.Status {
				known = true
				break
			}
		}
		if !known {
			return f, fmt.Errorf("%w: unknown %s status %q", model.ErrValidation, m.Name(), f.Status)
		}
	}
	f.Limit, f.Offset = validation.NormalizeWindow(f.Limit, f.Offset)
	return f, nil
}

func denied(what string, id int64) error {
	return fmt.Errorf("%w: %s %d", model.ErrPermissionDenied, what, id)
}
