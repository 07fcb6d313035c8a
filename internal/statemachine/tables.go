package statemachine

import (
	"fmt"
	"strings"

	"github.com/mmeshcher/supplyhub/internal/model"
)

// NoPayload используется автоматами, переходы которых не требуют дополнительных данных.
type NoPayload struct{}

// ComplaintChange содержит данные, передаваемые вместе со сменой статуса жалобы.
type ComplaintChange struct {
	Resolution *string
}

// Link управляет статусами связей потребителя с поставщиком.
var Link = New[model.LinkStatus, NoPayload]("link", map[model.LinkStatus][]model.LinkStatus{
	model.LinkStatusPending:  {model.LinkStatusAccepted, model.LinkStatusDenied},
	model.LinkStatusAccepted: {model.LinkStatusBlocked},
	model.LinkStatusDenied:   {model.LinkStatusPending},
	model.LinkStatusBlocked:  {},
})

// Order управляет статусами заказов.
var Order = New[model.OrderStatus, NoPayload]("order", map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusAccepted, model.OrderStatusRejected},
	model.OrderStatusAccepted:   {model.OrderStatusInProgress},
	model.OrderStatusRejected:   {},
	model.OrderStatusInProgress: {model.OrderStatusCompleted},
	model.OrderStatusCompleted:  {},
})

// Complaint управляет статусами жалоб. Закрытие жалобы требует текста решения.
var Complaint = New[model.ComplaintStatus, ComplaintChange]("complaint", map[model.ComplaintStatus][]model.ComplaintStatus{
	model.ComplaintStatusOpen:      {model.ComplaintStatusEscalated, model.ComplaintStatusResolved},
	model.ComplaintStatusEscalated: {model.ComplaintStatusResolved},
	model.ComplaintStatusResolved:  {},
}).WithGuard(model.ComplaintStatusResolved, requireResolution)

func requireResolution(_, _ model.ComplaintStatus, c ComplaintChange) error {
	if c.Resolution == nil || strings.TrimSpace(*c.Resolution) == "" {
		return fmt.Errorf("%w: resolution is required when resolving a complaint", model.ErrMissingRequiredField)
	}
	return nil
}

// ApplyLink возвращает копию связи с новым статусом.
func ApplyLink(l model.Link, to model.LinkStatus) (model.Link, error) {
	if err := Link.Validate(l.Status, to, NoPayload{}); err != nil {
		return l, err
	}
	l.Status = to
	return l, nil
}

// ApplyOrder возвращает копию заказа с новым статусом. Позиции и сумма не меняются.
func ApplyOrder(o model.Order, to model.OrderStatus) (model.Order, error) {
	if err := Order.Validate(o.Status, to, NoPayload{}); err != nil {
		return o, err
	}
	o.Status = to
	return o, nil
}

// ApplyComplaint возвращает копию жалобы с новым статусом и, если передан, текстом решения.
func ApplyComplaint(c model.Complaint, to model.ComplaintStatus, change ComplaintChange) (model.Complaint, error) {
	if err := Complaint.Validate(c.Status, to, change); err != nil {
		return c, err
	}
	c.Status = to
	if change.Resolution != nil && *change.Resolution != "" {
		r := *change.Resolution
		c.Resolution = &r
	}
	return c, nil
}
