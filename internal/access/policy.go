package access

import "github.com/mmeshcher/supplyhub/internal/model"

// Actor описывает пользователя, выполняющего запрос, вместе с профилем потребителя и делегированием.
type Actor struct {
	UserID      int64
	Role        model.Role
	Active      bool
	ConsumerID  int64
	Delegations Delegations
}

// NewActor собирает Actor из пользователя, его профиля потребителя (может быть nil) и делегирования.
func NewActor(u model.User, consumer *model.Consumer, d Delegations) Actor {
	a := Actor{
		UserID:      u.ID,
		Role:        u.Role,
		Active:      u.IsActive,
		Delegations: d,
	}
	if consumer != nil {
		a.ConsumerID = consumer.ID
	}
	return a
}

// IsConsumer сообщает, что пользователь является активным потребителем с профилем.
func (a Actor) IsConsumer() bool {
	return a.Active && a.Role == model.RoleConsumer && a.ConsumerID != 0
}

// Authority возвращает полномочия пользователя у поставщика. Владение по строке поставщика
// действует при любой глобальной роли, строки персонала только для ролей персонала.
func (a Actor) Authority(supplierID int64) model.Authority {
	if !a.Active {
		return model.AuthorityNone
	}
	d := a.Delegations
	if !a.Role.IsSupplierSide() {
		d.Staff = nil
	}
	return ResolveSupplierAuthority(a.UserID, supplierID, d)
}

// ManagedSupplierID возвращает поставщика, которым пользователь управляет как владелец или менеджер.
func (a Actor) ManagedSupplierID() (int64, bool) {
	if !a.Active {
		return 0, false
	}
	for _, s := range a.Delegations.Owned {
		if s.UserID == a.UserID {
			return s.ID, true
		}
	}
	if !a.Role.IsSupplierSide() {
		return 0, false
	}
	for _, st := range a.Delegations.Staff {
		if st.UserID == a.UserID && staffAuthority(st.StaffRole).CanManage() {
			return st.SupplierID, true
		}
	}
	return 0, false
}

func (a Actor) ownsConsumer(consumerID int64) bool {
	return a.IsConsumer() && a.ConsumerID == consumerID
}

// CanViewOrder: потребитель-владелец заказа или владелец/менеджер поставщика.
func CanViewOrder(a Actor, o model.Order) bool {
	return a.ownsConsumer(o.ConsumerID) || a.Authority(o.SupplierID).CanManage()
}

// CanMutateOrderStatus: только владелец или менеджер поставщика.
func CanMutateOrderStatus(a Actor, o model.Order) bool {
	return a.Authority(o.SupplierID).CanManage()
}

// CanViewLink: потребитель-участник связи или владелец/менеджер поставщика.
func CanViewLink(a Actor, l model.Link) bool {
	return a.ownsConsumer(l.ConsumerID) || a.Authority(l.SupplierID).CanManage()
}

// CanMutateLinkStatus: только владелец или менеджер поставщика.
func CanMutateLinkStatus(a Actor, l model.Link) bool {
	return a.Authority(l.SupplierID).CanManage()
}

// CanRequestLink: потребитель может повторно запросить только свою связь.
func CanRequestLink(a Actor, l model.Link) bool {
	return a.ownsConsumer(l.ConsumerID)
}

// CanViewComplaint: потребитель жалобы либо указанные в ней торговый представитель или менеджер.
// Текущее членство в персонале не проверяется.
func CanViewComplaint(a Actor, c model.Complaint) bool {
	return a.ownsConsumer(c.ConsumerID) || isComplaintHandler(a, c)
}

// CanMutateComplaintStatus: только указанные в жалобе торговый представитель или менеджер.
func CanMutateComplaintStatus(a Actor, c model.Complaint) bool {
	return isComplaintHandler(a, c)
}

func isComplaintHandler(a Actor, c model.Complaint) bool {
	return a.Active && (a.UserID == c.SalesRepID || a.UserID == c.ManagerID)
}

// CanCreateComplaint: жалобу подаёт только потребитель, оформивший заказ.
func CanCreateComplaint(a Actor, o model.Order) bool {
	return a.ownsConsumer(o.ConsumerID)
}

// CanManageProducts: создавать и менять товары может владелец или менеджер поставщика.
func CanManageProducts(a Actor, supplierID int64) bool {
	return a.Authority(supplierID).CanManage()
}

// CanBrowseCatalog: потребитель видит каталог поставщика только при принятой связи.
func CanBrowseCatalog(a Actor, l *model.Link) bool {
	return l != nil && a.ownsConsumer(l.ConsumerID) && l.Status == model.LinkStatusAccepted
}

// CanManageStaff: состав персонала меняет только владелец поставщика.
func CanManageStaff(a Actor, supplierID int64) bool {
	return a.Authority(supplierID) == model.AuthorityOwner
}

// CanAccessChatSession: участники чата, то есть потребитель и указанный торговый представитель.
func CanAccessChatSession(a Actor, cs model.ChatSession) bool {
	return a.ownsConsumer(cs.ConsumerID) || (a.Active && a.UserID == cs.SalesRepID)
}

// CanHandleChats: собеседником потребителя может быть активный сотрудник, состоящий в персонале
// или владеющий поставщиком.
func CanHandleChats(a Actor) bool {
	if !a.Active || !a.Role.IsSupplierSide() {
		return false
	}
	if len(a.Delegations.Owned) > 0 {
		return true
	}
	for _, st := range a.Delegations.Staff {
		if staffAuthority(st.StaffRole) != model.AuthorityNone {
			return true
		}
	}
	return false
}
