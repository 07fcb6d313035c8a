// Package model содержит доменные сущности платформы заказов между потребителями и поставщиками.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role описывает глобальную роль пользователя, неизменяемую после регистрации.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleConsumer        Role = "consumer"
	RoleSupplierOwner   Role = "supplier_owner"
	RoleSupplierManager Role = "supplier_manager"
	RoleSupplierSales   Role = "supplier_sales"
)

// IsSupplierSide сообщает, относится ли роль к персоналу поставщика.
func (r Role) IsSupplierSide() bool {
	switch r {
	case RoleSupplierOwner, RoleSupplierManager, RoleSupplierSales:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя.
type User struct {
	ID        int64
	Email     string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
}

// Supplier описывает поставщика; у каждого поставщика ровно один владелец.
type Supplier struct {
	ID        int64
	UserID    int64
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// SupplierStaff описывает членство пользователя в персонале поставщика.
type SupplierStaff struct {
	ID         int64
	UserID     int64
	SupplierID int64
	StaffRole  StaffRole
	CreatedAt  time.Time
}

// Consumer описывает профиль потребителя (организации-покупателя).
type Consumer struct {
	ID               int64
	UserID           int64
	OrganizationName string
	CreatedAt        time.Time
}

// LinkStatus описывает состояние связи потребителя с поставщиком.
type LinkStatus string

const (
	LinkStatusPending  LinkStatus = "pending"
	LinkStatusAccepted LinkStatus = "accepted"
	LinkStatusDenied   LinkStatus = "denied"
	LinkStatusBlocked  LinkStatus = "blocked"
)

// Link описывает связь потребителя с поставщиком. Пара (ConsumerID, SupplierID) уникальна.
type Link struct {
	ID         int64
	ConsumerID int64
	SupplierID int64
	Status     LinkStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderStatus описывает статус обработки заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusAccepted   OrderStatus = "accepted"
	OrderStatusRejected   OrderStatus = "rejected"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
)

// Order описывает заказ потребителя у поставщика вместе с позициями.
type Order struct {
	ID         int64
	SupplierID int64
	ConsumerID int64
	Status     OrderStatus
	TotalKZT   decimal.Decimal
	CreatedAt  time.Time
	Items      []OrderItem
}

// OrderItem описывает позицию заказа; UnitPriceKZT фиксируется при создании заказа.
type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	Qty          int64
	UnitPriceKZT decimal.Decimal
}

// LineTotal возвращает стоимость позиции.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPriceKZT.Mul(decimal.NewFromInt(i.Qty))
}

// OrderLine описывает запрошенную позицию до проверки и расчёта цены.
type OrderLine struct {
	ProductID int64
	Qty       int64
}

// ComplaintStatus описывает статус жалобы.
type ComplaintStatus string

const (
	ComplaintStatusOpen      ComplaintStatus = "open"
	ComplaintStatusEscalated ComplaintStatus = "escalated"
	ComplaintStatusResolved  ComplaintStatus = "resolved"
)

// Complaint описывает жалобу потребителя по заказу.
type Complaint struct {
	ID          int64
	OrderID     int64
	ConsumerID  int64
	SalesRepID  int64
	ManagerID   int64
	Status      ComplaintStatus
	Description string
	Resolution  *string
	CreatedAt   time.Time
}

// ChatSession описывает чат потребителя с торговым представителем, возможно по конкретному заказу.
// Сообщения чата хранятся во внешнем сервисе.
type ChatSession struct {
	ID         int64
	ConsumerID int64
	SalesRepID int64
	OrderID    *int64
	CreatedAt  time.Time
}

// Product описывает товар в каталоге поставщика. SKU уникален в пределах поставщика.
type Product struct {
	ID          int64
	SupplierID  int64
	Name        string
	Description string
	SKU         string
	PriceKZT    decimal.Decimal
	StockQty    int64
	IsActive    bool
	CreatedAt   time.Time
}

// ListFilter задаёт фильтр по статусу и окно выборки для списков.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}
