package repository

import (
	"context"

	"github.com/mmeshcher/supplyhub/internal/model"
)

// Tx описывает операции с хранилищем внутри одной транзакции.
// Методы Lock* читают строку с блокировкой FOR UPDATE; Update*Status пишут только если статус
// в базе всё ещё равен from, иначе возвращают model.ErrConflict.
type Tx interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetConsumer(ctx context.Context, id int64) (*model.Consumer, error)
	GetConsumerByUser(ctx context.Context, userID int64) (*model.Consumer, error)
	GetSupplier(ctx context.Context, id int64) (*model.Supplier, error)
	SuppliersOwnedBy(ctx context.Context, userID int64) ([]model.Supplier, error)
	StaffByUser(ctx context.Context, userID int64) ([]model.SupplierStaff, error)
	AddStaff(ctx context.Context, st *model.SupplierStaff) error

	GetLink(ctx context.Context, id int64) (*model.Link, error)
	LockLink(ctx context.Context, id int64) (*model.Link, error)
	FindLink(ctx context.Context, consumerID, supplierID int64) (*model.Link, error)
	CreateLink(ctx context.Context, l *model.Link) error
	UpdateLinkStatus(ctx context.Context, l model.Link, from model.LinkStatus) error
	ListLinksByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.Link, error)
	ListLinksBySupplier(ctx context.Context, supplierID int64, f model.ListFilter) ([]model.Link, error)

	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	LockOrder(ctx context.Context, id int64) (*model.Order, error)
	CreateOrder(ctx context.Context, o *model.Order) error
	UpdateOrderStatus(ctx context.Context, o model.Order, from model.OrderStatus) error
	ListOrdersByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.Order, error)
	ListOrdersBySupplier(ctx context.Context, supplierID int64, f model.ListFilter) ([]model.Order, error)

	GetComplaint(ctx context.Context, id int64) (*model.Complaint, error)
	LockComplaint(ctx context.Context, id int64) (*model.Complaint, error)
	CreateComplaint(ctx context.Context, c *model.Complaint) error
	UpdateComplaintStatus(ctx context.Context, c model.Complaint, from model.ComplaintStatus) error
	ListComplaintsByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.Complaint, error)
	ListComplaintsByHandler(ctx context.Context, userID int64, salesRepOnly bool, f model.ListFilter) ([]model.Complaint, error)

	LockProduct(ctx context.Context, id int64) (*model.Product, error)
	ProductsByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) error
	UpdateProduct(ctx context.Context, p model.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, supplierID int64, activeOnly bool, f model.ListFilter) ([]model.Product, error)

	GetChatSession(ctx context.Context, id int64) (*model.ChatSession, error)
	CreateChatSession(ctx context.Context, cs *model.ChatSession) error
	ListChatSessionsByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.ChatSession, error)
	ListChatSessionsBySalesRep(ctx context.Context, userID int64, f model.ListFilter) ([]model.ChatSession, error)
}
