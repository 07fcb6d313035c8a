package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/mmeshcher/supplyhub/internal/model"
	"github.com/mmeshcher/supplyhub/internal/notify"
	"github.com/mmeshcher/supplyhub/internal/repository"
)

// memStore хранит данные в памяти. Каждая транзакция работает с копией и при успехе подменяет её.
type memStore struct {
	users      map[int64]model.User
	consumers  map[int64]model.Consumer
	suppliers  map[int64]model.Supplier
	staff      []model.SupplierStaff
	links      map[int64]model.Link
	orders     map[int64]model.Order
	complaints map[int64]model.Complaint
	products   map[int64]model.Product
	chats      map[int64]model.ChatSession
	nextID     int64

	productLookups int
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[int64]model.User{},
		consumers:  map[int64]model.Consumer{},
		suppliers:  map[int64]model.Supplier{},
		links:      map[int64]model.Link{},
		orders:     map[int64]model.Order{},
		complaints: map[int64]model.Complaint{},
		products:   map[int64]model.Product{},
		chats:      map[int64]model.ChatSession{},
		nextID:     1000,
	}
}

func (m *memStore) clone() *memStore {
	c := *m
	c.users = maps.Clone(m.users)
	c.consumers = maps.Clone(m.consumers)
	c.suppliers = maps.Clone(m.suppliers)
	c.staff = slices.Clone(m.staff)
	c.links = maps.Clone(m.links)
	c.orders = maps.Clone(m.orders)
	c.complaints = maps.Clone(m.complaints)
	c.products = maps.Clone(m.products)
	c.chats = maps.Clone(m.chats)
	return &c
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// memRepo реализует Repository поверх memStore. replays задаёт число попыток, результат которых
// отбрасывается перед основной, как при повторе транзакции после конфликта сериализации.
type memRepo struct {
	store   *memStore
	replays int
	closed  bool
}

func (r *memRepo) Close() error {
	r.closed = true
	return nil
}

func (r *memRepo) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	for i := 0; i < r.replays; i++ {
		if err := fn(r.store.clone()); err != nil {
			return err
		}
	}

	work := r.store.clone()
	if err := fn(work); err != nil {
		return err
	}
	r.store = work
	return nil
}

type recordingNotifier struct {
	sent []notify.Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, msg notify.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%w: %s %d", model.ErrNotFound, what, id)
}

func (m *memStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (m *memStore) GetConsumer(ctx context.Context, id int64) (*model.Consumer, error) {
	c, ok := m.consumers[id]
	if !ok {
		return nil, notFound("consumer", id)
	}
	return &c, nil
}

func (m *memStore) GetConsumerByUser(ctx context.Context, userID int64) (*model.Consumer, error) {
	for _, c := range m.consumers {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, notFound("consumer of user", userID)
}

func (m *memStore) GetSupplier(ctx context.Context, id int64) (*model.Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return nil, notFound("supplier", id)
	}
	return &s, nil
}

func (m *memStore) SuppliersOwnedBy(ctx context.Context, userID int64) ([]model.Supplier, error) {
	var res []model.Supplier
	for _, s := range m.suppliers {
		if s.UserID == userID {
			res = append(res, s)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memStore) StaffByUser(ctx context.Context, userID int64) ([]model.SupplierStaff, error) {
	var res []model.SupplierStaff
	for _, st := range m.staff {
		if st.UserID == userID {
			res = append(res, st)
		}
	}
	return res, nil
}

func (m *memStore) AddStaff(ctx context.Context, st *model.SupplierStaff) error {
	for _, cur := range m.staff {
		if cur.UserID == st.UserID && cur.SupplierID == st.SupplierID {
			return fmt.Errorf("%w: staff membership already exists", model.ErrConflict)
		}
	}
	st.ID = m.id()
	m.staff = append(m.staff, *st)
	return nil
}

func (m *memStore) GetLink(ctx context.Context, id int64) (*model.Link, error) {
	l, ok := m.links[id]
	if !ok {
		return nil, notFound("link", id)
	}
	return &l, nil
}

func (m *memStore) LockLink(ctx context.Context, id int64) (*model.Link, error) {
	return m.GetLink(ctx, id)
}

func (m *memStore) FindLink(ctx context.Context, consumerID, supplierID int64) (*model.Link, error) {
	for _, l := range m.links {
		if l.ConsumerID == consumerID && l.SupplierID == supplierID {
			return &l, nil
		}
	}
	return nil, notFound("link with supplier", supplierID)
}

func (m *memStore) CreateLink(ctx context.Context, l *model.Link) error {
	if _, err := m.FindLink(ctx, l.ConsumerID, l.SupplierID); err == nil {
		return fmt.Errorf("%w: link already exists", model.ErrConflict)
	}
	l.ID = m.id()
	m.links[l.ID] = *l
	return nil
}

func (m *memStore) UpdateLinkStatus(ctx context.Context, l model.Link, from model.LinkStatus) error {
	cur, ok := m.links[l.ID]
	if !ok || cur.Status != from {
		return fmt.Errorf("%w: link %d was modified concurrently", model.ErrConflict, l.ID)
	}
	cur.Status = l.Status
	cur.UpdatedAt = l.UpdatedAt
	m.links[l.ID] = cur
	return nil
}

func filterStatus[T any](items []T, status string, get func(T) string, f model.ListFilter) []T {
	res := make([]T, 0)
	for _, it := range items {
		if status == "" || get(it) == status {
			res = append(res, it)
		}
	}
	if f.Offset >= len(res) {
		return res[:0]
	}
	res = res[f.Offset:]
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}
	return res
}

func sortedValues[T any](m map[int64]T) []T {
	keys := slices.Sorted(maps.Keys(m))
	res := make([]T, 0, len(keys))
	for _, k := range keys {
		res = append(res, m[k])
	}
	return res
}

func (m *memStore) listLinks(match func(model.Link) bool, f model.ListFilter) []model.Link {
	var all []model.Link
	for _, l := range sortedValues(m.links) {
		if match(l) {
			all = append(all, l)
		}
	}
	return filterStatus(all, f.Status, func(l model.Link) string { return string(l.Status) }, f)
}

func (m *memStore) ListLinksByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.Link, error) {
	return m.listLinks(func(l model.Link) bool { return l.ConsumerID == consumerID }, f), nil
}

func (m *memStore) ListLinksBySupplier(ctx context.Context, supplierID int64, f model.ListFilter) ([]model.Link, error) {
	return m.listLinks(func(l model.Link) bool { return l.SupplierID == supplierID }, f), nil
}

func (m *memStore) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, notFound("order", id)
	}
	o.Items = slices.Clone(o.Items)
	return &o, nil
}

func (m *memStore) LockOrder(ctx context.Context, id int64) (*model.Order, error) {
	return m.GetOrder(ctx, id)
}

func (m *memStore) CreateOrder(ctx context.Context, o *model.Order) error {
	o.ID = m.id()
	for i := range o.Items {
		o.Items[i].ID = m.id()
		o.Items[i].OrderID = o.ID
	}
	stored := *o
	stored.Items = slices.Clone(o.Items)
	m.orders[o.ID] = stored
	return nil
}

func (m *memStore) UpdateOrderStatus(ctx context.Context, o model.Order, from model.OrderStatus) error {
	cur, ok := m.orders[o.ID]
	if !ok || cur.Status != from {
		return fmt.Errorf("%w: order %d was modified concurrently", model.ErrConflict, o.ID)
	}
	cur.Status = o.Status
	m.orders[o.ID] = cur
	return nil
}

func (m *memStore) listOrders(match func(model.Order) bool, f model.ListFilter) []model.Order {
	var all []model.Order
	for _, o := range sortedValues(m.orders) {
		if match(o) {
			all = append(all, o)
		}
	}
	return filterStatus(all, f.Status, func(o model.Order) string { return string(o.Status) }, f)
}

func (m *memStore) ListOrdersByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.Order, error) {
	return m.listOrders(func(o model.Order) bool { return o.ConsumerID == consumerID }, f), nil
}

func (m *memStore) ListOrdersBySupplier(ctx context.Context, supplierID int64, f model.ListFilter) ([]model.Order, error) {
	return m.listOrders(func(o model.Order) bool { return o.SupplierID == supplierID }, f), nil
}

func (m *memStore) GetComplaint(ctx context.Context, id int64) (*model.Complaint, error) {
	c, ok := m.complaints[id]
	if !ok {
		return nil, notFound("complaint", id)
	}
	return &c, nil
}

func (m *memStore) LockComplaint(ctx context.Context, id int64) (*model.Complaint, error) {
	return m.GetComplaint(ctx, id)
}

func (m *memStore) CreateComplaint(ctx context.Context, c *model.Complaint) error {
	c.ID = m.id()
	m.complaints[c.ID] = *c
	return nil
}

func (m *memStore) UpdateComplaintStatus(ctx context.Context, c model.Complaint, from model.ComplaintStatus) error {
	cur, ok := m.complaints[c.ID]
	if !ok || cur.Status != from {
		return fmt.Errorf("%w: complaint %d was modified concurrently", model.ErrConflict, c.ID)
	}
	cur.Status = c.Status
	cur.Resolution = c.Resolution
	m.complaints[c.ID] = cur
	return nil
}

func (m *memStore) listComplaints(match func(model.Complaint) bool, f model.ListFilter) []model.Complaint {
	var all []model.Complaint
	for _, c := range sortedValues(m.complaints) {
		if match(c) {
			all = append(all, c)
		}
	}
	return filterStatus(all, f.Status, func(c model.Complaint) string { return string(c.Status) }, f)
}

func (m *memStore) ListComplaintsByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.Complaint, error) {
	return m.listComplaints(func(c model.Complaint) bool { return c.ConsumerID == consumerID }, f), nil
}

func (m *memStore) ListComplaintsByHandler(ctx context.Context, userID int64, salesRepOnly bool, f model.ListFilter) ([]model.Complaint, error) {
	return m.listComplaints(func(c model.Complaint) bool {
		return c.SalesRepID == userID || (!salesRepOnly && c.ManagerID == userID)
	}, f), nil
}

func (m *memStore) LockProduct(ctx context.Context, id int64) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, notFound("product", id)
	}
	return &p, nil
}

func (m *memStore) ProductsByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	m.productLookups++
	res := make(map[int64]model.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			res[id] = p
		}
	}
	return res, nil
}

func (m *memStore) skuTaken(p model.Product) bool {
	for _, cur := range m.products {
		if cur.ID != p.ID && cur.SupplierID == p.SupplierID && cur.SKU == p.SKU {
			return true
		}
	}
	return false
}

func (m *memStore) CreateProduct(ctx context.Context, p *model.Product) error {
	if m.skuTaken(*p) {
		return fmt.Errorf("%w: product sku already exists", model.ErrConflict)
	}
	p.ID = m.id()
	m.products[p.ID] = *p
	return nil
}

func (m *memStore) UpdateProduct(ctx context.Context, p model.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return notFound("product", p.ID)
	}
	if m.skuTaken(p) {
		return fmt.Errorf("%w: product sku already exists", model.ErrConflict)
	}
	m.products[p.ID] = p
	return nil
}

func (m *memStore) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return notFound("product", id)
	}
	for _, o := range m.orders {
		for _, it := range o.Items {
			if it.ProductID == id {
				return fmt.Errorf("%w: product %d is referenced by orders", model.ErrConflict, id)
			}
		}
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) ListProducts(ctx context.Context, supplierID int64, activeOnly bool, f model.ListFilter) ([]model.Product, error) {
	var all []model.Product
	for _, p := range sortedValues(m.products) {
		if p.SupplierID == supplierID && (!activeOnly || p.IsActive) {
			all = append(all, p)
		}
	}
	return filterStatus(all, "", func(model.Product) string { return "" }, f), nil
}

func (m *memStore) GetChatSession(ctx context.Context, id int64) (*model.ChatSession, error) {
	cs, ok := m.chats[id]
	if !ok {
		return nil, notFound("chat session", id)
	}
	return &cs, nil
}

func (m *memStore) CreateChatSession(ctx context.Context, cs *model.ChatSession) error {
	cs.ID = m.id()
	m.chats[cs.ID] = *cs
	return nil
}

func (m *memStore) listChats(match func(model.ChatSession) bool, f model.ListFilter) []model.ChatSession {
	var all []model.ChatSession
	for _, cs := range sortedValues(m.chats) {
		if match(cs) {
			all = append(all, cs)
		}
	}
	return filterStatus(all, "", func(model.ChatSession) string { return "" }, f)
}

func (m *memStore) ListChatSessionsByConsumer(ctx context.Context, consumerID int64, f model.ListFilter) ([]model.ChatSession, error) {
	return m.listChats(func(cs model.ChatSession) bool { return cs.ConsumerID == consumerID }, f), nil
}

func (m *memStore) ListChatSessionsBySalesRep(ctx context.Context, userID int64, f model.ListFilter) ([]model.ChatSession, error) {
	return m.listChats(func(cs model.ChatSession) bool { return cs.SalesRepID == userID }, f), nil
}

var _ repository.Tx = (*memStore)(nil)
