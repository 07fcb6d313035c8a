package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/supplyhub/internal/model"
	"github.com/mmeshcher/supplyhub/internal/notify"
)

func withOrder(s *memStore, id, consumer int64) int64 {
	s.orders[id] = model.Order{ID: id, SupplierID: supplierID, ConsumerID: consumer, Status: model.OrderStatusPending, CreatedAt: fixedNow}
	return id
}

func TestCreateChatSession(t *testing.T) {
	order := int64(300)
	foreignOrder := int64(301)
	missingOrder := int64(999)

	tests := []struct {
		name    string
		userID  int64
		req     ChatSessionRequest
		wantErr error
	}{
		{"consumer with sales rep", consumerUser, ChatSessionRequest{SalesRepID: salesUser}, nil},
		{"consumer with owner about order", consumerUser, ChatSessionRequest{SalesRepID: ownerUser, OrderID: &order}, nil},
		{"sales staff cannot start", salesUser, ChatSessionRequest{SalesRepID: salesUser}, model.ErrPermissionDenied},
		{"unknown sales rep", consumerUser, ChatSessionRequest{SalesRepID: 404}, model.ErrNotFound},
		{"consumer is not a sales rep", consumerUser, ChatSessionRequest{SalesRepID: otherUser}, model.ErrValidation},
		{"sales role without staff row", consumerUser, ChatSessionRequest{SalesRepID: outsiderSales}, model.ErrValidation},
		{"missing order", consumerUser, ChatSessionRequest{SalesRepID: salesUser, OrderID: &missingOrder}, model.ErrNotFound},
		{"order of another consumer", consumerUser, ChatSessionRequest{SalesRepID: salesUser, OrderID: &foreignOrder}, model.ErrPermissionDenied},
		{"inactive user", inactiveUser, ChatSessionRequest{SalesRepID: salesUser}, model.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFixture()
			withOrder(store, order, consumerID)
			withOrder(store, foreignOrder, otherConsumerID)
			svc, repo, n := newTestService(store)

			cs, err := svc.CreateChatSession(context.Background(), tt.userID, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cs)
				assert.Empty(t, repo.store.chats)
				assert.Empty(t, n.sent)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(consumerID), cs.ConsumerID)
			assert.Equal(t, tt.req.SalesRepID, cs.SalesRepID)
			assert.Equal(t, tt.req.OrderID, cs.OrderID)
			assert.Equal(t, fixedNow, cs.CreatedAt)
			assert.Contains(t, repo.store.chats, cs.ID)
			require.Len(t, n.sent, 1)
			assert.Equal(t, tt.req.SalesRepID, n.sent[0].RecipientUserID)
			assert.Equal(t, notify.TypeChatSessionCreated, n.sent[0].Type)
		})
	}
}

func TestCreateChatSession_RepMustServeOrderSupplier(t *testing.T) {
	store := newFixture()
	store.suppliers[20] = model.Supplier{ID: 20, UserID: managerUser, Name: "Other Foods", IsActive: true}
	store.staff = append(store.staff, model.SupplierStaff{ID: 3, UserID: outsiderSales, SupplierID: 20, StaffRole: model.StaffRoleSales})
	order := withOrder(store, 300, consumerID)
	svc, _, _ := newTestService(store)

	_, err := svc.CreateChatSession(context.Background(), consumerUser, ChatSessionRequest{SalesRepID: outsiderSales})
	require.NoError(t, err)

	_, err = svc.CreateChatSession(context.Background(), consumerUser, ChatSessionRequest{SalesRepID: outsiderSales, OrderID: &order})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestChatSessionAccess(t *testing.T) {
	ctx := context.Background()
	store := newFixture()
	store.chats[70] = model.ChatSession{ID: 70, ConsumerID: consumerID, SalesRepID: salesUser, CreatedAt: fixedNow}
	store.chats[71] = model.ChatSession{ID: 71, ConsumerID: otherConsumerID, SalesRepID: salesUser, CreatedAt: fixedNow}
	store.chats[72] = model.ChatSession{ID: 72, ConsumerID: consumerID, SalesRepID: ownerUser, CreatedAt: fixedNow}
	svc, _, _ := newTestService(store)

	t.Run("participants", func(t *testing.T) {
		cs, err := svc.GetChatSession(ctx, consumerUser, 70)
		require.NoError(t, err)
		assert.Equal(t, int64(70), cs.ID)

		_, err = svc.GetChatSession(ctx, salesUser, 70)
		require.NoError(t, err)
	})

	t.Run("non participants", func(t *testing.T) {
		_, err := svc.GetChatSession(ctx, otherUser, 70)
		assert.ErrorIs(t, err, model.ErrPermissionDenied)

		// Владение поставщиком не даёт доступа к чужому чату.
		_, err = svc.GetChatSession(ctx, ownerUser, 70)
		assert.ErrorIs(t, err, model.ErrPermissionDenied)
	})

	t.Run("sales rep keeps access after staff removal", func(t *testing.T) {
		s := store.clone()
		s.staff = nil
		svc, _, _ := newTestService(s)

		_, err := svc.GetChatSession(ctx, salesUser, 70)
		require.NoError(t, err)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.GetChatSession(ctx, consumerUser, 999)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("lists", func(t *testing.T) {
		mine, err := svc.ListChatSessions(ctx, consumerUser, model.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, mine, 2)

		asRep, err := svc.ListChatSessions(ctx, salesUser, model.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, asRep, 2)

		asRep, err = svc.ListChatSessions(ctx, salesUser, model.ListFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, asRep, 1)

		_, err = svc.ListChatSessions(ctx, consumerUser, model.ListFilter{Status: "open"})
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("admin has no chats", func(t *testing.T) {
		s := store.clone()
		s.users[50] = model.User{ID: 50, Email: "admin@example.kz", Role: model.RoleAdmin, IsActive: true}
		svc, _, _ := newTestService(s)

		_, err := svc.ListChatSessions(ctx, 50, model.ListFilter{})
		assert.ErrorIs(t, err, model.ErrPermissionDenied)
	})
}
