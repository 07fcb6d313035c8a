//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mmeshcher/supplyhub/internal/model"
)

type fixture struct {
	ownerID    int64
	salesID    int64
	consumerID int64
	supplierID int64
}

func setupRepository(t *testing.T) *PostgresRepository {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("supplyhub"),
		postgres.WithUsername("supplyhub"),
		postgres.WithPassword("supplyhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	repo, err := NewPostgresRepository(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func seed(t *testing.T, repo *PostgresRepository) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture

	q := func(dst *int64, sql string, args ...any) {
		require.NoError(t, repo.pool.QueryRow(ctx, sql, args...).Scan(dst))
	}

	q(&f.ownerID, `INSERT INTO users (email, role) VALUES ('owner@example.kz', 'supplier_owner') RETURNING id`)
	q(&f.salesID, `INSERT INTO users (email, role) VALUES ('sales@example.kz', 'supplier_sales') RETURNING id`)
	var consumerUser int64
	q(&consumerUser, `INSERT INTO users (email, role) VALUES ('buyer@example.kz', 'consumer') RETURNING id`)
	q(&f.consumerID, `INSERT INTO consumers (user_id, organization_name) VALUES ($1, 'Buyer LLP') RETURNING id`, consumerUser)
	q(&f.supplierID, `INSERT INTO suppliers (user_id, name) VALUES ($1, 'Steppe Foods') RETURNING id`, f.ownerID)

	return f
}

func TestPostgres_LinkLifecycle(t *testing.T) {
	repo := setupRepository(t)
	f := seed(t, repo)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	var link model.Link
	err := repo.WithinTx(ctx, func(tx Tx) error {
		link = model.Link{ConsumerID: f.consumerID, SupplierID: f.supplierID, Status: model.LinkStatusPending, CreatedAt: now, UpdatedAt: now}
		return tx.CreateLink(ctx, &link)
	})
	require.NoError(t, err)
	require.NotZero(t, link.ID)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		dup := model.Link{ConsumerID: f.consumerID, SupplierID: f.supplierID, Status: model.LinkStatusPending, CreatedAt: now, UpdatedAt: now}
		return tx.CreateLink(ctx, &dup)
	})
	assert.ErrorIs(t, err, model.ErrConflict)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		l, err := tx.LockLink(ctx, link.ID)
		if err != nil {
			return err
		}
		l.Status = model.LinkStatusAccepted
		return tx.UpdateLinkStatus(ctx, *l, model.LinkStatusPending)
	})
	require.NoError(t, err)

	// Запись со старым статусом не должна пройти.
	err = repo.WithinTx(ctx, func(tx Tx) error {
		stale := link
		stale.Status = model.LinkStatusDenied
		return tx.UpdateLinkStatus(ctx, stale, model.LinkStatusPending)
	})
	assert.ErrorIs(t, err, model.ErrConflict)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		got, err := tx.FindLink(ctx, f.consumerID, f.supplierID)
		require.NoError(t, err)
		assert.Equal(t, model.LinkStatusAccepted, got.Status)

		list, err := tx.ListLinksBySupplier(ctx, f.supplierID, model.ListFilter{Status: "accepted", Limit: 10})
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = tx.ListLinksBySupplier(ctx, f.supplierID, model.ListFilter{Status: "pending", Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, list)
		return nil
	})
	require.NoError(t, err)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		_, err := tx.GetLink(ctx, 9999)
		return err
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPostgres_OrderRoundTrip(t *testing.T) {
	repo := setupRepository(t)
	f := seed(t, repo)
	ctx := context.Background()

	var p1, p2 model.Product
	err := repo.WithinTx(ctx, func(tx Tx) error {
		p1 = model.Product{SupplierID: f.supplierID, Name: "Flour", SKU: "FL-1", PriceKZT: decimal.RequireFromString("19.99"), IsActive: true}
		if err := tx.CreateProduct(ctx, &p1); err != nil {
			return err
		}
		p2 = model.Product{SupplierID: f.supplierID, Name: "Sugar", SKU: "SG-1", PriceKZT: decimal.RequireFromString("0.10"), IsActive: true}
		return tx.CreateProduct(ctx, &p2)
	})
	require.NoError(t, err)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		dup := model.Product{SupplierID: f.supplierID, Name: "Flour 2", SKU: "FL-1", PriceKZT: decimal.NewFromInt(1), IsActive: true}
		return tx.CreateProduct(ctx, &dup)
	})
	assert.ErrorIs(t, err, model.ErrConflict)

	order := model.Order{
		SupplierID: f.supplierID,
		ConsumerID: f.consumerID,
		Status:     model.OrderStatusPending,
		TotalKZT:   decimal.RequireFromString("140.23"),
		CreatedAt:  time.Now().UTC(),
		Items: []model.OrderItem{
			{ProductID: p1.ID, Qty: 7, UnitPriceKZT: p1.PriceKZT},
			{ProductID: p2.ID, Qty: 3, UnitPriceKZT: p2.PriceKZT},
		},
	}
	err = repo.WithinTx(ctx, func(tx Tx) error { return tx.CreateOrder(ctx, &order) })
	require.NoError(t, err)
	require.NotZero(t, order.ID)

	// Изменение цены товара не затрагивает уже созданный заказ.
	err = repo.WithinTx(ctx, func(tx Tx) error {
		p, err := tx.LockProduct(ctx, p1.ID)
		if err != nil {
			return err
		}
		p.PriceKZT = decimal.RequireFromString("25.00")
		return tx.UpdateProduct(ctx, *p)
	})
	require.NoError(t, err)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		got, err := tx.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "140.23", got.TotalKZT.StringFixed(2))
		require.Len(t, got.Items, 2)
		assert.Equal(t, "19.99", got.Items[0].UnitPriceKZT.StringFixed(2))

		byConsumer, err := tx.ListOrdersByConsumer(ctx, f.consumerID, model.ListFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, byConsumer, 1)
		assert.Len(t, byConsumer[0].Items, 2)

		products, err := tx.ProductsByIDs(ctx, []int64{p1.ID, 424242})
		require.NoError(t, err)
		assert.Len(t, products, 1)
		assert.Equal(t, "25.00", products[p1.ID].PriceKZT.StringFixed(2))
		return nil
	})
	require.NoError(t, err)
}

func TestPostgres_ComplaintResolution(t *testing.T) {
	repo := setupRepository(t)
	f := seed(t, repo)
	ctx := context.Background()

	order := model.Order{
		SupplierID: f.supplierID, ConsumerID: f.consumerID, Status: model.OrderStatusCompleted,
		TotalKZT: decimal.Zero, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.WithinTx(ctx, func(tx Tx) error { return tx.CreateOrder(ctx, &order) }))

	c := model.Complaint{
		OrderID: order.ID, ConsumerID: f.consumerID, SalesRepID: f.salesID, ManagerID: f.ownerID,
		Status: model.ComplaintStatusOpen, Description: "damaged boxes", CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.WithinTx(ctx, func(tx Tx) error { return tx.CreateComplaint(ctx, &c) }))

	resolution := "refund issued"
	err := repo.WithinTx(ctx, func(tx Tx) error {
		cur, err := tx.LockComplaint(ctx, c.ID)
		if err != nil {
			return err
		}
		cur.Status = model.ComplaintStatusResolved
		cur.Resolution = &resolution
		return tx.UpdateComplaintStatus(ctx, *cur, model.ComplaintStatusOpen)
	})
	require.NoError(t, err)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		got, err := tx.GetComplaint(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ComplaintStatusResolved, got.Status)
		require.NotNil(t, got.Resolution)
		assert.Equal(t, resolution, *got.Resolution)

		mine, err := tx.ListComplaintsByHandler(ctx, f.salesID, true, model.ListFilter{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		asManager, err := tx.ListComplaintsByHandler(ctx, f.ownerID, false, model.ListFilter{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, asManager, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestPostgres_WithinTxRollsBack(t *testing.T) {
	repo := setupRepository(t)
	f := seed(t, repo)
	ctx := context.Background()

	err := repo.WithinTx(ctx, func(tx Tx) error {
		st := model.SupplierStaff{UserID: f.salesID, SupplierID: f.supplierID, StaffRole: model.StaffRoleSales}
		if err := tx.AddStaff(ctx, &st); err != nil {
			return err
		}
		return model.ErrValidation
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		staff, err := tx.StaffByUser(ctx, f.salesID)
		require.NoError(t, err)
		assert.Empty(t, staff)

		owned, err := tx.SuppliersOwnedBy(ctx, f.ownerID)
		require.NoError(t, err)
		assert.Len(t, owned, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestPostgres_ChatSessions(t *testing.T) {
	repo := setupRepository(t)
	f := seed(t, repo)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	order := model.Order{
		SupplierID: f.supplierID, ConsumerID: f.consumerID, Status: model.OrderStatusPending,
		TotalKZT: decimal.Zero, CreatedAt: now,
	}
	require.NoError(t, repo.WithinTx(ctx, func(tx Tx) error { return tx.CreateOrder(ctx, &order) }))

	general := model.ChatSession{ConsumerID: f.consumerID, SalesRepID: f.salesID, CreatedAt: now}
	byOrder := model.ChatSession{ConsumerID: f.consumerID, SalesRepID: f.salesID, OrderID: &order.ID, CreatedAt: now.Add(time.Second)}
	err := repo.WithinTx(ctx, func(tx Tx) error {
		if err := tx.CreateChatSession(ctx, &general); err != nil {
			return err
		}
		return tx.CreateChatSession(ctx, &byOrder)
	})
	require.NoError(t, err)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		got, err := tx.GetChatSession(ctx, general.ID)
		require.NoError(t, err)
		assert.Nil(t, got.OrderID)
		assert.Equal(t, f.salesID, got.SalesRepID)

		got, err = tx.GetChatSession(ctx, byOrder.ID)
		require.NoError(t, err)
		require.NotNil(t, got.OrderID)
		assert.Equal(t, order.ID, *got.OrderID)

		mine, err := tx.ListChatSessionsByConsumer(ctx, f.consumerID, model.ListFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, byOrder.ID, mine[0].ID)

		asRep, err := tx.ListChatSessionsBySalesRep(ctx, f.salesID, model.ListFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, asRep, 1)

		none, err := tx.ListChatSessionsBySalesRep(ctx, f.ownerID, model.ListFilter{Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, none)

		_, err = tx.GetChatSession(ctx, 9999)
		assert.ErrorIs(t, err, model.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestPostgres_DeleteProduct(t *testing.T) {
	repo := setupRepository(t)
	f := seed(t, repo)
	ctx := context.Background()

	var unused, ordered model.Product
	err := repo.WithinTx(ctx, func(tx Tx) error {
		unused = model.Product{SupplierID: f.supplierID, Name: "Rice", SKU: "RC-1", PriceKZT: decimal.NewFromInt(5), IsActive: true}
		if err := tx.CreateProduct(ctx, &unused); err != nil {
			return err
		}
		ordered = model.Product{SupplierID: f.supplierID, Name: "Tea", SKU: "TE-1", PriceKZT: decimal.NewFromInt(7), IsActive: true}
		return tx.CreateProduct(ctx, &ordered)
	})
	require.NoError(t, err)

	order := model.Order{
		SupplierID: f.supplierID, ConsumerID: f.consumerID, Status: model.OrderStatusPending,
		TotalKZT: decimal.NewFromInt(7), CreatedAt: time.Now().UTC(),
		Items: []model.OrderItem{{ProductID: ordered.ID, Qty: 1, UnitPriceKZT: ordered.PriceKZT}},
	}
	require.NoError(t, repo.WithinTx(ctx, func(tx Tx) error { return tx.CreateOrder(ctx, &order) }))

	require.NoError(t, repo.WithinTx(ctx, func(tx Tx) error { return tx.DeleteProduct(ctx, unused.ID) }))

	err = repo.WithinTx(ctx, func(tx Tx) error { return tx.DeleteProduct(ctx, unused.ID) })
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = repo.WithinTx(ctx, func(tx Tx) error { return tx.DeleteProduct(ctx, ordered.ID) })
	assert.ErrorIs(t, err, model.ErrConflict)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		products, err := tx.ProductsByIDs(ctx, []int64{unused.ID, ordered.ID})
		require.NoError(t, err)
		assert.Len(t, products, 1)
		assert.Contains(t, products, ordered.ID)
		return nil
	})
	require.NoError(t, err)
}
