package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/order"
)

func TestOrder_PlaceComputesTotal(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	f.category(t, "Books")
	ctx := context.Background()

	a := f.product(t, "A", "9.99", 10, "Books")
	b := f.product(t, "B", "0.50", 10, "Books")
	u := f.customer(t, "Alice", "alice@example.com")

	o, err := f.orders.Place(ctx, u.ID, []LineItem{
		{ProductID: a.ID, Quantity: 3},
		{ProductID: b.ID, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("30.47")), o.Total.String())
	require.NotNil(t, o.User)
	assert.Equal(t, "Alice", o.User.Name)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "A", o.Items[0].Product.SKU)
	assert.Equal(t, []string{EventOrderCreated}, f.events.Types())

	// 之后改价不影响已存的总价
	_, err = f.catalog.Update(ctx, a.ID, ProductPatch{Price: ptr(decimal.NewFromInt(100))})
	require.NoError(t, err)
	got, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("30.47")))

	// 未开启预留时库存不变
	stored, err := f.catalog.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.Stock)
}

func TestOrder_PlaceRejectsUnknownReferences(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	f.category(t, "Books")
	ctx := context.Background()

	p := f.product(t, "A", "1", 1, "Books")
	u := f.customer(t, "Bob", "bob@example.com")

	_, err := f.orders.Place(ctx, u.ID, []LineItem{{ProductID: "ghost", Quantity: 1}})
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.orders.Place(ctx, "ghost", []LineItem{{ProductID: p.ID, Quantity: 1}})
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.orders.Place(ctx, u.ID, nil)
	assert.True(t, apperr.IsValidation(err))

	_, err = f.orders.Place(ctx, u.ID, []LineItem{{ProductID: p.ID, Quantity: 0}})
	assert.True(t, apperr.IsValidation(err))

	page, err := f.orders.List(ctx, OrderQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, f.events.Types())
}

func TestOrder_ReserveAndReleaseStock(t *testing.T) {
	f := newFixture(t, OrderOptions{ReserveStock: true})
	f.category(t, "Books")
	ctx := context.Background()

	p := f.product(t, "R", "2", 3, "Books")
	u := f.customer(t, "Carol", "carol@example.com")

	o := f.order(t, u, p, 2)
	stored, err := f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Stock)

	// 库存不足时整单回滚
	_, err = f.orders.Place(ctx, u.ID, []LineItem{{ProductID: p.ID, Quantity: 2}})
	assert.True(t, apperr.IsValidation(err))

	// 只有已取消的订单可以回补
	assert.True(t, apperr.IsValidation(f.orders.ReleaseStock(ctx, o.ID)))

	_, err = f.orders.UpdateStatus(ctx, o.ID, string(order.StatusCancelled))
	require.NoError(t, err)
	require.NoError(t, f.orders.ReleaseStock(ctx, o.ID))

	stored, err = f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Stock)

	evts := f.events.Types()[:2]
	assert.Equal(t, []string{EventOrderCreated, EventOrderStatusChanged}, evts)
	assert.True(t, f.events.events[1].Event.StockReserved)
	assert.Equal(t, "pending", f.events.events[1].Event.Previous)

	// 重复回补、重新打开后再取消，都不会再加库存
	require.NoError(t, f.orders.ReleaseStock(ctx, o.ID))
	_, err = f.orders.UpdateStatus(ctx, o.ID, string(order.StatusPending))
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, o.ID, string(order.StatusCancelled))
	require.NoError(t, err)
	require.NoError(t, f.orders.ReleaseStock(ctx, o.ID))

	stored, err = f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Stock)

	got, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.StockReserved)
	assert.True(t, got.StockReleased)
}

func TestOrder_ReleaseWithoutReservationIsNoop(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	f.category(t, "Books")
	ctx := context.Background()

	p := f.product(t, "N", "2", 3, "Books")
	u := f.customer(t, "Nia", "nia@example.com")
	o := f.order(t, u, p, 2)

	_, err := f.orders.UpdateStatus(ctx, o.ID, string(order.StatusCancelled))
	require.NoError(t, err)
	require.NoError(t, f.orders.ReleaseStock(ctx, o.ID))

	stored, err := f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Stock)
	assert.False(t, f.events.events[1].Event.StockReserved)
}

func TestOrder_UpdateStatusPermissive(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	f.category(t, "Books")
	ctx := context.Background()

	p := f.product(t, "A", "1", 1, "Books")
	u := f.customer(t, "Dan", "dan@example.com")
	o := f.order(t, u, p, 1)

	got, err := f.orders.UpdateStatus(ctx, o.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)

	// 默认流转表允许重新打开已取消订单
	got, err = f.orders.UpdateStatus(ctx, o.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, got.Status)

	_, err = f.orders.UpdateStatus(ctx, o.ID, "refunded")
	assert.True(t, apperr.IsValidation(err))

	_, err = f.orders.UpdateStatus(ctx, "missing", "paid")
	assert.True(t, apperr.IsNotFound(err))

	stored, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, stored.Status)
}

func TestOrder_UpdateStatusStrict(t *testing.T) {
	f := newFixture(t, OrderOptions{Transitions: order.StrictTransitions()})
	f.category(t, "Books")
	ctx := context.Background()

	p := f.product(t, "A", "1", 1, "Books")
	u := f.customer(t, "Eve", "eve@example.com")
	o := f.order(t, u, p, 1)

	_, err := f.orders.UpdateStatus(ctx, o.ID, "shipped")
	assert.True(t, apperr.IsValidation(err))

	_, err = f.orders.UpdateStatus(ctx, o.ID, "paid")
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, o.ID, "cancelled")
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, o.ID, "pending")
	assert.True(t, apperr.IsValidation(err))

	assert.Empty(t, f.orders.NextStatuses(order.StatusCancelled))
	assert.Equal(t, []order.Status{order.StatusCancelled, order.StatusPaid}, f.orders.NextStatuses(order.StatusPending))
}

func TestOrder_ListFilterAndSearch(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	f.category(t, "Books")
	ctx := context.Background()

	p := f.product(t, "A", "1", 100, "Books")
	alice := f.customer(t, "Alice Smith", "alice@example.com")
	bob := f.customer(t, "Bob", "bob@shop.test")

	o1 := f.order(t, alice, p, 1)
	f.order(t, alice, p, 2)
	o3 := f.order(t, bob, p, 3)
	_, err := f.orders.UpdateStatus(ctx, o3.ID, "paid")
	require.NoError(t, err)

	page, err := f.orders.List(ctx, OrderQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Orders, 3)

	page, err = f.orders.List(ctx, OrderQuery{Status: "paid"})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, o3.ID, page.Orders[0].ID)

	page, err = f.orders.List(ctx, OrderQuery{Status: "all", Search: "SMITH"})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)

	page, err = f.orders.List(ctx, OrderQuery{Search: "shop.test"})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 1)

	page, err = f.orders.List(ctx, OrderQuery{Search: o1.DisplayID()[4:]})
	require.NoError(t, err)
	require.NotEmpty(t, page.Orders)
	assert.Equal(t, o1.ID, page.Orders[0].ID)

	page, err = f.orders.List(ctx, OrderQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Orders, 1)

	page, err = f.orders.List(ctx, OrderQuery{UserID: bob.ID})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 1)

	_, err = f.orders.List(ctx, OrderQuery{Status: "lost"})
	assert.True(t, apperr.IsValidation(err))
}

func TestOrder_SurvivesProductDeletion(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	f.category(t, "Books")
	ctx := context.Background()

	p := f.product(t, "A", "4", 1, "Books")
	u := f.customer(t, "Fay", "fay@example.com")
	o := f.order(t, u, p, 1)

	require.NoError(t, f.catalog.Delete(ctx, p.ID))
	got, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].Product)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(4)))
}
