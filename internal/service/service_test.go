package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nabirdeveloper/trusted-brother/internal/auth"
	"github.com/nabirdeveloper/trusted-brother/internal/config"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/category"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/order"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/product"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/user"
	"github.com/nabirdeveloper/trusted-brother/internal/infra/redis/redistest"
	"github.com/nabirdeveloper/trusted-brother/internal/repository/mysql"
	"github.com/nabirdeveloper/trusted-brother/internal/repository/mysql/mysqltest"
)

type publishedEvent struct {
	Type  string
	Event OrderEvent
}

// recorder 记录发出的订单事件
type recorder struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recorder) Publish(ctx context.Context, eventType string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	evt, _ := payload.(OrderEvent)
	r.events = append(r.events, publishedEvent{Type: eventType, Event: evt})
	return nil
}

func (r *recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db         *gorm.DB
	catalog    *CatalogService
	categories *CategoryService
	orders     *OrderService
	users      *UserService
	events     *recorder
}

func newFixture(t *testing.T, opts OrderOptions) *fixture {
	t.Helper()
	db := mysqltest.Open(t)
	client, _ := redistest.New()
	cache := NewListCache(client, 0)

	products := mysql.NewProductRepository(db)
	cats := mysql.NewCategoryRepository(db)
	users := mysql.NewUserRepository(db)
	events := &recorder{}

	return &fixture{
		db:         db,
		catalog:    NewCatalogService(products, cats, cache, 12),
		categories: NewCategoryService(cats, cache),
		orders:     NewOrderService(mysql.NewOrderRepository(db), products, users, events, opts),
		users: NewUserService(users, auth.NewPasswordHasher(4),
			&config.JWTConfig{Secret: "test-secret"}),
		events: events,
	}
}

func (f *fixture) category(t *testing.T, name string) *category.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), name, "")
	require.NoError(t, err)
	return c
}

func (f *fixture) product(t *testing.T, sku, price string, stock int64, cats ...string) *product.Product {
	t.Helper()
	p, err := f.catalog.Create(context.Background(), draft(sku, price, stock, cats...))
	require.NoError(t, err)
	return p
}

func (f *fixture) customer(t *testing.T, name, email string) *user.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), Registration{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	return u
}

func (f *fixture) order(t *testing.T, u *user.User, p *product.Product, qty int64) *order.Order {
	t.Helper()
	o, err := f.orders.Place(context.Background(), u.ID, []LineItem{{ProductID: p.ID, Quantity: qty}})
	require.NoError(t, err)
	return o
}

func draft(sku, price string, stock int64, cats ...string) ProductDraft {
	pr := decimal.RequireFromString(price)
	return ProductDraft{
		Name:       "Product " + sku,
		Price:      &pr,
		SKU:        sku,
		Stock:      &stock,
		Categories: cats,
		Images:     []string{"/uploads/" + sku + ".png"},
	}
}

func ptr[T any](v T) *T { return &v }
