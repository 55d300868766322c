package server

import (
	"context"
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nabirdeveloper/trusted-brother/internal/service"
)

func seedProduct(t *testing.T, env *testEnv, sku, cat string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := env.deps.Categories.Create(ctx, cat, ""); err != nil {
		require.Contains(t, err.Error(), "exists")
	}
	price := decimal.RequireFromString("9.99")
	stock := int64(10)
	p, err := env.deps.Catalog.Create(ctx, service.ProductDraft{
		Name: "Product " + sku, Price: &price, SKU: sku, Stock: &stock,
		Categories: []string{cat}, Images: []string{"/uploads/" + sku + ".png"},
	})
	require.NoError(t, err)
	return p.ID
}

func TestStorefront_Health(t *testing.T) {
	e := httptest.New(t, newTestEnv(t).storefront())
	e.GET("/api/health").Expect().Status(iris.StatusOK).JSON().Object().HasValue("status", "ok")
}

func TestStorefront_RegisterAndLogin(t *testing.T) {
	e := httptest.New(t, newTestEnv(t).storefront())

	e.POST("/api/auth/register").WithJSON(iris.Map{
		"name": "Alice", "email": "alice@example.com", "password": "secret1", "role": "admin",
	}).Expect().Status(iris.StatusCreated).
		JSON().Object().HasValue("success", true).
		Value("user").Object().HasValue("role", "user").NotContainsKey("password")

	e.POST("/api/auth/register").WithJSON(iris.Map{
		"name": "Alice", "email": "alice@example.com", "password": "secret1",
	}).Expect().Status(iris.StatusBadRequest).
		JSON().Object().HasValue("success", false).HasValue("message", "User with this email already exists")

	e.POST("/api/auth/register").WithJSON(iris.Map{"name": "Bob"}).
		Expect().Status(iris.StatusBadRequest)

	e.POST("/api/auth/login").WithJSON(iris.Map{"email": "alice@example.com", "password": "secret1"}).
		Expect().Status(iris.StatusOK).JSON().Object().HasValue("success", true).ContainsKey("token")

	e.POST("/api/auth/login").WithJSON(iris.Map{"email": "alice@example.com", "password": "nope12"}).
		Expect().Status(iris.StatusUnauthorized)
}

func TestStorefront_Products(t *testing.T) {
	env := newTestEnv(t)
	id := seedProduct(t, env, "P-1", "Books")
	seedProduct(t, env, "P-2", "Toys")
	e := httptest.New(t, env.storefront())

	obj := e.GET("/api/products").WithQuery("category", "Books").
		Expect().Status(iris.StatusOK).JSON().Object()
	obj.HasValue("total", 1).HasValue("page", 1).HasValue("totalPages", 1)
	item := obj.Value("products").Array().Value(0).Object()
	item.HasValue("sku", "P-1").HasValue("category", "Books").HasValue("price", "9.99").NotContainsKey("categoryRefs")
	item.Value("categories").Array().ContainsOnly("Books")

	e.GET("/api/products").WithQuery("page", "0").WithQuery("limit", "-5").
		Expect().Status(iris.StatusOK).JSON().Object().HasValue("limit", 12).HasValue("total", 2)

	e.GET("/api/products/" + id).Expect().Status(iris.StatusOK).JSON().Object().HasValue("id", id)
	e.GET("/api/products/missing").Expect().Status(iris.StatusNotFound).
		JSON().Object().ContainsKey("error")
}

func TestStorefront_PlaceOrder(t *testing.T) {
	env := newTestEnv(t)
	pid := seedProduct(t, env, "P-1", "Books")
	bearer, _ := env.token(t, "carol@example.com", "")
	e := httptest.New(t, env.storefront())

	body := iris.Map{"items": []iris.Map{{"productId": pid, "quantity": "2"}}}
	e.POST("/api/orders").WithJSON(body).Expect().Status(iris.StatusUnauthorized)

	order := e.POST("/api/orders").WithHeader("Authorization", bearer).WithJSON(body).
		Expect().Status(iris.StatusCreated).JSON().Object().
		HasValue("success", true).Value("order").Object()
	order.HasValue("status", "pending").HasValue("total", "19.98")
	order.Value("displayId").String().HasPrefix("ORD-")

	e.POST("/api/orders").WithHeader("Authorization", bearer).
		WithJSON(iris.Map{"items": []iris.Map{{"productId": "ghost", "quantity": 1}}}).
		Expect().Status(iris.StatusNotFound).JSON().Object().HasValue("success", false)

	e.POST("/api/orders").WithHeader("Authorization", bearer).
		WithJSON(iris.Map{"items": []iris.Map{{"productId": pid, "quantity": "two"}}}).
		Expect().Status(iris.StatusBadRequest)

	e.GET("/api/my/orders").WithHeader("Authorization", bearer).
		Expect().Status(iris.StatusOK).JSON().Object().HasValue("total", 1)
}

func TestStorefront_DashboardRedirect(t *testing.T) {
	env := newTestEnv(t)
	userBearer, _ := env.token(t, "u@example.com", "user")
	adminBearer, _ := env.token(t, "a@example.com", "admin")
	e := httptest.New(t, env.storefront())

	e.GET("/dashboard-redirect").Expect().Status(iris.StatusOK).Body().IsEqual("/auth/login")
	e.GET("/dashboard-redirect").WithHeader("Authorization", userBearer).
		Expect().Status(iris.StatusOK).Body().IsEqual("/user-dashboard")
	e.GET("/dashboard-redirect").WithHeader("Authorization", adminBearer).
		Expect().Status(iris.StatusOK).Body().IsEqual("/admin-dashboard")
}
