package server

import (
	"github.com/kataras/iris/v12"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/config"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/user"
	"github.com/nabirdeveloper/trusted-brother/internal/middleware"
	"github.com/nabirdeveloper/trusted-brother/internal/service"
)

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	MountStorefront(app, cfg, initDeps(cfg))
}

// MountStorefront 在 app 上挂载前台路由
func MountStorefront(app *iris.Application, cfg *config.Config, d *Deps) {
	app.Use(middleware.AccessLog())
	app.Use(middleware.Session(&cfg.JWT, d.Tokens))

	// 上传的图片
	app.HandleDir(cfg.Upload.URLPrefix, iris.Dir(cfg.Upload.Dir))

	// 按角色跳转到对应的控制台
	app.Get("/dashboard-redirect", func(ctx iris.Context) {
		switch {
		case middleware.UserID(ctx) == "":
			ctx.Redirect("/auth/login", iris.StatusFound)
		case middleware.Role(ctx) == user.RoleAdmin:
			ctx.Redirect("/admin-dashboard", iris.StatusFound)
		default:
			ctx.Redirect("/user-dashboard", iris.StatusFound)
		}
	})

	api := app.Party("/api")

	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	mountAuth(api, d)

	// 商品列表：精确匹配分类名与 sku
	api.Get("/products", func(ctx iris.Context) {
		page, err := d.Catalog.List(ctx.Request().Context(), service.ProductQuery{
			Category: ctx.URLParam("category"),
			SKU:      ctx.URLParam("sku"),
			Page:     ctx.URLParamIntDefault("page", 0),
			Limit:    ctx.URLParamIntDefault("limit", 0),
		})
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(productPageBody(page))
	})

	api.Get("/products/{id:string}", func(ctx iris.Context) {
		p, err := d.Catalog.Get(ctx.Request().Context(), ctx.Params().Get("id"))
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(newProductView(p))
	})

	api.Get("/categories", func(ctx iris.Context) {
		list, err := d.Categories.List(ctx.Request().Context())
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(list)
	})

	api.Get("/banners", func(ctx iris.Context) {
		list, err := d.Banners.List(ctx.Request().Context(), false)
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(list)
	})

	api.Get("/category-sliders", func(ctx iris.Context) {
		list, err := d.Sliders.List(ctx.Request().Context(), false)
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(list)
	})

	// 需要登录的接口
	member := api.Party("/", middleware.RequireUser())

	member.Post("/orders", middleware.OrderRateLimit(), func(ctx iris.Context) {
		var req placeOrderRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		items, err := req.lineItems()
		if err != nil {
			fail(ctx, err)
			return
		}
		o, err := d.Orders.Place(ctx.Request().Context(), middleware.UserID(ctx), items)
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusCreated, "Order placed successfully", iris.Map{
			"order": newOrderView(o, nil),
		})
	})

	member.Get("/my/orders", func(ctx iris.Context) {
		page, err := d.Orders.List(ctx.Request().Context(), service.OrderQuery{
			UserID: middleware.UserID(ctx),
			Status: ctx.URLParam("status"),
			Page:   ctx.URLParamIntDefault("page", 0),
			Limit:  ctx.URLParamIntDefault("limit", 0),
		})
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(orderPageBody(page, nil))
	})
}

// mountAuth 注册与登录；前台注册只能创建普通用户
func mountAuth(api iris.Party, d *Deps) {
	api.Post("/auth/register", func(ctx iris.Context) {
		var req registerRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		u, err := d.Users.Register(ctx.Request().Context(), service.Registration{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     string(user.RoleUser),
		})
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusCreated, "User registered successfully", iris.Map{"user": u})
	})

	api.Post("/auth/login", func(ctx iris.Context) {
		var req loginRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		token, u, err := d.Users.Login(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			if apperr.IsValidation(err) && req.Email != "" && req.Password != "" {
				ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"message": apperr.PublicMessage(err), "success": false})
				return
			}
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "", iris.Map{"token": token, "user": u})
	})
}
