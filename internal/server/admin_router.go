package server

import (
	"strings"

	"github.com/kataras/iris/v12"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/config"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/user"
	"github.com/nabirdeveloper/trusted-brother/internal/middleware"
	"github.com/nabirdeveloper/trusted-brother/internal/service"
)

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
// 端口通常是 8081，与前台 Web 服务分离。
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	MountAdmin(app, cfg, initDeps(cfg))
}

// MountAdmin 除登录外的接口都要求管理员身份
func MountAdmin(app *iris.Application, cfg *config.Config, d *Deps) {
	app.Use(middleware.AccessLog())
	app.Use(middleware.Session(&cfg.JWT, d.Tokens))
	app.HandleDir(cfg.Upload.URLPrefix, iris.Dir(cfg.Upload.Dir))

	pub := app.Party("/api")
	pub.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})
	pub.Post("/auth/login", func(ctx iris.Context) {
		var req loginRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		token, u, err := d.Users.Login(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			fail(ctx, err)
			return
		}
		if u.Role != user.RoleAdmin {
			ctx.StopWithJSON(iris.StatusForbidden, iris.Map{"message": "Forbidden", "success": false})
			return
		}
		succeed(ctx, iris.StatusOK, "", iris.Map{"token": token, "user": u})
	})

	api := app.Party("/api", middleware.RequireAdmin())

	mountAdminProducts(api, d)
	mountAdminOrders(api, d)
	mountAdminCategories(api, d)
	mountAdminDisplays(api, d)

	// ---------- 上传 ----------

	api.Post("/upload-image", middleware.UploadRateLimit(), func(ctx iris.Context) {
		// multipart 头部有少量额外开销，正文明显超限时不再解析
		if limit := cfg.Upload.MaxBytes; limit > 0 && ctx.GetContentLength() > limit+64<<10 {
			fail(ctx, apperr.Validation("File too large (max %dMB)", limit>>20))
			return
		}
		file, header, err := ctx.FormFile("image")
		if err != nil {
			fail(ctx, apperr.Validation("No file uploaded"))
			return
		}
		defer file.Close()

		url, err := d.Uploader.Upload(ctx.Request().Context(), header.Filename, file, header.Size)
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "", iris.Map{"url": url})
	})

	// ---------- 客户与监控 ----------

	api.Get("/customers", func(ctx iris.Context) {
		list, err := d.Users.ListCustomers(ctx.Request().Context())
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(list)
	})

	api.Get("/monitor", func(ctx iris.Context) {
		ctx.JSON(service.GetMonitor().GetStats())
	})
}

func mountAdminProducts(api iris.Party, d *Deps) {
	// 后台列表与前台一致，支持分页与精确筛选
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

	api.Post("/products", func(ctx iris.Context) {
		var req productRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		draft, err := req.draft()
		if err != nil {
			fail(ctx, err)
			return
		}
		p, err := d.Catalog.Create(ctx.Request().Context(), draft)
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusCreated, "Product created successfully", iris.Map{"product": newProductView(p)})
	})

	// 更新商品，id 放在 body 中
	api.Put("/products", func(ctx iris.Context) {
		var req productRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		patch, err := req.patch()
		if err != nil {
			fail(ctx, err)
			return
		}
		p, err := d.Catalog.Update(ctx.Request().Context(), req.ID, patch)
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "Product updated successfully", iris.Map{"product": newProductView(p)})
	})

	api.Delete("/products", func(ctx iris.Context) {
		var req idRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		if err := req.validate("Product"); err != nil {
			fail(ctx, err)
			return
		}
		if err := d.Catalog.Delete(ctx.Request().Context(), req.ID); err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "Product deleted successfully", nil)
	})

	// 库存增减，delta 可为负数
	api.Post("/products/stock", func(ctx iris.Context) {
		var req stockRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		delta, err := req.delta()
		if err != nil {
			fail(ctx, err)
			return
		}
		p, err := d.Catalog.AdjustStock(ctx.Request().Context(), req.ID, delta)
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "Stock updated successfully", iris.Map{"product": newProductView(p)})
	})
}

func mountAdminOrders(api iris.Party, d *Deps) {
	// 默认返回全部订单，带 page/limit 时分页
	api.Get("/orders", func(ctx iris.Context) {
		page, err := d.Orders.List(ctx.Request().Context(), service.OrderQuery{
			Status: ctx.URLParam("status"),
			Search: ctx.URLParam("q"),
			Page:   ctx.URLParamIntDefault("page", 0),
			Limit:  ctx.URLParamIntDefault("limit", 0),
		})
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(orderPageBody(page, d.Orders))
	})

	api.Get("/orders/{id:string}", func(ctx iris.Context) {
		o, err := d.Orders.Get(ctx.Request().Context(), ctx.Params().Get("id"))
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(newOrderView(o, d.Orders))
	})

	api.Put("/orders/{id:string}", func(ctx iris.Context) {
		var req statusRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		o, err := d.Orders.UpdateStatus(ctx.Request().Context(), ctx.Params().Get("id"), strings.TrimSpace(req.Status))
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "Order status updated successfully", iris.Map{"order": newOrderView(o, d.Orders)})
	})
}

func mountAdminCategories(api iris.Party, d *Deps) {
	api.Get("/categories", func(ctx iris.Context) {
		list, err := d.Categories.List(ctx.Request().Context())
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(list)
	})

	api.Post("/categories", func(ctx iris.Context) {
		var req categoryRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		c, err := d.Categories.Create(ctx.Request().Context(), deref(req.Name), deref(req.Description))
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusCreated, "Category created successfully", iris.Map{"category": c})
	})

	api.Put("/categories", func(ctx iris.Context) {
		var req categoryRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		c, err := d.Categories.Update(ctx.Request().Context(), req.ID, service.CategoryPatch{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "Category updated successfully", iris.Map{"category": c})
	})

	api.Delete("/categories", func(ctx iris.Context) {
		var req idRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		if err := d.Categories.Delete(ctx.Request().Context(), req.ID); err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "Category deleted successfully", nil)
	})
}

// mountAdminDisplays 横幅与分类轮播；GET 带 all=true 时包含未启用的
func mountAdminDisplays(api iris.Party, d *Deps) {
	api.Get("/banners", func(ctx iris.Context) {
		list, err := d.Banners.List(ctx.Request().Context(), ctx.URLParamBoolDefault("all", false))
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(list)
	})

	api.Post("/banners", func(ctx iris.Context) {
		var req displayRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		in, err := req.input()
		if err != nil {
			fail(ctx, err)
			return
		}
		b, err := d.Banners.Create(ctx.Request().Context(), in)
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusCreated, "Banner created successfully", iris.Map{"banner": b})
	})

	api.Put("/banners", func(ctx iris.Context) {
		var req displayRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		in, err := req.input()
		if err != nil {
			fail(ctx, err)
			return
		}
		b, err := d.Banners.Update(ctx.Request().Context(), req.ID, in)
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "Banner updated successfully", iris.Map{"banner": b})
	})

	api.Delete("/banners", func(ctx iris.Context) {
		var req idRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		if err := d.Banners.Delete(ctx.Request().Context(), req.ID); err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "Banner deleted successfully", nil)
	})

	api.Get("/category-sliders", func(ctx iris.Context) {
		list, err := d.Sliders.List(ctx.Request().Context(), ctx.URLParamBoolDefault("all", false))
		if err != nil {
			failRead(ctx, err)
			return
		}
		ctx.JSON(list)
	})

	api.Post("/category-sliders", func(ctx iris.Context) {
		var req displayRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		in, err := req.input()
		if err != nil {
			fail(ctx, err)
			return
		}
		s, err := d.Sliders.Create(ctx.Request().Context(), deref(req.CategoryID), in)
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusCreated, "Category slider created successfully", iris.Map{"slider": s})
	})

	api.Put("/category-sliders", func(ctx iris.Context) {
		var req displayRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		in, err := req.input()
		if err != nil {
			fail(ctx, err)
			return
		}
		s, err := d.Sliders.Update(ctx.Request().Context(), req.ID, req.CategoryID, in)
		if err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "Category slider updated successfully", iris.Map{"slider": s})
	})

	api.Delete("/category-sliders", func(ctx iris.Context) {
		var req idRequest
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
		if err := d.Sliders.Delete(ctx.Request().Context(), req.ID); err != nil {
			fail(ctx, err)
			return
		}
		succeed(ctx, iris.StatusOK, "Category slider deleted successfully", nil)
	})
}
