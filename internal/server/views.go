package server

import (
	"github.com/kataras/iris/v12"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/order"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/product"
	"github.com/nabirdeveloper/trusted-brother/internal/service"
)

// productView 对外的商品结构：categories 为名称数组，category 为第一个分类名
type productView struct {
	*product.Product
	// 同名字段遮蔽内嵌的关联记录，nil 时不输出
	CategoryRefs *struct{} `json:"categoryRefs,omitempty"`
	Categories   []string  `json:"categories"`
	Category     string    `json:"category"`
}

func newProductView(p *product.Product) productView {
	names := p.CategoryNames()
	v := productView{Product: p, Categories: names}
	if len(names) > 0 {
		v.Category = names[0]
	}
	return v
}

func newProductViews(list []*product.Product) []productView {
	out := make([]productView, 0, len(list))
	for _, p := range list {
		out = append(out, newProductView(p))
	}
	return out
}

func productPageBody(page *service.ProductPage) iris.Map {
	return iris.Map{
		"products":   newProductViews(page.Products),
		"total":      page.Total,
		"page":       page.Page,
		"limit":      page.Limit,
		"totalPages": page.TotalPages,
	}
}

// orderItemView 订单行里的商品与商品列表同形
type orderItemView struct {
	order.Item
	Product *productView `json:"product,omitempty"`
}

// orderView 附带展示用订单号和可流转状态
type orderView struct {
	*order.Order
	Items        []orderItemView `json:"products"`
	DisplayID    string          `json:"displayId"`
	NextStatuses []order.Status  `json:"nextStatuses,omitempty"`
}

func newOrderView(o *order.Order, orders *service.OrderService) orderView {
	items := make([]orderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		iv := orderItemView{Item: it}
		if it.Product != nil {
			pv := newProductView(it.Product)
			iv.Product = &pv
		}
		items = append(items, iv)
	}
	v := orderView{Order: o, Items: items, DisplayID: o.DisplayID()}
	if orders != nil {
		v.NextStatuses = orders.NextStatuses(o.Status)
	}
	return v
}

func orderPageBody(page *service.OrderPage, orders *service.OrderService) iris.Map {
	views := make([]orderView, 0, len(page.Orders))
	for _, o := range page.Orders {
		views = append(views, newOrderView(o, orders))
	}
	return iris.Map{
		"orders":     views,
		"total":      page.Total,
		"page":       page.Page,
		"limit":      page.Limit,
		"totalPages": page.TotalPages,
	}
}

// readJSON 请求体解析失败统一按校验错误处理
func readJSON(ctx iris.Context, v interface{}) error {
	if err := ctx.ReadJSON(v); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}
