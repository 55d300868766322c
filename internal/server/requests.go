package server

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/product"
	"github.com/nabirdeveloper/trusted-brother/internal/service"
)

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// numberField 接受 JSON 数字或数字字符串，是否合法在 validate 阶段判断
type numberField struct {
	raw string
	set bool
}

func (n *numberField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = numberField{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		*n = numberField{raw: s, set: s != ""}
		return nil
	}
	*n = numberField{raw: string(b), set: true}
	return nil
}

func (n numberField) decimal(field string) (*decimal.Decimal, error) {
	if !n.set {
		return nil, nil
	}
	d, err := decimal.NewFromString(n.raw)
	if err != nil {
		return nil, apperr.Validation("%s must be a number", field)
	}
	return &d, nil
}

func (n numberField) int64(field string) (*int64, error) {
	if !n.set {
		return nil, nil
	}
	v, err := strconv.ParseInt(n.raw, 10, 64)
	if err != nil {
		// 兼容 "10.0" 这类写法，但不接受小数
		d, derr := decimal.NewFromString(n.raw)
		if derr != nil || !d.IsInteger() {
			return nil, apperr.Validation("%s must be an integer", field)
		}
		if d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
			return nil, apperr.Validation("%s is out of range", field)
		}
		v = d.IntPart()
	}
	return &v, nil
}

// stringList 接受字符串数组，或逗号分隔的单个字符串
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		out := stringList{}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*l = out
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	*l = arr
	return nil
}

// productRequest 新建与更新商品共用；更新时 id 放在 body 中
type productRequest struct {
	ID          string            `json:"id"`
	Name        *string           `json:"name"`
	Price       numberField       `json:"price"`
	SKU         *string           `json:"sku"`
	Stock       numberField       `json:"stock"`
	Categories  stringList        `json:"categories"`
	Category    string            `json:"category"`
	Variants    []product.Variant `json:"variants"`
	Description *string           `json:"description"`
	Images      stringList        `json:"images"`
	Status      *string           `json:"status"`
}

// categoryNames categories 优先，其次兼容单个 category 字段
func (r *productRequest) categoryNames() []string {
	if r.Categories != nil {
		return r.Categories
	}
	if c := strings.TrimSpace(r.Category); c != "" {
		return []string{c}
	}
	return nil
}

func (r *productRequest) draft() (service.ProductDraft, error) {
	price, err := r.Price.decimal("Price")
	if err != nil {
		return service.ProductDraft{}, err
	}
	stock, err := r.Stock.int64("Stock")
	if err != nil {
		return service.ProductDraft{}, err
	}
	return service.ProductDraft{
		Name:        deref(r.Name),
		Price:       price,
		SKU:         deref(r.SKU),
		Stock:       stock,
		Categories:  r.categoryNames(),
		Variants:    r.Variants,
		Description: deref(r.Description),
		Images:      r.Images,
		Status:      deref(r.Status),
	}, nil
}

func (r *productRequest) patch() (service.ProductPatch, error) {
	if strings.TrimSpace(r.ID) == "" {
		return service.ProductPatch{}, apperr.Validation("Product ID is required")
	}
	price, err := r.Price.decimal("Price")
	if err != nil {
		return service.ProductPatch{}, err
	}
	stock, err := r.Stock.int64("Stock")
	if err != nil {
		return service.ProductPatch{}, err
	}
	return service.ProductPatch{
		Name:        r.Name,
		Price:       price,
		SKU:         r.SKU,
		Stock:       stock,
		Categories:  r.categoryNames(),
		Variants:    r.Variants,
		Description: r.Description,
		Images:      r.Images,
		Status:      r.Status,
	}, nil
}

type idRequest struct {
	ID string `json:"id"`
}

func (r idRequest) validate(entity string) error {
	if strings.TrimSpace(r.ID) == "" {
		return apperr.Validation("%s ID is required", entity)
	}
	return nil
}

type stockRequest struct {
	ID    string      `json:"id"`
	Delta numberField `json:"delta"`
}

func (r stockRequest) delta() (int64, error) {
	if strings.TrimSpace(r.ID) == "" {
		return 0, apperr.Validation("Product ID is required")
	}
	d, err := r.Delta.int64("Delta")
	if err != nil {
		return 0, err
	}
	if d == nil {
		return 0, apperr.Validation("Delta is required")
	}
	return *d, nil
}

type categoryRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type orderItemRequest struct {
	ProductID string      `json:"productId"`
	Quantity  numberField `json:"quantity"`
}

type placeOrderRequest struct {
	Items []orderItemRequest `json:"items"`
}

func (r placeOrderRequest) lineItems() ([]service.LineItem, error) {
	if len(r.Items) == 0 {
		return nil, apperr.Validation("Order must contain at least one product")
	}
	out := make([]service.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		q, err := it.Quantity.int64("Quantity")
		if err != nil {
			return nil, err
		}
		qty := int64(1)
		if q != nil {
			qty = *q
		}
		out = append(out, service.LineItem{ProductID: strings.TrimSpace(it.ProductID), Quantity: qty})
	}
	return out, nil
}

// displayRequest 横幅与分类轮播共用
type displayRequest struct {
	ID          string      `json:"id"`
	CategoryID  *string     `json:"categoryId"`
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	ImageURL    *string     `json:"imageUrl"`
	LinkURL     *string     `json:"linkUrl"`
	Order       numberField `json:"order"`
	IsActive    *bool       `json:"isActive"`
}

func (r displayRequest) input() (service.DisplayInput, error) {
	order, err := r.Order.int64("Order")
	if err != nil {
		return service.DisplayInput{}, err
	}
	in := service.DisplayInput{
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		LinkURL:     r.LinkURL,
		IsActive:    r.IsActive,
	}
	if order != nil {
		v := int(*order)
		in.Order = &v
	}
	return in, nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
