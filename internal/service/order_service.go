package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/order"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/product"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/user"
	"github.com/nabirdeveloper/trusted-brother/internal/pagination"
)

// LineItem 下单时的一行
type LineItem struct {
	ProductID string
	Quantity  int64
}

// OrderQuery 后台订单列表参数；Page/Limit 都为 0 时返回全部
type OrderQuery struct {
	Status string
	// Search 对用户名、邮箱、展示订单号做大小写不敏感的子串匹配
	Search string
	UserID string
	Page   int
	Limit  int
}

// OrderPage 一页订单
type OrderPage struct {
	Orders     []*order.Order `json:"orders"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

// OrderOptions 订单流程的可配置项
type OrderOptions struct {
	Transitions  order.TransitionTable
	ReserveStock bool
	// Cache 库存变化后需要失效的商品列表缓存，可为 nil
	Cache *ListCache
}

type OrderService struct {
	orders   order.Repository
	products product.Repository
	users    user.Repository
	events   EventPublisher
	opts     OrderOptions
}

func NewOrderService(orders order.Repository, products product.Repository, users user.Repository, events EventPublisher, opts OrderOptions) *OrderService {
	if opts.Transitions == nil {
		opts.Transitions = order.PermissiveTransitions()
	}
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		events:   events,
		opts:     opts,
	}
}

// Place 创建 pending 订单，总价按下单时的商品单价计算
func (s *OrderService) Place(ctx context.Context, userID string, items []LineItem) (*order.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("User ID is required")
	}
	if len(items) == 0 {
		return nil, apperr.Validation("Order must contain at least one product")
	}
	ids := make([]string, 0, len(items))
	qty := make(map[string]int64, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return nil, apperr.Validation("Product ID is required")
		}
		if it.Quantity <= 0 {
			return nil, apperr.Validation("Quantity must be greater than zero")
		}
		if _, ok := qty[it.ProductID]; !ok {
			ids = append(ids, it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	found, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*product.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	o := &order.Order{
		ID:     uuid.NewString(),
		UserID: userID,
		Status: order.StatusPending,
		Total:  decimal.Zero,
	}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, apperr.NotFound("Product %s not found", it.ProductID)
		}
		o.Items = append(o.Items, order.Item{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
		})
		o.Total = o.Total.Add(p.Price.Mul(decimal.NewFromInt(it.Quantity)))
	}

	var reserve []order.StockChange
	if s.opts.ReserveStock {
		for _, id := range ids {
			reserve = append(reserve, order.StockChange{ProductID: id, Quantity: qty[id]})
		}
	}
	if err := s.orders.Create(ctx, o, reserve); err != nil {
		GetMonitor().RecordOrder(false)
		recordPersistence(err)
		return nil, err
	}
	GetMonitor().RecordOrder(true)
	if len(reserve) > 0 {
		s.invalidateCatalog(ctx)
	}

	created, err := s.orders.GetByID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventOrderCreated, created, "")
	zap.L().Info("订单已创建",
		zap.String("order", created.DisplayID()),
		zap.String("user", userID),
		zap.String("total", created.Total.StringFixed(2)))
	return created, nil
}

// List 返回解析了用户和商品的订单
func (s *OrderService) List(ctx context.Context, q OrderQuery) (*OrderPage, error) {
	f := order.Filter{UserID: q.UserID}
	if q.Status != "" && q.Status != "all" {
		st := order.Status(q.Status)
		if !st.Valid() {
			return nil, apperr.Validation("Invalid status: %s", q.Status)
		}
		f.Status = st
	}
	list, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		list = filterOrders(list, term)
	}
	if list == nil {
		list = []*order.Order{}
	}

	total := int64(len(list))
	if q.Page <= 0 && q.Limit <= 0 {
		return &OrderPage{Orders: list, Total: total, Page: 1, Limit: len(list), TotalPages: 1}, nil
	}
	p := pagination.Normalize(q.Page, q.Limit, pagination.DefaultLimit)
	return &OrderPage{
		Orders:     pagination.Slice(list, p),
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(total),
	}, nil
}

func filterOrders(list []*order.Order, term string) []*order.Order {
	out := list[:0:0]
	for _, o := range list {
		if strings.Contains(strings.ToLower(o.DisplayID()), term) {
			out = append(out, o)
			continue
		}
		if o.User != nil && (strings.Contains(strings.ToLower(o.User.Name), term) ||
			strings.Contains(strings.ToLower(o.User.Email), term)) {
			out = append(out, o)
		}
	}
	return out
}

func (s *OrderService) Get(ctx context.Context, id string) (*order.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("Order ID is required")
	}
	return s.orders.GetByID(ctx, id)
}

// NextStatuses 当前状态可流转到的状态
func (s *OrderService) NextStatuses(from order.Status) []order.Status {
	return s.opts.Transitions.Next(from)
}

// UpdateStatus 校验状态值与流转表后写入
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*order.Order, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(status) == "" {
		return nil, apperr.Validation("Order ID and status are required")
	}
	to := order.Status(status)
	if !to.Valid() {
		return nil, apperr.Validation("Invalid status: %s", status)
	}
	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := current.Status
	if !s.opts.Transitions.Allows(from, to) {
		return nil, apperr.Validation("Cannot change order status from %s to %s", from, to)
	}
	if err := s.orders.UpdateStatus(ctx, id, to); err != nil {
		recordPersistence(err)
		return nil, err
	}
	current.Status = to

	if from != to {
		GetMonitor().RecordStatusChange()
		s.publish(ctx, EventOrderStatusChanged, current, string(from))
		zap.L().Info("订单状态已更新",
			zap.String("order", current.DisplayID()),
			zap.String("from", string(from)),
			zap.String("to", string(to)))
	}
	return current, nil
}

// ReleaseStock 订单取消后回补下单时扣减的库存；已删除的商品跳过，已回补过的订单直接返回
func (s *OrderService) ReleaseStock(ctx context.Context, orderID string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status != order.StatusCancelled {
		return apperr.Validation("Order %s is not cancelled", o.DisplayID())
	}
	if !o.StockReserved {
		return nil
	}
	released, err := s.orders.ReleaseStock(ctx, orderID)
	if err != nil {
		recordPersistence(err)
		return err
	}
	if !released {
		zap.L().Info("库存已回补过，跳过", zap.String("order", o.DisplayID()))
		return nil
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *OrderService) invalidateCatalog(ctx context.Context) {
	if s.opts.Cache == nil {
		return
	}
	if err := s.opts.Cache.Invalidate(ctx); err != nil {
		GetMonitor().RecordCacheError()
		zap.L().Warn("商品列表缓存失效失败", zap.Error(err))
	}
}

func (s *OrderService) publish(ctx context.Context, eventType string, o *order.Order, previous string) {
	if s.events == nil {
		return
	}
	evt := OrderEvent{
		OrderID:       o.ID,
		DisplayID:     o.DisplayID(),
		UserID:        o.UserID,
		Status:        string(o.Status),
		Previous:      previous,
		Total:         o.Total,
		StockReserved: o.StockReserved,
		OccurredAt:    time.Now(),
	}
	// 事件发送失败不影响已提交的订单
	if err := s.events.Publish(ctx, eventType, evt); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("订单事件发送失败", zap.String("type", eventType), zap.Error(err))
	}
}
