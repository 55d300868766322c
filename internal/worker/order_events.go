package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	radix "github.com/mediocregopher/radix/v3"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/order"
	"github.com/nabirdeveloper/trusted-brother/internal/service"
)

// redis 标记只用来挡住重复投递，订单行上的 stock_released 才是最终判断
const (
	releasedKey          = "order:stock-released:%s"
	releasedMarkLifetime = 30 * 24 * time.Hour
)

// StockReleaser 由 service.OrderService 实现
type StockReleaser interface {
	ReleaseStock(ctx context.Context, orderID string) error
}

// OrderEventHandler 消费订单事件：记录下单与状态变更，取消时回补库存
type OrderEventHandler struct {
	orders StockReleaser
	redis  radix.Client
}

// NewOrderEventHandler redis 为 nil 时不做去重
func NewOrderEventHandler(orders StockReleaser, redis radix.Client) *OrderEventHandler {
	return &OrderEventHandler{orders: orders, redis: redis}
}

// Run 以手动确认模式消费队列，直到 ctx 结束或 channel 关闭
func (h *OrderEventHandler) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				zap.L().Warn("消息通道已关闭")
				return
			}
			h.Handle(ctx, d)
		}
	}
}

// Handle 处理单条消息并负责 ack/nack
func (h *OrderEventHandler) Handle(ctx context.Context, d amqp.Delivery) {
	var evt service.OrderEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil || evt.OrderID == "" {
		zap.L().Warn("无效的订单事件，丢弃", zap.String("type", d.Type), zap.Error(err))
		service.GetMonitor().RecordWorkerFailed()
		_ = d.Nack(false, false)
		return
	}

	log := zap.L().With(zap.String("type", d.Type), zap.String("order", evt.DisplayID))

	switch d.Type {
	case service.EventOrderCreated:
		log.Info("新订单", zap.String("user", evt.UserID), zap.String("total", evt.Total.StringFixed(2)))
	case service.EventOrderStatusChanged:
		log.Info("订单状态变更", zap.String("from", evt.Previous), zap.String("to", evt.Status))
		if evt.Status == string(order.StatusCancelled) && evt.StockReserved {
			if err := h.release(ctx, evt.OrderID); err != nil {
				h.fail(log, d, err)
				return
			}
		}
	default:
		log.Warn("未知的事件类型，忽略")
	}

	service.GetMonitor().RecordWorkerProcessed()
	if err := d.Ack(false); err != nil {
		log.Warn("ack 失败", zap.Error(err))
	}
}

// fail 持久化错误重新入队，其余错误（订单已恢复、已删除）直接丢弃
func (h *OrderEventHandler) fail(log *zap.Logger, d amqp.Delivery, err error) {
	service.GetMonitor().RecordWorkerFailed()
	requeue := apperr.IsPersistence(err)
	if requeue {
		service.GetMonitor().RecordDBError()
		log.Error("回补库存失败，重新入队", zap.Error(err))
	} else {
		log.Warn("回补库存跳过", zap.Error(err))
	}
	_ = d.Nack(false, requeue)
}

func (h *OrderEventHandler) release(ctx context.Context, orderID string) error {
	first, err := h.mark(orderID)
	if err != nil {
		// 去重不可用时仍然回补
		service.GetMonitor().RecordCacheError()
		zap.L().Warn("库存回补去重标记失败", zap.Error(err))
		first = true
	}
	if !first {
		zap.L().Info("库存已回补过，跳过", zap.String("order_id", orderID))
		return nil
	}
	if err := h.orders.ReleaseStock(ctx, orderID); err != nil {
		h.unmark(orderID)
		return err
	}
	return nil
}

// mark SET NX 成功表示本订单第一次回补
func (h *OrderEventHandler) mark(orderID string) (bool, error) {
	if h.redis == nil {
		return true, nil
	}
	var reply string
	mn := radix.MaybeNil{Rcv: &reply}
	key := fmt.Sprintf(releasedKey, orderID)
	ttl := strconv.Itoa(int(releasedMarkLifetime / time.Second))
	if err := h.redis.Do(radix.Cmd(&mn, "SET", key, "1", "EX", ttl, "NX")); err != nil {
		return false, err
	}
	return !mn.Nil, nil
}

func (h *OrderEventHandler) unmark(orderID string) {
	if h.redis == nil {
		return
	}
	if err := h.redis.Do(radix.Cmd(nil, "DEL", fmt.Sprintf(releasedKey, orderID))); err != nil {
		zap.L().Warn("清除库存回补标记失败", zap.String("order_id", orderID), zap.Error(err))
	}
}
