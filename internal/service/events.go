package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// 订单事件类型，写入 AMQP 消息的 Type 字段
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent 订单事件消息体
type OrderEvent struct {
	OrderID   string          `json:"orderId"`
	DisplayID string          `json:"displayId"`
	UserID    string          `json:"userId"`
	Status    string          `json:"status"`
	Previous  string          `json:"previous,omitempty"`
	Total     decimal.Decimal `json:"total"`
	// StockReserved 下单时是否扣减过库存，消费端据此决定取消时是否回补
	StockReserved bool      `json:"stockReserved"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// EventPublisher 由 mq.Publisher 实现；为 nil 时不发送事件
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}
