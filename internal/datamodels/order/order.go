package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/product"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/user"
)

// Order 订单模型；Total 在创建时计算后独立存储，之后不再重算
type Order struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	UserID    string          `gorm:"size:36;index;not null" json:"userId"`
	User      *user.User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items     []Item          `gorm:"foreignKey:OrderID" json:"products"`
	Total     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	Status    Status          `gorm:"size:16;index;not null" json:"status"`
	// StockReserved 下单时扣减过库存；StockReleased 取消后已回补，每个订单最多回补一次
	StockReserved bool      `gorm:"not null;default:false" json:"stockReserved"`
	StockReleased bool      `gorm:"not null;default:false" json:"stockReleased"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Item 订单行
type Item struct {
	ID        uint             `gorm:"primaryKey" json:"-"`
	OrderID   string           `gorm:"size:36;index;not null" json:"-"`
	ProductID string           `gorm:"size:36;index;not null" json:"productId"`
	Product   *product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int64            `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
}

func (Item) TableName() string { return "order_items" }

// DisplayID 后台展示用的短订单号
func (o *Order) DisplayID() string {
	raw := strings.ReplaceAll(o.ID, "-", "")
	if len(raw) > 8 {
		raw = raw[:8]
	}
	return "ORD-" + strings.ToUpper(raw)
}

// StockChange 下单时需要扣减的库存
type StockChange struct {
	ProductID string
	Quantity  int64
}

// Filter 订单查询条件
type Filter struct {
	Status Status
	UserID string
}

// Repository 订单仓储接口
type Repository interface {
	// Create 写入订单与订单行；reserve 非空时在同一事务中扣减库存
	Create(ctx context.Context, o *Order, reserve []StockChange) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f Filter) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, s Status) error
	// ReleaseStock 已取消且扣减过库存、尚未回补的订单，在同一事务中标记并回补库存；
	// 不满足条件时返回 false，不做任何修改
	ReleaseStock(ctx context.Context, id string) (bool, error)
}
