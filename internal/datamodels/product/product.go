package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/category"
)

// Status 商品上架状态
type Status string

const (
	StatusInStock    Status = "in_stock"
	StatusOutOfStock Status = "out_of_stock"
	StatusComingSoon Status = "coming_soon"
)

// Valid 是否为合法枚举值
func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusOutOfStock, StatusComingSoon:
		return true
	}
	return false
}

// Variant 规格（尺码/颜色都可为空，不要求唯一）
type Variant struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// Product 商品模型
type Product struct {
	ID          string               `gorm:"primaryKey;size:36" json:"id"`
	Name        string               `gorm:"size:128;not null" json:"name"`
	Price       decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"price"`
	SKU         string               `gorm:"column:sku;size:64;uniqueIndex;not null" json:"sku"`
	Stock       int64                `gorm:"not null" json:"stock"`
	Categories  []*category.Category `gorm:"many2many:product_categories;" json:"categoryRefs,omitempty"`
	Variants    []Variant            `gorm:"type:text;serializer:json" json:"variants"`
	Description string               `gorm:"size:2048" json:"description,omitempty"`
	Images      []string             `gorm:"type:text;serializer:json" json:"images"`
	Status      Status               `gorm:"size:16;index;not null" json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// CategoryNames 关联分类的名称，顺序与存储顺序一致
func (p *Product) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		names = append(names, c.Name)
	}
	return names
}

// Filter 列表筛选条件，均为精确匹配，空值表示不过滤
type Filter struct {
	Category string
	SKU      string
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Product, error)
	ExistsSKU(ctx context.Context, sku, excludeID string) (bool, error)
	List(ctx context.Context, f Filter, offset, limit int) ([]*Product, int64, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	// AdjustStock 原子地增减库存，结果小于 0 时返回校验错误
	AdjustStock(ctx context.Context, id string, delta int64) (*Product, error)
}
