package category

import (
	"context"
	"time"
)

// Category 商品分类，name 全局唯一（大小写敏感）
type Category struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Repository 分类仓储接口
type Repository interface {
	GetByID(ctx context.Context, id string) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	// GetByNames 按名称批量查询，缺失的名称不会报错，由调用方比对
	GetByNames(ctx context.Context, names []string) ([]*Category, error)
	ListAll(ctx context.Context) ([]*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	// DeleteIfUnreferenced 没有商品或轮播引用时删除；有引用时不删除并返回引用数
	DeleteIfUnreferenced(ctx context.Context, id string) (products int64, sliders int64, err error)
}
