package banner

import (
	"context"
	"time"
)

// Banner 首页横幅
type Banner struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:128;not null" json:"title"`
	Description string    `gorm:"size:512" json:"description,omitempty"`
	ImageURL    string    `gorm:"size:512;not null" json:"imageUrl"`
	LinkURL     string    `gorm:"size:512" json:"linkUrl,omitempty"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0;index" json:"order"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Repository 横幅仓储接口
type Repository interface {
	GetByID(ctx context.Context, id string) (*Banner, error)
	// List 按 sort_order 升序返回，activeOnly 只返回启用的
	List(ctx context.Context, activeOnly bool) ([]*Banner, error)
	Create(ctx context.Context, b *Banner) error
	Update(ctx context.Context, b *Banner) error
	Delete(ctx context.Context, id string) error
}
