package slider

import (
	"context"
	"time"

	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/category"
)

// CategorySlider 分类轮播，强引用一个分类
type CategorySlider struct {
	ID          string             `gorm:"primaryKey;size:36" json:"id"`
	CategoryID  string             `gorm:"size:36;index;not null" json:"categoryId"`
	Category    *category.Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Title       string             `gorm:"size:128;not null" json:"title"`
	Description string             `gorm:"size:512" json:"description,omitempty"`
	ImageURL    string             `gorm:"size:512;not null" json:"imageUrl"`
	LinkURL     string             `gorm:"size:512" json:"linkUrl,omitempty"`
	SortOrder   int                `gorm:"column:sort_order;not null;default:0;index" json:"order"`
	IsActive    bool               `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func (CategorySlider) TableName() string { return "category_sliders" }

// Repository 分类轮播仓储接口
type Repository interface {
	GetByID(ctx context.Context, id string) (*CategorySlider, error)
	List(ctx context.Context, activeOnly bool) ([]*CategorySlider, error)
	Create(ctx context.Context, s *CategorySlider) error
	Update(ctx context.Context, s *CategorySlider) error
	Delete(ctx context.Context, id string) error
}
