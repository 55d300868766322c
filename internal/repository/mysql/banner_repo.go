package mysql

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/banner"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/slider"
)

type bannerRepo struct {
	db *gorm.DB
}

// NewBannerRepository 创建横幅仓储
func NewBannerRepository(db *gorm.DB) banner.Repository {
	return &bannerRepo{db: db}
}

func (r *bannerRepo) GetByID(ctx context.Context, id string) (*banner.Banner, error) {
	var b banner.Banner
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err, "banner", "get")
	}
	return &b, nil
}

func (r *bannerRepo) List(ctx context.Context, activeOnly bool) ([]*banner.Banner, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var list []*banner.Banner
	if err := q.Order("sort_order ASC").Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, translate(err, "banner", "list")
	}
	return list, nil
}

func (r *bannerRepo) Create(ctx context.Context, b *banner.Banner) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	// is_active 的零值 false 也要写入，不能被数据库默认值覆盖
	return translate(r.db.WithContext(ctx).Select("*").Create(b).Error, "banner", "create")
}

func (r *bannerRepo) Update(ctx context.Context, b *banner.Banner) error {
	res := r.db.WithContext(ctx).
		Model(&banner.Banner{}).
		Where("id = ?", b.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(b)
	return notFoundIfNone(res, "banner", "update")
}

func (r *bannerRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&banner.Banner{}, "id = ?", id)
	return notFoundIfNone(res, "banner", "delete")
}

type sliderRepo struct {
	db *gorm.DB
}

// NewCategorySliderRepository 创建分类轮播仓储
func NewCategorySliderRepository(db *gorm.DB) slider.Repository {
	return &sliderRepo{db: db}
}

func (r *sliderRepo) GetByID(ctx context.Context, id string) (*slider.CategorySlider, error) {
	var s slider.CategorySlider
	if err := r.db.WithContext(ctx).Preload("Category").First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err, "category slider", "get")
	}
	return &s, nil
}

func (r *sliderRepo) List(ctx context.Context, activeOnly bool) ([]*slider.CategorySlider, error) {
	q := r.db.WithContext(ctx).Preload("Category")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var list []*slider.CategorySlider
	if err := q.Order("sort_order ASC").Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, translate(err, "category slider", "list")
	}
	return list, nil
}

func (r *sliderRepo) Create(ctx context.Context, s *slider.CategorySlider) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategory(tx, s.CategoryID); err != nil {
			return err
		}
		return translate(tx.Select("*").Omit("Category").Create(s).Error, "category slider", "create")
	})
}

func (r *sliderRepo) Update(ctx context.Context, s *slider.CategorySlider) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategory(tx, s.CategoryID); err != nil {
			return err
		}
		res := tx.Model(&slider.CategorySlider{}).
			Where("id = ?", s.ID).
			Select("*").
			Omit("id", "created_at", "Category").
			Updates(s)
		return notFoundIfNone(res, "category slider", "update")
	})
}

func ensureCategory(tx *gorm.DB, id string) error {
	n, err := lockCategories(tx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Category not found")
	}
	return nil
}

func (r *sliderRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&slider.CategorySlider{}, "id = ?", id)
	return notFoundIfNone(res, "category slider", "delete")
}
