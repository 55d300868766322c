package mysql

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/category"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/slider"
)

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) category.Repository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*category.Category, error) {
	var c category.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "category", "get")
	}
	return &c, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*category.Category, error) {
	var c category.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, translate(err, "category", "get")
	}
	return &c, nil
}

func (r *categoryRepo) GetByNames(ctx context.Context, names []string) ([]*category.Category, error) {
	var list []*category.Category
	if len(names) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&list).Error; err != nil {
		return nil, translate(err, "category", "list")
	}
	return list, nil
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]*category.Category, error) {
	var list []*category.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error; err != nil {
		return nil, translate(err, "category", "list")
	}
	return list, nil
}

func (r *categoryRepo) Create(ctx context.Context, c *category.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return translate(r.db.WithContext(ctx).Create(c).Error, "category", "create")
}

func (r *categoryRepo) Update(ctx context.Context, c *category.Category) error {
	res := r.db.WithContext(ctx).
		Model(&category.Category{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{"name": c.Name, "description": c.Description})
	return notFoundIfNone(res, "category", "update")
}

// DeleteIfUnreferenced 在同一事务中锁定分类行、统计引用，无引用时才删除
func (r *categoryRepo) DeleteIfUnreferenced(ctx context.Context, id string) (int64, int64, error) {
	var products, sliders int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c category.Category
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", id).Error; err != nil {
			return translate(err, "category", "delete")
		}
		if err := tx.Table("product_categories").Where("category_id = ?", id).Count(&products).Error; err != nil {
			return translate(err, "category", "count references of")
		}
		if err := tx.Model(&slider.CategorySlider{}).Where("category_id = ?", id).Count(&sliders).Error; err != nil {
			return translate(err, "category", "count references of")
		}
		if products > 0 || sliders > 0 {
			return nil
		}
		return notFoundIfNone(tx.Delete(&category.Category{}, "id = ?", id), "category", "delete")
	})
	if err != nil {
		return 0, 0, err
	}
	return products, sliders, nil
}

// lockCategories 以共享锁读取分类，与 DeleteIfUnreferenced 互斥；返回实际存在的数量
func lockCategories(tx *gorm.DB, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := tx.Model(&category.Category{}).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id IN ?", ids).
		Count(&n).Error
	if err != nil {
		return 0, translate(err, "category", "lock")
	}
	return n, nil
}
