package mysql

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/category"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/product"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).Preload("Categories").First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "product", "get")
	}
	return &p, nil
}

func (r *productRepo) GetByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	var list []*product.Product
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Preload("Categories").Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translate(err, "product", "list")
	}
	return list, nil
}

func (r *productRepo) ExistsSKU(ctx context.Context, sku, excludeID string) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&product.Product{}).Where("sku = ?", sku)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err, "product", "count")
	}
	return n > 0, nil
}

// List 精确匹配分类名与 sku；按写入顺序返回，保证分页稳定
func (r *productRepo) List(ctx context.Context, f product.Filter, offset, limit int) ([]*product.Product, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&product.Product{})
		if f.SKU != "" {
			q = q.Where("products.sku = ?", f.SKU)
		}
		if f.Category != "" {
			sub := r.db.WithContext(ctx).
				Table("product_categories").
				Select("product_categories.product_id").
				Joins("JOIN categories ON categories.id = product_categories.category_id").
				Where("categories.name = ?", f.Category)
			q = q.Where("products.id IN (?)", sub)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, translate(err, "product", "count")
	}

	list := make([]*product.Product, 0)
	if total == 0 || int64(offset) >= total {
		return list, total, nil
	}
	if err := scoped().
		Preload("Categories").
		Order("products.created_at ASC").
		Order("products.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, translate(err, "product", "list")
	}
	return list, total, nil
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategories(tx, p.Categories); err != nil {
			return err
		}
		// 分类是已存在的记录，只写关联表
		return translate(tx.Omit("Categories.*").Create(p).Error, "product", "create")
	})
}

// ensureCategories 锁住并确认商品引用的分类仍然存在
func ensureCategories(tx *gorm.DB, cats []*category.Category) error {
	seen := make(map[string]struct{}, len(cats))
	ids := make([]string, 0, len(cats))
	for _, c := range cats {
		if _, ok := seen[c.ID]; !ok {
			seen[c.ID] = struct{}{}
			ids = append(ids, c.ID)
		}
	}
	n, err := lockCategories(tx, ids)
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return apperr.Validation("Unknown category")
	}
	return nil
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategories(tx, p.Categories); err != nil {
			return err
		}
		res := tx.Model(&product.Product{}).
			Where("id = ?", p.ID).
			Select("*").
			Omit("id", "created_at", "Categories").
			Updates(p)
		if err := notFoundIfNone(res, "product", "update"); err != nil {
			return err
		}
		if err := tx.Model(p).Association("Categories").Replace(p.Categories); err != nil {
			return translate(err, "product", "update")
		}
		return nil
	})
}

// Delete 硬删除，不检查订单引用
func (r *productRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&product.Product{}, "id = ?", id)
		if err := notFoundIfNone(res, "product", "delete"); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM product_categories WHERE product_id = ?", id).Error; err != nil {
			return translate(err, "product", "delete")
		}
		return nil
	})
}

func (r *productRepo) AdjustStock(ctx context.Context, id string, delta int64) (*product.Product, error) {
	var out *product.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := adjustStock(tx, id, delta)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// adjustStock 在给定事务内增减库存；库存归零时自动标记缺货，补货后恢复在售
func adjustStock(tx *gorm.DB, id string, delta int64) (*product.Product, error) {
	res := tx.Model(&product.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return nil, translate(res.Error, "product", "adjust stock of")
	}

	var p product.Product
	if err := tx.Preload("Categories").First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "product", "get")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Validation("insufficient stock for %s: have %d, need %d", p.SKU, p.Stock, -delta)
	}

	next := p.Status
	switch {
	case p.Stock == 0 && p.Status == product.StatusInStock:
		next = product.StatusOutOfStock
	case p.Stock > 0 && p.Status == product.StatusOutOfStock:
		next = product.StatusInStock
	}
	if next != p.Status {
		if err := tx.Model(&product.Product{}).Where("id = ?", id).UpdateColumn("status", next).Error; err != nil {
			return nil, translate(err, "product", "update")
		}
		p.Status = next
	}
	return &p, nil
}
