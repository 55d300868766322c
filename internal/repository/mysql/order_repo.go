package mysql

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

// resolved 预加载用户和商品（含分类），用于后台展示
func resolved(q *gorm.DB) *gorm.DB {
	return q.Preload("User").Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	}).Preload("Items.Product.Categories")
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order, reserve []order.StockChange) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.StockReserved = len(reserve) > 0
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range reserve {
			if _, err := adjustStock(tx, c.ProductID, -c.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Omit("User").Create(o).Error; err != nil {
			return translate(err, "order", "create")
		}
		return nil
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	if err := resolved(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err, "order", "get")
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, f order.Filter) ([]*order.Order, error) {
	q := r.db.WithContext(ctx).Model(&order.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	var list []*order.Order
	if err := resolved(q).Order("created_at DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, translate(err, "order", "list")
	}
	return list, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, s order.Status) error {
	res := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Update("status", s)
	return notFoundIfNone(res, "order", "update")
}

func (r *orderRepo) ReleaseStock(ctx context.Context, id string) (bool, error) {
	released := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&order.Order{}).
			Where("id = ? AND status = ? AND stock_reserved = ? AND stock_released = ?", id, order.StatusCancelled, true, false).
			UpdateColumn("stock_released", true)
		if res.Error != nil {
			return translate(res.Error, "order", "release stock of")
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var items []order.Item
		if err := tx.Where("order_id = ?", id).Order("id ASC").Find(&items).Error; err != nil {
			return translate(err, "order", "release stock of")
		}
		for _, it := range items {
			if _, err := adjustStock(tx, it.ProductID, it.Quantity); err != nil {
				if apperr.IsNotFound(err) {
					zap.L().Warn("回补库存时商品已删除", zap.String("order_id", id), zap.String("product", it.ProductID))
					continue
				}
				return err
			}
		}
		released = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return released, nil
}
