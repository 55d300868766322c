package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/category"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/product"
	"github.com/nabirdeveloper/trusted-brother/internal/pagination"
)

// ProductQuery 列表查询参数；Page/Limit 为 0 时使用默认值
type ProductQuery struct {
	Category string
	SKU      string
	Page     int
	Limit    int
}

// ProductPage 一页商品及分页信息
type ProductPage struct {
	Products   []*product.Product `json:"products"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}

// ProductDraft 新建商品的输入；Price/Stock 为 nil 表示缺失
type ProductDraft struct {
	Name        string
	Price       *decimal.Decimal
	SKU         string
	Stock       *int64
	Categories  []string
	Variants    []product.Variant
	Description string
	Images      []string
	Status      string
}

// ProductPatch 更新商品的输入，只替换非 nil 字段
type ProductPatch struct {
	Name        *string
	Price       *decimal.Decimal
	SKU         *string
	Stock       *int64
	Categories  []string
	Variants    []product.Variant
	Description *string
	Images      []string
	Status      *string
}

type CatalogService struct {
	products     product.Repository
	categories   category.Repository
	cache        *ListCache
	defaultLimit int
}

func NewCatalogService(products product.Repository, categories category.Repository, cache *ListCache, defaultLimit int) *CatalogService {
	if defaultLimit <= 0 {
		defaultLimit = pagination.DefaultLimit
	}
	return &CatalogService{
		products:     products,
		categories:   categories,
		cache:        cache,
		defaultLimit: defaultLimit,
	}
}

// List 分页查询，筛选条件为精确匹配
func (s *CatalogService) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	p := pagination.Normalize(q.Page, q.Limit, s.defaultLimit)
	q.Page, q.Limit = p.Page, p.Limit

	// 版本号在查库之前读取，缓存读写都用同一个版本
	ver, cached := "", false
	if s.cache != nil {
		v, err := s.cache.Version(ctx)
		if err != nil {
			GetMonitor().RecordCacheError()
			zap.L().Warn("商品列表缓存版本读取失败", zap.Error(err))
		} else {
			ver, cached = v, true
		}
	}
	if cached {
		var hitPage ProductPage
		hit, err := s.cache.Get(ctx, ver, q, &hitPage)
		if err != nil {
			GetMonitor().RecordCacheError()
			zap.L().Warn("商品列表缓存读取失败", zap.Error(err))
		} else {
			GetMonitor().RecordCacheHit(hit)
			if hit {
				return &hitPage, nil
			}
		}
	}

	items, total, err := s.products.List(ctx, product.Filter{Category: q.Category, SKU: q.SKU}, p.Offset(), p.Limit)
	if err != nil {
		recordPersistence(err)
		return nil, err
	}
	if items == nil {
		items = []*product.Product{}
	}
	page := &ProductPage{
		Products:   items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(total),
	}
	if cached {
		if err := s.cache.Set(ctx, ver, q, page); err != nil {
			GetMonitor().RecordCacheError()
			zap.L().Warn("商品列表缓存写入失败", zap.Error(err))
		}
	}
	return page, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*product.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("Product ID is required")
	}
	return s.products.GetByID(ctx, id)
}

// Create 校验并新建商品，状态缺省为 in_stock
func (s *CatalogService) Create(ctx context.Context, d ProductDraft) (*product.Product, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.SKU = strings.TrimSpace(d.SKU)
	if d.Name == "" || d.Price == nil || d.SKU == "" || d.Stock == nil || len(d.Categories) == 0 || len(d.Images) == 0 {
		return nil, apperr.Validation("Missing required fields")
	}
	if d.Price.IsNegative() {
		return nil, apperr.Validation("Price must not be negative")
	}
	if *d.Stock < 0 {
		return nil, apperr.Validation("Stock must not be negative")
	}
	status := product.StatusInStock
	if d.Status != "" {
		status = product.Status(d.Status)
		if !status.Valid() {
			return nil, apperr.Validation("Invalid status: %s", d.Status)
		}
	}
	cats, err := s.resolveCategories(ctx, d.Categories)
	if err != nil {
		return nil, err
	}
	exists, err := s.products.ExistsSKU(ctx, d.SKU, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("Product with this SKU already exists")
	}

	p := &product.Product{
		ID:          uuid.NewString(),
		Name:        d.Name,
		Price:       *d.Price,
		SKU:         d.SKU,
		Stock:       *d.Stock,
		Categories:  cats,
		Variants:    d.Variants,
		Description: d.Description,
		Images:      d.Images,
		Status:      status,
	}
	if p.Variants == nil {
		p.Variants = []product.Variant{}
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	zap.L().Info("商品已创建", zap.String("id", p.ID), zap.String("sku", p.SKU))
	return p, nil
}

// Update 按 patch 替换字段；SKU 变更时重新检查唯一性
func (s *CatalogService) Update(ctx context.Context, id string, patch ProductPatch) (*product.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("Product ID is required")
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("Name must not be empty")
		}
		p.Name = name
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, apperr.Validation("Price must not be negative")
		}
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, apperr.Validation("Stock must not be negative")
		}
		p.Stock = *patch.Stock
	}
	if patch.SKU != nil {
		sku := strings.TrimSpace(*patch.SKU)
		if sku == "" {
			return nil, apperr.Validation("SKU must not be empty")
		}
		if sku != p.SKU {
			exists, err := s.products.ExistsSKU(ctx, sku, p.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, apperr.Conflict("Product with this SKU already exists")
			}
		}
		p.SKU = sku
	}
	if patch.Categories != nil {
		if len(patch.Categories) == 0 {
			return nil, apperr.Validation("At least one category is required")
		}
		cats, err := s.resolveCategories(ctx, patch.Categories)
		if err != nil {
			return nil, err
		}
		p.Categories = cats
	}
	if patch.Variants != nil {
		p.Variants = patch.Variants
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Images != nil {
		if len(patch.Images) == 0 {
			return nil, apperr.Validation("At least one image is required")
		}
		p.Images = patch.Images
	}
	if patch.Status != nil {
		st := product.Status(*patch.Status)
		if !st.Valid() {
			return nil, apperr.Validation("Invalid status: %s", *patch.Status)
		}
		p.Status = st
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.products.GetByID(ctx, p.ID)
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("Product ID is required")
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	zap.L().Info("商品已删除", zap.String("id", id))
	return nil
}

// AdjustStock 原子增减库存，库存不足时返回校验错误
func (s *CatalogService) AdjustStock(ctx context.Context, id string, delta int64) (*product.Product, error) {
	if delta == 0 {
		return nil, apperr.Validation("Stock delta must not be zero")
	}
	p, err := s.products.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

// resolveCategories 按名称解析分类，去重并保持输入顺序
func (s *CatalogService) resolveCategories(ctx context.Context, names []string) ([]*category.Category, error) {
	seen := make(map[string]bool, len(names))
	wanted := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, apperr.Validation("Category name must not be empty")
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		wanted = append(wanted, n)
	}
	found, err := s.categories.GetByNames(ctx, wanted)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*category.Category, len(found))
	for _, c := range found {
		byName[c.Name] = c
	}
	out := make([]*category.Category, 0, len(wanted))
	for _, n := range wanted {
		c, ok := byName[n]
		if !ok {
			return nil, apperr.Validation("Unknown category: %s", n)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		GetMonitor().RecordCacheError()
		zap.L().Warn("商品列表缓存失效失败", zap.Error(err))
	}
}

// recordPersistence 存储层错误计入监控
func recordPersistence(err error) {
	if apperr.IsPersistence(err) {
		GetMonitor().RecordDBError()
		zap.L().Error("存储操作失败", zap.Error(err))
	}
}
