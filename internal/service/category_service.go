package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/category"
)

// CategoryPatch 只替换非 nil 字段
type CategoryPatch struct {
	Name        *string
	Description *string
}

type CategoryService struct {
	repo category.Repository
	// 分类名会出现在商品列表里，改名或删除后需要让列表缓存失效
	cache *ListCache
}

func NewCategoryService(repo category.Repository, cache *ListCache) *CategoryService {
	return &CategoryService{repo: repo, cache: cache}
}

func (s *CategoryService) List(ctx context.Context) ([]*category.Category, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*category.Category{}
	}
	return list, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*category.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// Create 名称必须唯一（大小写敏感）
func (s *CategoryService) Create(ctx context.Context, name, description string) (*category.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Category name is required")
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}
	c := &category.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if apperr.IsConflict(err) {
			return nil, apperr.Conflict("Category already exists")
		}
		return nil, err
	}
	zap.L().Info("分类已创建", zap.String("id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, patch CategoryPatch) (*category.Category, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("Category ID is required")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("Category name is required")
		}
		if name != c.Name {
			if err := s.ensureNameFree(ctx, name, c.ID); err != nil {
				return nil, err
			}
		}
		c.Name = name
	}
	if patch.Description != nil {
		c.Description = strings.TrimSpace(*patch.Description)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

// Delete 仍被商品或分类轮播引用时拒绝删除
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("Category ID is required")
	}
	products, sliders, err := s.repo.DeleteIfUnreferenced(ctx, id)
	if err != nil {
		return err
	}
	if products > 0 || sliders > 0 {
		return apperr.Conflict("Category is still used by %d product(s) and %d slider(s)", products, sliders)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case apperr.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return apperr.Conflict("Category already exists")
	}
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		zap.L().Warn("商品列表缓存失效失败", zap.Error(err))
	}
}
