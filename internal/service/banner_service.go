package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/banner"
)

// DisplayInput 横幅与分类轮播共用的展示字段，nil 表示不修改
type DisplayInput struct {
	Title       *string
	Description *string
	ImageURL    *string
	LinkURL     *string
	Order       *int
	IsActive    *bool
}

// display 应用 patch 后的展示字段
type display struct {
	title, description, imageURL, linkURL string
	order                                 int
	isActive                              bool
}

func (in DisplayInput) apply(d display) (display, error) {
	if in.Title != nil {
		d.title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		d.description = *in.Description
	}
	if in.ImageURL != nil {
		d.imageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.LinkURL != nil {
		d.linkURL = strings.TrimSpace(*in.LinkURL)
	}
	if in.Order != nil {
		d.order = *in.Order
	}
	if in.IsActive != nil {
		d.isActive = *in.IsActive
	}
	if d.title == "" || d.imageURL == "" {
		return d, apperr.Validation("Title and image are required")
	}
	return d, nil
}

type BannerService struct {
	repo banner.Repository
}

func NewBannerService(repo banner.Repository) *BannerService {
	return &BannerService{repo: repo}
}

// List 按 order 升序；all 为 false 时只返回启用的横幅
func (s *BannerService) List(ctx context.Context, all bool) ([]*banner.Banner, error) {
	list, err := s.repo.List(ctx, !all)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*banner.Banner{}
	}
	return list, nil
}

// Create 未指定 IsActive 时默认启用
func (s *BannerService) Create(ctx context.Context, in DisplayInput) (*banner.Banner, error) {
	d, err := in.apply(display{isActive: true})
	if err != nil {
		return nil, err
	}
	b := &banner.Banner{ID: uuid.NewString()}
	fillBanner(b, d)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BannerService) Update(ctx context.Context, id string, in DisplayInput) (*banner.Banner, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("Banner ID is required")
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := in.apply(display{
		title: b.Title, description: b.Description, imageURL: b.ImageURL,
		linkURL: b.LinkURL, order: b.SortOrder, isActive: b.IsActive,
	})
	if err != nil {
		return nil, err
	}
	fillBanner(b, d)
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BannerService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("Banner ID is required")
	}
	return s.repo.Delete(ctx, id)
}

func fillBanner(b *banner.Banner, d display) {
	b.Title = d.title
	b.Description = d.description
	b.ImageURL = d.imageURL
	b.LinkURL = d.linkURL
	b.SortOrder = d.order
	b.IsActive = d.isActive
}
