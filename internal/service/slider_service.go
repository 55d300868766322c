package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/category"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/slider"
)

type SliderService struct {
	repo       slider.Repository
	categories category.Repository
}

func NewSliderService(repo slider.Repository, categories category.Repository) *SliderService {
	return &SliderService{repo: repo, categories: categories}
}

func (s *SliderService) List(ctx context.Context, all bool) ([]*slider.CategorySlider, error) {
	list, err := s.repo.List(ctx, !all)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*slider.CategorySlider{}
	}
	return list, nil
}

// Create 引用的分类必须存在
func (s *SliderService) Create(ctx context.Context, categoryID string, in DisplayInput) (*slider.CategorySlider, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, apperr.Validation("Category is required")
	}
	cat, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	d, err := in.apply(display{isActive: true})
	if err != nil {
		return nil, err
	}
	sl := &slider.CategorySlider{ID: uuid.NewString(), CategoryID: cat.ID}
	fillSlider(sl, d)
	if err := s.repo.Create(ctx, sl); err != nil {
		return nil, err
	}
	sl.Category = cat
	return sl, nil
}

// Update categoryID 为 nil 时保留原分类
func (s *SliderService) Update(ctx context.Context, id string, categoryID *string, in DisplayInput) (*slider.CategorySlider, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("Slider ID is required")
	}
	sl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if categoryID != nil && *categoryID != sl.CategoryID {
		cat, err := s.categories.GetByID(ctx, *categoryID)
		if err != nil {
			return nil, err
		}
		sl.CategoryID = cat.ID
		sl.Category = cat
	}
	d, err := in.apply(display{
		title: sl.Title, description: sl.Description, imageURL: sl.ImageURL,
		linkURL: sl.LinkURL, order: sl.SortOrder, isActive: sl.IsActive,
	})
	if err != nil {
		return nil, err
	}
	fillSlider(sl, d)
	if err := s.repo.Update(ctx, sl); err != nil {
		return nil, err
	}
	return sl, nil
}

func (s *SliderService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("Slider ID is required")
	}
	return s.repo.Delete(ctx, id)
}

func fillSlider(sl *slider.CategorySlider, d display) {
	sl.Title = d.title
	sl.Description = d.description
	sl.ImageURL = d.imageURL
	sl.LinkURL = d.linkURL
	sl.SortOrder = d.order
	sl.IsActive = d.isActive
}
