package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/repository/mysql"
)

func TestCategory_CreateConflict(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()

	f.category(t, "Books")
	_, err := f.categories.Create(ctx, "Books", "again")
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Equal(t, "Category already exists", apperr.PublicMessage(err))

	// 大小写不同视为不同分类
	_, err = f.categories.Create(ctx, "books", "")
	require.NoError(t, err)

	_, err = f.categories.Create(ctx, "  ", "")
	assert.True(t, apperr.IsValidation(err))

	list, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCategory_Update(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()

	books := f.category(t, "Books")
	f.category(t, "Toys")

	got, err := f.categories.Update(ctx, books.ID, CategoryPatch{Description: ptr("paper")})
	require.NoError(t, err)
	assert.Equal(t, "Books", got.Name)
	assert.Equal(t, "paper", got.Description)

	_, err = f.categories.Update(ctx, books.ID, CategoryPatch{Name: ptr("Toys")})
	assert.True(t, apperr.IsConflict(err))

	got, err = f.categories.Update(ctx, books.ID, CategoryPatch{Name: ptr("Novels")})
	require.NoError(t, err)
	assert.Equal(t, "Novels", got.Name)

	_, err = f.categories.Update(ctx, "missing", CategoryPatch{Name: ptr("x")})
	assert.True(t, apperr.IsNotFound(err))
}

func TestCategory_DeleteReferenced(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()

	books := f.category(t, "Books")
	toys := f.category(t, "Toys")
	p := f.product(t, "B-1", "9.99", 1, "Books")

	err := f.categories.Delete(ctx, books.ID)
	assert.True(t, apperr.IsConflict(err))

	sliders := NewSliderService(mysql.NewCategorySliderRepository(f.db), mysql.NewCategoryRepository(f.db))
	_, err = sliders.Create(ctx, toys.ID, DisplayInput{Title: ptr("Toys"), ImageURL: ptr("/t.png")})
	require.NoError(t, err)
	assert.True(t, apperr.IsConflict(f.categories.Delete(ctx, toys.ID)))

	// 商品删除后分类可以删除
	require.NoError(t, f.catalog.Delete(ctx, p.ID))
	require.NoError(t, f.categories.Delete(ctx, books.ID))
	assert.True(t, apperr.IsNotFound(f.categories.Delete(ctx, books.ID)))
}
