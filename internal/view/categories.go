package view

import (
	"context"
	"errors"
	"strings"
	"time"

	"pocketledger/internal/domain"
	"pocketledger/internal/finance"
)

var ErrBlankCategoryName = errors.New("category name cannot be blank")

// CategoriesView manages the category list: saves overwrite the whole
// record, deletes leave referencing transactions untouched.
type CategoriesView struct {
	repo *finance.Repository
	uid  string

	now func() int64
}

func NewCategoriesView(repo *finance.Repository, uid string) *CategoriesView {
	return &CategoriesView{
		repo: repo,
		uid:  uid,
		now:  func() int64 { return time.Now().UnixMilli() },
	}
}

func (v *CategoriesView) Observe(ctx context.Context) *finance.Stream[domain.Category] {
	return v.repo.ObserveCategories(ctx, v.uid)
}

func (v *CategoriesView) Save(ctx context.Context, c domain.Category) (string, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return "", ErrBlankCategoryName
	}
	if c.ColorHex == "" {
		c.ColorHex = domain.DefaultColorHex
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = v.now()
	}
	return v.repo.UpsertCategory(ctx, v.uid, c)
}

func (v *CategoriesView) Delete(ctx context.Context, categoryID string) error {
	return v.repo.DeleteCategory(ctx, v.uid, categoryID)
}
