package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"hamono/internal/domain/model"
	repo "hamono/internal/repository"
)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
}

func NewCategoryUsecase(categoryRepo repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo}
}

func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	categories, err := u.categoryRepo.List(ctx)
	if err != nil {
		return []model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return categories, nil
}

type AdminCategoryInput struct {
	Name      string
	Slug      string
	SortOrder int
}

func (u *CategoryUsecase) AdminCreateCategory(ctx context.Context, adminUserID int64, in AdminCategoryInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	slug := strings.TrimSpace(in.Slug)
	if name == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if slug == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "slug required")
	}

	//slugは一意
	if _, err := u.categoryRepo.FindBySlug(ctx, slug); err == nil {
		return 0, NewHTTPError(http.StatusConflict, "slug already used")
	} else if err != repo.ErrNotFound {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	c, err := u.categoryRepo.Create(ctx, model.Category{
		Name:      name,
		Slug:      slug,
		SortOrder: in.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c.ID, nil
}

func (u *CategoryUsecase) AdminUpdateCategory(ctx context.Context, adminUserID int64, categoryID int64, in AdminCategoryInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category id")
	}
	name := strings.TrimSpace(in.Name)
	slug := strings.TrimSpace(in.Slug)
	if name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if slug == "" {
		return NewHTTPError(http.StatusBadRequest, "slug required")
	}

	//slugの一意チェック（自分自身は除く）
	existing, err := u.categoryRepo.FindBySlug(ctx, slug)
	if err == nil && existing.ID != categoryID {
		return NewHTTPError(http.StatusConflict, "slug already used")
	}
	if err != nil && err != repo.ErrNotFound {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	err = u.categoryRepo.Update(ctx, model.Category{
		ID:        categoryID,
		Name:      name,
		Slug:      slug,
		SortOrder: in.SortOrder,
		UpdatedAt: time.Now(),
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CategoryUsecase) AdminDeleteCategory(ctx context.Context, adminUserID int64, categoryID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	err := u.categoryRepo.Delete(ctx, categoryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
