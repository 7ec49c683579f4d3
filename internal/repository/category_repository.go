package repository

import (
	"context"

	"hamono/internal/domain/model"
)

// カテゴリの永続化の約束。
type CategoryRepository interface {
	//sort_order順の一覧
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	FindBySlug(ctx context.Context, slug string) (model.Category, error)

	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error
}
