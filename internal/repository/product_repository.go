package repository

import (
	"context"
	"errors"

	"hamono/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品の永続化（保存・取得）だけを約束。
// FetchAll/Brandsはカタログキャッシュの取得元（catalog.Source）としても使う。
type ProductRepository interface {
	//公開商品をまとめて取得する。categoryID=0なら全カテゴリ。
	//limit件で打ち切り、全体件数も返す。
	FetchAll(ctx context.Context, categoryID int64, limit int) ([]model.Product, int64, error)

	//公開商品に存在するブランド名（重複なし）
	Brands(ctx context.Context) ([]string, error)

	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindBySlug(ctx context.Context, slug string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}

// 在庫の現在値と調整履歴の約束。
type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
