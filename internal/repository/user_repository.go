package repository

import (
	"context"

	"hamono/internal/domain/model"
)

// ユーザーの保存・取得の約束。
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// アクティブ/ロール/最終ログインなどの更新
	Update(ctx context.Context, user *model.User) error

	//token_versionを+1して既存トークンを無効にする
	IncrementTokenVersion(ctx context.Context, userID int64) error

	//管理者用の一覧
	List(ctx context.Context, page int, limit int) ([]model.User, int64, error)
}
