package repository

import (
	"context"

	"hamono/internal/domain/model"
)

// 配送先住所の保存・取得の約束。
type AddressRepository interface {
	Create(ctx context.Context, address model.Address) (model.Address, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)
	FindByID(ctx context.Context, addressID int64) (model.Address, error)
	Update(ctx context.Context, address model.Address) error
	Delete(ctx context.Context, addressID int64) error

	//住所がそのユーザーのものかを確認
	IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error)

	//デフォルト住所の切り替え（他の住所のis_defaultは落とす）
	SetDefault(ctx context.Context, userID, addressID int64) error
}
