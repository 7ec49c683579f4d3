package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"hamono/internal/catalog"
	"hamono/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func knifeFixtures() []model.Product {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.Product{
		{ID: 1, Name: "三徳包丁", Brand: "貝印", Price: 12000, ProductType: model.ProductTypeSantoku, Material: model.MaterialStainless, IsActive: true, CreatedAt: base},
		{ID: 2, Name: "牛刀", Brand: "藤次郎", Price: 18000, ProductType: model.ProductTypeChefKnife, Material: model.MaterialDamascus, IsActive: true, CreatedAt: base.Add(time.Hour)},
		{ID: 3, Name: "ペティナイフ", Brand: "貝印", Price: 6000, ProductType: model.ProductTypePettyKnife, Material: model.MaterialStainless, IsActive: true, CreatedAt: base.Add(2 * time.Hour)},
	}
}

func newProductUC(products *MockProductRepository, inventory *MockInventoryRepository, audit *MockAuditLogRepository) *ProductUsecase {
	cache := catalog.NewCache(products, 100, nil)
	return NewProductUsecase(products, inventory, audit, cache, nil, nil)
}

func TestProductUsecase_ListPublicProducts_FilterAndSort(t *testing.T) {
	ctx := context.Background()

	products := new(MockProductRepository)
	inventory := new(MockInventoryRepository)
	audit := new(MockAuditLogRepository)

	fixtures := knifeFixtures()
	products.On("FetchAll", mock.Anything, int64(0), 100).Return(fixtures, int64(len(fixtures)), nil)

	u := newProductUC(products, inventory, audit)

	out, err := u.ListPublicProducts(ctx, ListProductsInput{
		Page:  1,
		Limit: 20,
		Criteria: catalog.Criteria{
			Brands: catalog.NewStringSet("貝印"),
		},
		Sort: catalog.SortByPrice,
		Dir:  catalog.Ascending,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	assert.Len(t, out.Items, 2)

	// 価格昇順
	assert.Equal(t, int64(3), out.Items[0].ID)
	assert.Equal(t, int64(1), out.Items[1].ID)

	// 共有用のクエリ文字列が付く
	assert.Contains(t, out.Query, "brands=")
}

func TestProductUsecase_ListPublicProducts_Pagination(t *testing.T) {
	ctx := context.Background()

	products := new(MockProductRepository)
	inventory := new(MockInventoryRepository)
	audit := new(MockAuditLogRepository)

	fixtures := knifeFixtures()
	products.On("FetchAll", mock.Anything, int64(0), 100).Return(fixtures, int64(len(fixtures)), nil)

	u := newProductUC(products, inventory, audit)

	out, err := u.ListPublicProducts(ctx, ListProductsInput{
		Page:  2,
		Limit: 2,
		Sort:  catalog.SortByCreatedAt,
		Dir:   catalog.Descending,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), out.Total)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(1), out.Items[0].ID)
}

// 取得失敗時は503。次の呼び出しで取り直す
func TestProductUsecase_ListPublicProducts_CatalogUnavailable(t *testing.T) {
	ctx := context.Background()

	products := new(MockProductRepository)
	inventory := new(MockInventoryRepository)
	audit := new(MockAuditLogRepository)

	products.On("FetchAll", mock.Anything, int64(0), 100).Return(nil, int64(0), assert.AnError).Once()

	u := newProductUC(products, inventory, audit)

	_, err := u.ListPublicProducts(ctx, ListProductsInput{Page: 1, Limit: 20})
	assertStatus(t, err, http.StatusServiceUnavailable)

	//失敗後は無効化されているので、次回は再取得して成功する
	fixtures := knifeFixtures()
	products.On("FetchAll", mock.Anything, int64(0), 100).Return(fixtures, int64(len(fixtures)), nil).Once()

	out, err := u.ListPublicProducts(ctx, ListProductsInput{Page: 1, Limit: 20})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), out.Total)

	products.AssertExpectations(t)
}

// カタログが取れないときはデフォルトのファセットに落とす
func TestProductUsecase_GetFacets_FallbackToDefaults(t *testing.T) {
	ctx := context.Background()

	products := new(MockProductRepository)
	inventory := new(MockInventoryRepository)
	audit := new(MockAuditLogRepository)

	products.On("FetchAll", mock.Anything, int64(0), 100).Return(nil, int64(0), assert.AnError)
	products.On("Brands", mock.Anything).Return([]string{"貝印", "藤次郎"}, nil)

	u := newProductUC(products, inventory, audit)

	f, err := u.GetFacets(ctx)
	assert.NoError(t, err)

	// ブランドだけはDBから差し替わる
	assert.Len(t, f.Brands, 2)
	// 分類はデフォルト選択肢が入る
	assert.NotEmpty(t, f.ProductTypes)
}

func TestProductUsecase_GetFacets_FromSnapshot(t *testing.T) {
	ctx := context.Background()

	products := new(MockProductRepository)
	inventory := new(MockInventoryRepository)
	audit := new(MockAuditLogRepository)

	fixtures := knifeFixtures()
	products.On("FetchAll", mock.Anything, int64(0), 100).Return(fixtures, int64(len(fixtures)), nil)

	u := newProductUC(products, inventory, audit)

	f, err := u.GetFacets(ctx)
	assert.NoError(t, err)
	assert.Len(t, f.Brands, 2)

	products.AssertNotCalled(t, "Brands", mock.Anything)
}

func TestProductUsecase_AdminCreateProduct_InvalidClassification(t *testing.T) {
	ctx := context.Background()

	products := new(MockProductRepository)
	inventory := new(MockInventoryRepository)
	audit := new(MockAuditLogRepository)

	u := newProductUC(products, inventory, audit)

	_, err := u.AdminCreateProduct(ctx, 1, AdminProductInput{
		Slug:        "broken",
		SKU:         "SKU-1",
		Name:        "壊れた分類",
		Price:       1000,
		CategoryID:  1,
		ProductType: "katana", //カタログに無い種類
	})
	assertStatus(t, err, http.StatusBadRequest)

	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 在庫更新は調整履歴と監査ログの両方を残す
func TestProductUsecase_AdminUpdateInventory(t *testing.T) {
	ctx := context.Background()

	products := new(MockProductRepository)
	inventory := new(MockInventoryRepository)
	audit := new(MockAuditLogRepository)

	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, Stock: 5, IsActive: true}, nil)
	inventory.On("SetStock", mock.Anything, int64(100), int64(12)).Return(nil)

	inventory.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.ProductID == 100 && a.AdminUserID == 9 && a.Delta == 7 && a.Reason == "入荷"
	})).Return(nil)

	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 9 && l.Action == model.AuditActionUpdateStock &&
			l.ResourceID == 100 && l.BeforeJSON == `{"stock":5}` && l.AfterJSON == `{"stock":12}`
	})).Return(nil)

	u := newProductUC(products, inventory, audit)

	err := u.AdminUpdateInventory(ctx, 9, 100, 12, "入荷")
	assert.NoError(t, err)

	inventory.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestProductUsecase_GetProductDetail_InactiveIsNotFound(t *testing.T) {
	ctx := context.Background()

	products := new(MockProductRepository)
	inventory := new(MockInventoryRepository)
	audit := new(MockAuditLogRepository)

	products.On("FindByID", mock.Anything, int64(200)).Return(model.Product{ID: 200, IsActive: false}, nil)

	u := newProductUC(products, inventory, audit)

	_, err := u.GetProductDetail(ctx, 200)
	assertStatus(t, err, http.StatusNotFound)
}
