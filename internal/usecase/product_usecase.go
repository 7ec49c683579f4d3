package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"hamono/internal/catalog"
	"hamono/internal/domain/model"
	repo "hamono/internal/repository"
)

// 商品を書き換えたあとにカタログスナップショットを捨てさせる窓口。
// インメモリとredisの両方を無効化する実装をmainで組む。
type CatalogInvalidator interface {
	InvalidateCatalog(ctx context.Context)
}

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
	catalog       *catalog.Cache
	invalidator   CatalogInvalidator
	logger        *zap.Logger
}

// DI。invalidatorはnil可（redisなし構成）。
func NewProductUsecase(
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
	catalogCache *catalog.Cache,
	invalidator CatalogInvalidator,
	logger *zap.Logger,
) *ProductUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		catalog:       catalogCache,
		invalidator:   invalidator,
		logger:        logger,
	}
}

// GET /productsの入力。CriteriaはクエリからDecodeQueryで復元したもの。
type ListProductsInput struct {
	Page     int
	Limit    int
	Criteria catalog.Criteria
	Sort     catalog.SortField
	Dir      catalog.Direction
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`

	//現在の絞り込みを共有できる正規化済みクエリ文字列（空なら絞り込みなし）
	Query string `json:"query"`
}

// 公開商品の一覧。スナップショットをインメモリで絞り込み・並び替えてからページングする。
func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Criteria.Query) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	snapshot, err := u.catalog.Snapshot(ctx)
	if err != nil {
		//次のリクエストで取り直させてから503を返す（リトライはユーザー操作）
		u.catalog.Invalidate()
		return ProductListOutput{}, NewHTTPError(http.StatusServiceUnavailable, "catalog unavailable")
	}

	filtered := catalog.Apply(snapshot, in.Criteria, 0)
	sorted := catalog.SortProducts(filtered, in.Sort, in.Dir)

	total := int64(len(sorted))
	start := (in.Page - 1) * in.Limit
	if start > len(sorted) {
		start = len(sorted)
	}
	end := start + in.Limit
	if end > len(sorted) {
		end = len(sorted)
	}

	return ProductListOutput{
		Items: sorted[start:end],
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
		Query: catalog.EncodeQueryString(in.Criteria),
	}, nil
}

// ファセットの選択肢。カタログが取れないときはデフォルトに落とす（エラーにしない）。
func (u *ProductUsecase) GetFacets(ctx context.Context) (catalog.Facets, error) {
	snapshot, err := u.catalog.Snapshot(ctx)
	if err != nil {
		u.logger.Warn("facets falling back to defaults", zap.Error(err))
		f := catalog.DefaultFacets()

		//ブランドだけでもDBから取れれば差し替える
		if brands, berr := u.productRepo.Brands(ctx); berr == nil && len(brands) > 0 {
			opts := make([]catalog.Option, 0, len(brands))
			for _, b := range brands {
				opts = append(opts, catalog.Option{Label: b, Value: b})
			}
			f.Brands = opts
		}
		return f, nil
	}
	return catalog.ComputeFacets(snapshot), nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

// slugでの取得（商品詳細URLはslugを使う）
func (u *ProductUsecase) GetProductBySlug(ctx context.Context, slug string) (model.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	p, err := u.productRepo.FindBySlug(ctx, slug)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

type AdminProductInput struct {
	Slug           string
	SKU            string
	Name           string
	Description    string
	Price          int64
	CompareAtPrice *int64
	Stock          int64
	CategoryID     int64
	Brand          string
	Material       string
	ProductType    string
	HandleType     string
	IsNew          bool
	IsFeatured     bool
	IsOnSale       bool
	IsActive       bool
}

var validMaterials = map[string]bool{
	string(model.MaterialStainless): true,
	string(model.MaterialCarbon):    true,
	string(model.MaterialDamascus):  true,
	string(model.MaterialCeramic):   true,
	string(model.MaterialTitanium):  true,
}

var validProductTypes = map[string]bool{
	string(model.ProductTypeChefKnife):    true,
	string(model.ProductTypePettyKnife):   true,
	string(model.ProductTypeSantoku):      true,
	string(model.ProductTypeOutdoorKnife): true,
	string(model.ProductTypePocketKnife):  true,
	string(model.ProductTypeSharpener):    true,
	string(model.ProductTypeCuttingBoard): true,
	string(model.ProductTypeAccessory):    true,
}

var validHandleTypes = map[string]bool{
	string(model.HandleTypeFixed):     true,
	string(model.HandleTypeFolding):   true,
	string(model.HandleTypeMultiTool): true,
}

// 分類トークンはここで弾いて、壊れた値をカタログ側に入れない。
func validateClassification(in AdminProductInput) error {
	if in.CategoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "category_id required")
	}
	if !validProductTypes[in.ProductType] {
		return NewHTTPError(http.StatusBadRequest, "invalid product_type")
	}
	if in.Material != "" && !validMaterials[in.Material] {
		return NewHTTPError(http.StatusBadRequest, "invalid material")
	}
	if in.HandleType != "" && !validHandleTypes[in.HandleType] {
		return NewHTTPError(http.StatusBadRequest, "invalid handle_type")
	}
	return nil
}

func validateAdminProductInput(in AdminProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return NewHTTPError(http.StatusBadRequest, "slug required")
	}
	if strings.TrimSpace(in.SKU) == "" {
		return NewHTTPError(http.StatusBadRequest, "sku required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.CompareAtPrice != nil && *in.CompareAtPrice < 0 {
		return NewHTTPError(http.StatusBadRequest, "compare_at_price must be >= 0")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	return validateClassification(in)
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminProductInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateAdminProductInput(in); err != nil {
		return 0, err
	}

	now := time.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		Slug:           strings.TrimSpace(in.Slug),
		SKU:            strings.TrimSpace(in.SKU),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Price:          in.Price,
		CompareAtPrice: in.CompareAtPrice,
		Stock:          in.Stock,
		CategoryID:     in.CategoryID,
		Brand:          strings.TrimSpace(in.Brand),
		Material:       model.Material(in.Material),
		ProductType:    model.ProductType(in.ProductType),
		HandleType:     model.HandleType(in.HandleType),
		IsNew:          in.IsNew,
		IsFeatured:     in.IsFeatured,
		IsOnSale:       in.IsOnSale,
		IsActive:       in.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		// slug/sku unique違反もここに来る
		return 0, NewHTTPError(http.StatusConflict, "slug or sku already used")
	}

	u.invalidateCatalog(ctx)
	return p.ID, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminProductInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := validateAdminProductInput(in); err != nil {
		return err
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:             productID,
		Slug:           strings.TrimSpace(in.Slug),
		SKU:            strings.TrimSpace(in.SKU),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Price:          in.Price,
		CompareAtPrice: in.CompareAtPrice,
		CategoryID:     in.CategoryID,
		Brand:          strings.TrimSpace(in.Brand),
		Material:       model.Material(in.Material),
		ProductType:    model.ProductType(in.ProductType),
		HandleType:     model.HandleType(in.HandleType),
		IsNew:          in.IsNew,
		IsFeatured:     in.IsFeatured,
		IsOnSale:       in.IsOnSale,
		IsActive:       in.IsActive,
		UpdatedAt:      time.Now(),
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateCatalog(ctx)
	return nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateCatalog(ctx)
	return nil
}

// 在庫の現在値を更新し、調整履歴と監査ログを残す。
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	//変更前の在庫（before）
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	beforeJSON := fmt.Sprintf(`{"stock":%d}`, p.Stock)
	afterJSON := fmt.Sprintf(`{"stock":%d}`, newStock)

	if err := u.inventoryRepo.SetStock(ctx, productID, newStock); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	adj := model.InventoryAdjustment{
		ProductID:   productID,
		AdminUserID: adminUserID,
		Delta:       newStock - p.Stock,
		Reason:      strings.TrimSpace(reason),
		CreatedAt:   time.Now(),
	}
	if err := u.inventoryRepo.CreateAdjustment(ctx, adj); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateCatalog(ctx)
	return nil
}

func (u *ProductUsecase) invalidateCatalog(ctx context.Context) {
	u.catalog.Invalidate()
	if u.invalidator != nil {
		u.invalidator.InvalidateCatalog(ctx)
	}
}
