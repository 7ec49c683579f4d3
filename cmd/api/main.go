package main

import (
	"context"
	"time"

	"hamono/internal/catalog"
	"hamono/internal/config"
	"hamono/internal/domain/model"
	"hamono/internal/handler"
	infracache "hamono/internal/infra/cache"
	"hamono/internal/infra/db"
	infraRepo "hamono/internal/infra/repository"
	"hamono/internal/server"
	"hamono/internal/usecase"
	"hamono/internal/validator"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const catalogRedisTTL = 5 * time.Minute

// usecase.CatalogInvalidatorに合わせるアダプタ
type redisInvalidator struct {
	src *infracache.CatalogRedisSource
}

func (r *redisInvalidator) InvalidateCatalog(ctx context.Context) {
	r.src.Invalidate(ctx)
}

func main() {
	// .envが無くても環境変数が揃っていればよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.GoEnv == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Address{},
		&model.AuditLog{},
		&model.InventoryAdjustment{},
	); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//カタログのスナップショット供給源。REDIS_ADDRがあればredisを挟む
	var catalogSource catalog.Source = productRepo
	var invalidator usecase.CatalogInvalidator
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		redisSource := infracache.NewCatalogRedisSource(productRepo, rdb, catalogRedisTTL, logger)
		catalogSource = redisSource
		invalidator = &redisInvalidator{src: redisSource}
	}
	catalogCache := catalog.NewCache(catalogSource, cfg.CatalogFetchLimit, logger)

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, authValidator)
	userUC := usecase.NewUserUsecase(userRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo, catalogCache, invalidator, logger)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, addressRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, rtRepo, auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(authUC, cfg),
		Me:            handler.NewMeHandler(userUC),
		Address:       handler.NewAddressHandler(addressUC),
		Product:       handler.NewProductHandler(productUC),
		Category:      handler.NewCategoryHandler(categoryUC),
		Cart:          handler.NewCartHandler(cartUC),
		Order:         handler.NewOrderHandler(orderUC),
		AdminProduct:  handler.NewAdminProductHandler(productUC),
		AdminCategory: handler.NewAdminCategoryHandler(categoryUC),
		AdminOrder:    handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:     handler.NewAdminUserHandler(adminUserUC),
	}

	//Server起動
	srv := server.New(cfg, logger)
	server.RegisterRoutes(srv.Echo(), cfg, userRepo, handlers)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := srv.Start(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
