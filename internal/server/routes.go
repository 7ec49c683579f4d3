package server

import (
	"hamono/internal/config"
	"hamono/internal/handler"
	"hamono/internal/middleware"
	"hamono/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	Me            *handler.MeHandler
	Address       *handler.AddressHandler
	Product       *handler.ProductHandler
	Category      *handler.CategoryHandler
	Cart          *handler.CartHandler
	Order         *handler.OrderHandler
	AdminProduct  *handler.AdminProductHandler
	AdminCategory *handler.AdminCategoryHandler
	AdminOrder    *handler.AdminOrderHandler
	AdminUser     *handler.AdminUserHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	// 公開API
	h.Product.RegisterRoutes(e)
	h.Category.RegisterRoutes(e)

	// 認証
	h.Auth.RegisterRoutes(e, userRepo)

	// ログイン必須
	h.Me.RegisterRoutes(e, cfg, userRepo)
	h.Address.RegisterRoutes(e, cfg, userRepo)
	h.Cart.RegisterRoutes(e, cfg, userRepo)
	h.Order.RegisterRoutes(e, cfg, userRepo)

	// 管理API
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	h.AdminProduct.RegisterRoutes(admin)
	h.AdminCategory.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)
	h.AdminUser.RegisterRoutes(admin)
}
