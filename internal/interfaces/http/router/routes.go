package router

import (
	"github.com/gin-gonic/gin"
	"github.com/velux/backend/internal/interfaces/http/handler"
	"github.com/velux/backend/internal/interfaces/http/middleware"
)

// Handlers groups the HTTP handlers of the shop API
type Handlers struct {
	Auth       *handler.AuthHandler
	Cart       *handler.CartHandler
	Product    *handler.ProductHandler
	Category   *handler.CategoryHandler
	Pack       *handler.PackHandler
	Review     *handler.ReviewHandler
	Order      *handler.OrderHandler
	Favorite   *handler.FavoriteHandler
	Newsletter *handler.NewsletterHandler
	Health     *handler.HealthHandler
}

// Guards are the per-route middlewares. Nil guards are skipped, except
// Authenticated and OptionalAuth which are required.
type Guards struct {
	Authenticated gin.HandlerFunc
	OptionalAuth  gin.HandlerFunc
	// AuthRateLimit throttles the credential endpoints harder than the
	// global limiter
	AuthRateLimit gin.HandlerFunc
	Idempotency   gin.HandlerFunc
}

// ShopGroups returns the route groups of the shop API
func ShopGroups(h Handlers, g Guards) []RouteRegistrar {
	admin := []gin.HandlerFunc{g.Authenticated, middleware.RequireStaff()}
	with := func(pre []gin.HandlerFunc, last gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, pre...), last)
	}

	authGroup := NewDomainGroup("/auth")
	credentials := authGroup.Group("", g.AuthRateLimit)
	credentials.POST("/register", h.Auth.Register)
	credentials.POST("/token", h.Auth.Login)
	credentials.POST("/token/refresh", h.Auth.Refresh)
	credentials.POST("/google", h.Auth.GoogleLogin)
	account := authGroup.Group("", g.Authenticated)
	account.POST("/logout", h.Auth.Logout)
	account.GET("/me", h.Auth.Me)
	account.PATCH("/me", h.Auth.UpdateMe)

	cartGroup := NewDomainGroup("/cart", g.OptionalAuth)
	cartGroup.GET("", h.Cart.Get)
	cartGroup.POST("", h.Cart.AddItem)
	cartGroup.PUT("", h.Cart.UpdateItem)
	cartGroup.DELETE("", h.Cart.RemoveItem)
	cartGroup.DELETE("/clear", h.Cart.Clear)

	products := NewDomainGroup("/products")
	products.GET("", g.OptionalAuth, h.Product.List)
	products.GET("/:id", g.OptionalAuth, h.Product.GetByID)
	products.POST("", with(admin, h.Product.Create)...)
	products.PUT("/:id", with(admin, h.Product.Update)...)
	products.DELETE("/:id", with(admin, h.Product.Delete)...)
	products.POST("/:id/images/upload-url", with(admin, h.Product.CreateUploadURL)...)

	categories := NewDomainGroup("/categories")
	categories.GET("", h.Category.List)
	categories.GET("/:id", h.Category.GetByID)
	categories.POST("", with(admin, h.Category.Create)...)
	categories.PUT("/:id", with(admin, h.Category.Update)...)
	categories.DELETE("/:id", with(admin, h.Category.Delete)...)

	packs := NewDomainGroup("/packs")
	packs.GET("", g.OptionalAuth, h.Pack.List)
	packs.GET("/:id", g.OptionalAuth, h.Pack.GetByID)
	packs.POST("", with(admin, h.Pack.Create)...)
	packs.PUT("/:id", with(admin, h.Pack.Update)...)
	packs.DELETE("/:id", with(admin, h.Pack.Delete)...)

	reviews := NewDomainGroup("/reviews")
	reviews.GET("", g.OptionalAuth, h.Review.List)
	reviews.GET("/:id", g.OptionalAuth, h.Review.GetByID)
	reviews.POST("", g.Authenticated, h.Review.Create)
	reviews.PUT("/:id", g.Authenticated, h.Review.Update)
	reviews.DELETE("/:id", g.Authenticated, h.Review.Delete)

	orders := NewDomainGroup("/orders", g.Authenticated)
	orders.POST("", g.Idempotency, h.Order.Create)
	orders.POST("/checkout", g.Idempotency, h.Order.Checkout)
	orders.GET("", h.Order.List)
	orders.GET("/:id", h.Order.GetByID)
	orders.GET("/:id/items", h.Order.Items)

	favorites := NewDomainGroup("/favorites", g.Authenticated)
	favorites.GET("", h.Favorite.List)
	favorites.POST("", h.Favorite.Add)
	favorites.DELETE("/:product_id", h.Favorite.Remove)

	newsletter := NewDomainGroup("/newsletter")
	newsletter.POST("/subscriptions", g.AuthRateLimit, h.Newsletter.Subscribe)
	newsletter.GET("/subscriptions", with(admin, h.Newsletter.List)...)
	newsletter.DELETE("/subscriptions/:id", with(admin, h.Newsletter.Delete)...)

	health := NewDomainGroup("/health")
	health.GET("", h.Health.Check)

	return []RouteRegistrar{authGroup, cartGroup, products, categories, packs, reviews, orders, favorites, newsletter, health}
}

// Mount registers the shop API on engine. /health is served both at the
// root and under the API prefix.
func Mount(engine *gin.Engine, h Handlers, g Guards) {
	engine.GET("/health", h.Health.Check)
	NewRouter(engine).Register(ShopGroups(h, g)...).Setup()
}
