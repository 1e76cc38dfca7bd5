package handler_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	cartapp "github.com/velux/backend/internal/application/cart"
	catalogapp "github.com/velux/backend/internal/application/catalog"
	favoriteapp "github.com/velux/backend/internal/application/favorite"
	identityapp "github.com/velux/backend/internal/application/identity"
	newsletterapp "github.com/velux/backend/internal/application/newsletter"
	orderapp "github.com/velux/backend/internal/application/order"
	reviewapp "github.com/velux/backend/internal/application/review"
	"github.com/velux/backend/internal/domain/identity"
	"github.com/velux/backend/internal/infrastructure/auth"
	"github.com/velux/backend/internal/infrastructure/cache"
	"github.com/velux/backend/internal/infrastructure/config"
	"github.com/velux/backend/internal/infrastructure/persistence"
	"github.com/velux/backend/internal/interfaces/http/handler"
	"github.com/velux/backend/internal/interfaces/http/middleware"
	"github.com/velux/backend/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeImages struct{}

func (fakeImages) ImageURL(_ context.Context, key string) string {
	return "https://cdn.example.com/" + key
}

// testServer wires the real services over an in-memory sqlite database
type testServer struct {
	db     *gorm.DB
	jwt    *auth.JWTService
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-at-least-32-chars",
		RefreshSecret:          "handler-test-refresh-secret-32-chars",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "velux-test",
		MaxRefreshCount:        10,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })

	products := persistence.NewGormProductRepository(db)
	categories := persistence.NewGormCategoryRepository(db)
	images := fakeImages{}

	authH := handler.NewAuthHandler(identityapp.NewAuthService(
		persistence.NewGormUserRepository(db), jwtSvc, blacklist, nil,
		identityapp.DefaultAuthServiceConfig(), zap.NewNop()))
	cartH := handler.NewCartHandler(cartapp.NewService(
		persistence.NewGormCartTransactionScope(db), nil, images, nil))
	productH := handler.NewProductHandler(catalogapp.NewProductService(products, categories, images, nil))
	categoryH := handler.NewCategoryHandler(catalogapp.NewCategoryService(categories, images, nil))
	reviewH := handler.NewReviewHandler(reviewapp.NewService(persistence.NewGormReviewRepository(db), products))
	orderH := handler.NewOrderHandler(orderapp.NewService(
		persistence.NewGormOrderTransactionScope(db), persistence.NewGormOrderRepository(db), products, nil, images, nil))
	favoriteH := handler.NewFavoriteHandler(favoriteapp.NewService(persistence.NewGormFavoriteRepository(db), products, images))
	packH := handler.NewPackHandler(catalogapp.NewPackService(persistence.NewGormPackRepository(db), images, nil))
	newsletterH := handler.NewNewsletterHandler(newsletterapp.NewService(persistence.NewGormSubscriptionRepository(db)))
	healthH := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	jwtCfg := middleware.DefaultJWTConfig(jwtSvc)
	jwtCfg.TokenBlacklist = blacklist
	required := middleware.JWTAuthMiddlewareWithConfig(jwtCfg)
	optional := middleware.OptionalJWTAuthMiddleware(jwtCfg)
	staff := middleware.RequireStaff()

	middleware.SetupValidator()
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/health", healthH.Check)

	api := r.Group("/api/v1")
	a := api.Group("/auth")
	a.POST("/register", authH.Register)
	a.POST("/token", authH.Login)
	a.POST("/token/refresh", authH.Refresh)
	a.POST("/google", authH.GoogleLogin)
	a.POST("/logout", required, authH.Logout)
	a.GET("/me", required, authH.Me)
	a.PATCH("/me", required, authH.UpdateMe)

	c := api.Group("/cart", optional)
	c.GET("", cartH.Get)
	c.POST("", cartH.AddItem)
	c.PUT("", cartH.UpdateItem)
	c.DELETE("", cartH.RemoveItem)
	c.DELETE("/clear", cartH.Clear)

	api.GET("/products", optional, productH.List)
	api.GET("/products/:id", optional, productH.GetByID)
	api.POST("/products", required, staff, productH.Create)
	api.PUT("/products/:id", required, staff, productH.Update)
	api.DELETE("/products/:id", required, staff, productH.Delete)
	api.POST("/products/:id/images/upload-url", required, staff, productH.CreateUploadURL)

	api.GET("/categories", categoryH.List)
	api.GET("/categories/:id", categoryH.GetByID)
	api.POST("/categories", required, staff, categoryH.Create)
	api.PUT("/categories/:id", required, staff, categoryH.Update)
	api.DELETE("/categories/:id", required, staff, categoryH.Delete)

	api.GET("/packs", optional, packH.List)
	api.GET("/packs/:id", optional, packH.GetByID)
	api.POST("/packs", required, staff, packH.Create)
	api.PUT("/packs/:id", required, staff, packH.Update)
	api.DELETE("/packs/:id", required, staff, packH.Delete)

	api.POST("/newsletter/subscriptions", newsletterH.Subscribe)
	api.GET("/newsletter/subscriptions", required, staff, newsletterH.List)
	api.DELETE("/newsletter/subscriptions/:id", required, staff, newsletterH.Delete)

	api.GET("/reviews", optional, reviewH.List)
	api.GET("/reviews/:id", optional, reviewH.GetByID)
	api.POST("/reviews", required, reviewH.Create)
	api.PUT("/reviews/:id", required, reviewH.Update)
	api.DELETE("/reviews/:id", required, reviewH.Delete)

	o := api.Group("/orders", required)
	o.POST("", middleware.Idempotency(idempotency), orderH.Create)
	o.POST("/checkout", middleware.Idempotency(idempotency), orderH.Checkout)
	o.GET("", orderH.List)
	o.GET("/:id", orderH.GetByID)
	o.GET("/:id/items", orderH.Items)

	f := api.Group("/favorites", required)
	f.GET("", favoriteH.List)
	f.POST("", favoriteH.Add)
	f.DELETE("/:product_id", favoriteH.Remove)

	return &testServer{db: db, jwt: jwtSvc, engine: r}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.PerformRequest(t, s.engine, method, path, body, headers)
}

// login seeds a user and returns its bearer header
func (s *testServer) login(t *testing.T, username string, staff bool) (*identity.User, map[string]string) {
	t.Helper()
	u := testutil.SeedUser(t, s.db, username, staff)
	pair, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   u.ID,
		Username: u.Username,
		IsStaff:  u.IsStaff,
	})
	require.NoError(t, err)
	return u, bearer(pair.AccessToken)
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func withSessionKey(headers map[string]string, key string) map[string]string {
	out := map[string]string{middleware.SessionKeyHeader: key}
	for k, v := range headers {
		out[k] = v
	}
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
}
