package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/velux/backend/internal/application/cart"
	catalogapp "github.com/velux/backend/internal/application/catalog"
	favoriteapp "github.com/velux/backend/internal/application/favorite"
	identityapp "github.com/velux/backend/internal/application/identity"
	newsletterapp "github.com/velux/backend/internal/application/newsletter"
	orderapp "github.com/velux/backend/internal/application/order"
	reviewapp "github.com/velux/backend/internal/application/review"
	"github.com/velux/backend/internal/infrastructure/auth"
	"github.com/velux/backend/internal/infrastructure/cache"
	"github.com/velux/backend/internal/infrastructure/config"
	"github.com/velux/backend/internal/infrastructure/logger"
	"github.com/velux/backend/internal/infrastructure/persistence"
	"github.com/velux/backend/internal/infrastructure/storage"
	"github.com/velux/backend/internal/infrastructure/telemetry"
	"github.com/velux/backend/internal/interfaces/http/handler"
	"github.com/velux/backend/internal/interfaces/http/middleware"
	"github.com/velux/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// The OTLP log bridge has to exist before the logger so it can be teed in
	lp, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry)
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	logCfg := logger.ForEnvironment(cfg.App.Env)
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		logCfg.Output = cfg.Log.Output
	}
	var log *zap.Logger
	if lp.IsEnabled() {
		log = logger.New(logCfg, lp.Core(logger.ParseLevel(logCfg.Level)))
	} else {
		log = logger.New(logCfg)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Velux backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tp.EnableSpanProfiles()
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("dialect", db.Dialect()))

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, cfg.Database.SlowQueryThresh, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}
	blacklist := auth.NewTokenBlacklist(rdb)
	idempotency := cache.NewIdempotencyStore(rdb, log)
	defer func() { _ = idempotency.Close() }()

	images, objects := newStorage(ctx, cfg.Storage, log)

	metrics, err := telemetry.NewCartMetrics(mp.Meter("velux"))
	if err != nil {
		log.Fatal("Failed to create metrics", zap.Error(err))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	favoriteRepo := persistence.NewGormFavoriteRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	packRepo := persistence.NewGormPackRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	var google identityapp.GoogleTokenVerifier
	if len(cfg.Google.ClientIDs) > 0 {
		google = auth.NewGoogleVerifier(cfg.Google)
	}
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, google, identityapp.DefaultAuthServiceConfig(), log)

	cartResolver := cartapp.NewResolver(metrics)
	cartService := cartapp.NewService(
		persistence.NewGormCartTransactionScope(db.DB),
		cartResolver,
		images,
		metrics,
	)

	productService := catalogapp.NewProductService(productRepo, categoryRepo, images, objects)
	productService.SetConfig(catalogapp.ProductServiceConfig{
		KeyPrefix:       cfg.Storage.KeyPrefix,
		UploadURLExpiry: cfg.Storage.PresignExpiration,
	})
	categoryService := catalogapp.NewCategoryService(categoryRepo, images, objects)
	packService := catalogapp.NewPackService(packRepo, images, objects)
	reviewService := reviewapp.NewService(reviewRepo, productRepo)
	orderService := orderapp.NewService(persistence.NewGormOrderTransactionScope(db.DB), orderRepo, productRepo, cartResolver, images, metrics)
	favoriteService := favoriteapp.NewService(favoriteRepo, productRepo, images)
	newsletterService := newsletterapp.NewService(subscriptionRepo)

	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// HTTP
	var limiter, authLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
	}
	var authRateLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Stop()
		authRateLimit = middleware.RateLimit(authLimiter)
	}

	engine, err := router.NewEngine(router.EngineConfig{
		HTTP:        cfg.HTTP,
		Logger:      log,
		ServiceName: cfg.Telemetry.ServiceName,
		Tracing:     tp.IsEnabled(),
		Production:  cfg.App.IsProduction(),
		RateLimiter: limiter,
	})
	if err != nil {
		log.Fatal("Failed to configure HTTP engine", zap.Error(err))
	}

	jwtCfg := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	}
	router.Mount(engine, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Cart:       handler.NewCartHandler(cartService),
		Product:    handler.NewProductHandler(productService),
		Category:   handler.NewCategoryHandler(categoryService),
		Pack:       handler.NewPackHandler(packService),
		Review:     handler.NewReviewHandler(reviewService),
		Order:      handler.NewOrderHandler(orderService),
		Favorite:   handler.NewFavoriteHandler(favoriteService),
		Newsletter: handler.NewNewsletterHandler(newsletterService),
		Health:     handler.NewHealthHandler(checks),
	}, router.Guards{
		Authenticated: middleware.JWTAuthMiddlewareWithConfig(jwtCfg),
		OptionalAuth:  middleware.OptionalJWTAuthMiddleware(jwtCfg),
		AuthRateLimit: authRateLimit,
		Idempotency:   middleware.Idempotency(idempotency),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing traces", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing metrics", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx, log); err != nil {
		log.Warn("Error flushing logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newStorage returns the image URL resolver and, when object storage is
// enabled, the bucket used for uploads. Without storage, image keys are
// resolved against the public base URL and uploads are refused.
func newStorage(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (catalogapp.ImageURLResolver, catalogapp.ObjectStorage) {
	if !cfg.Enabled {
		log.Info("Object storage disabled")
		return storage.NewPublicURLResolver(cfg.PublicBaseURL), nil
	}

	s3, err := storage.NewS3ObjectStorage(&cfg,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Warn("Bucket check failed; uploads may fail", zap.String("bucket", s3.GetBucket()), zap.Error(err))
	}
	log.Info("Object storage ready", zap.String("bucket", s3.GetBucket()))
	return s3, s3
}
