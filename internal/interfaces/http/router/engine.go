package router

import (
	"github.com/gin-gonic/gin"
	"github.com/velux/backend/internal/infrastructure/config"
	"github.com/velux/backend/internal/infrastructure/logger"
	"github.com/velux/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// EngineConfig holds what the global middleware chain needs
type EngineConfig struct {
	HTTP        config.HTTPConfig
	Logger      *zap.Logger
	ServiceName string
	Tracing     bool
	// Production turns on HSTS; TLS terminates in front of the service
	Production  bool
	// RateLimiter throttles every request by client IP; nil disables it
	RateLimiter *middleware.RateLimiter
}

// NewEngine builds a gin engine with the global middleware chain:
// request id, panic recovery, access log, tracing, security headers, CORS,
// body limit and rate limit, in that order.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.Production

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(cfg.Logger),
		logger.GinMiddleware(cfg.Logger),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.Tracing,
		}),
		middleware.SpanEnricher(),
		middleware.SecureWithConfig(security),
		middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)),
	)
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	return engine, nil
}
