package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/logger"
	"github.com/velux/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets clients retry a non-idempotent POST safely
const IdempotencyKeyHeader = "Idempotency-Key"

// maxIdempotencyKeyLength bounds client supplied keys
const maxIdempotencyKeyLength = 128

// Idempotency reserves the request's Idempotency-Key before the handler
// runs. A key already reserved by the same caller answers 409. Requests
// that end with a status of 400 or above release the key so the client can
// retry. Requests without the header pass through untouched. Keys are
// scoped to the authenticated user, so it must run after JWTAuthMiddleware.
func Idempotency(store shared.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", getRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		scoped := GetJWTUserID(c) + ":" + c.FullPath() + ":" + key

		reserved, err := store.Reserve(ctx, scoped, shared.DefaultIdempotencyTTL)
		if err != nil {
			// fail open: a store outage must not block checkout
			logger.L(ctx).Error("Failed to reserve idempotency key", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed",
				getRequestID(c),
			))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(ctx, scoped); err != nil {
				logger.L(ctx).Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
