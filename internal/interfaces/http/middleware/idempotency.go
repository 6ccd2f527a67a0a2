package middleware

import (
	"net/http"
	"time"

	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// HeaderIdempotencyKey lets a client retry a bulk action safely
	HeaderIdempotencyKey = "Idempotency-Key"

	// DefaultIdempotencyTTL is how long a used key blocks a replay
	DefaultIdempotencyTTL = 10 * time.Minute
)

// Idempotency rejects a request whose Idempotency-Key was already used on
// the same path. Requests without the header pass through. A key is
// released again when the handler answers with an error so the client can
// fix the cause and retry. Store failures never block the request.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return func(c *gin.Context) {
		header := c.GetHeader(HeaderIdempotencyKey)
		if header == "" || store == nil {
			c.Next()
			return
		}
		if len(header) > MaxRequestIDLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		key := c.Request.Method + " " + c.Request.URL.Path + " " + header
		isNew, err := store.MarkProcessed(ctx, key, ttl)
		if err != nil {
			logger.L(ctx).Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeConflict, "This request was already processed", GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Forget(ctx, key); err != nil {
				logger.L(ctx).Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
