package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/catalogsync/backend/internal/infrastructure/cache"
	"github.com/catalogsync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}
func (brokenStore) IsProcessed(context.Context, string) (bool, error) { return false, nil }
func (brokenStore) Forget(context.Context, string) error              { return nil }
func (brokenStore) Close() error                                      { return nil }

func TestIdempotency(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	calls := 0
	status := http.StatusOK
	router := gin.New()
	router.Use(RequestID())
	router.POST("/sessions/:id/actions/push", Idempotency(store, time.Minute), func(c *gin.Context) {
		calls++
		c.Status(status)
	})

	send := func(path, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if key != "" {
			req.Header.Set(HeaderIdempotencyKey, key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("without a key every request runs", func(t *testing.T) {
		calls = 0
		send("/sessions/s1/actions/push", "")
		send("/sessions/s1/actions/push", "")
		assert.Equal(t, 2, calls)
	})

	t.Run("a replayed key is rejected", func(t *testing.T) {
		calls = 0
		assert.Equal(t, http.StatusOK, send("/sessions/s1/actions/push", "k1").Code)

		w := send("/sessions/s1/actions/push", "k1")
		assert.Equal(t, http.StatusConflict, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeConflict, resp.Error.Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("keys are scoped to the path", func(t *testing.T) {
		calls = 0
		assert.Equal(t, http.StatusOK, send("/sessions/s2/actions/push", "k1").Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("a failed request releases its key", func(t *testing.T) {
		calls = 0
		status = http.StatusUnprocessableEntity
		send("/sessions/s1/actions/push", "k2")
		status = http.StatusOK
		assert.Equal(t, http.StatusOK, send("/sessions/s1/actions/push", "k2").Code)
		assert.Equal(t, 2, calls)
	})

	t.Run("oversized key", func(t *testing.T) {
		w := send("/sessions/s1/actions/push", strings.Repeat("k", MaxRequestIDLength+1))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIdempotency_StoreDown(t *testing.T) {
	router := gin.New()
	router.POST("/push", Idempotency(brokenStore{}, 0), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/push", nil)
	req.Header.Set(HeaderIdempotencyKey, "k1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
