package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/interfaces/http/dto"
	"github.com/catalogsync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func serveBase(handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.POST("/test", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}

	w := serveBase(func(c *gin.Context) { h.Success(c, map[string]string{"key": "value"}) }, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)

	w = serveBase(func(c *gin.Context) { h.Created(c, map[string]string{"id": "123"}) }, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)

	w = serveBase(func(c *gin.Context) { h.NoContent(c) }, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	tests := []struct {
		name         string
		method       func(*BaseHandler, *gin.Context)
		expectedCode int
		expectedErr  string
	}{
		{"BadRequest", func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "bad") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"NotFound", func(h *BaseHandler, c *gin.Context) { h.NotFound(c, "missing") }, http.StatusNotFound, dto.ErrCodeNotFound},
		{"InternalError", func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "boom") }, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := serveBase(func(c *gin.Context) { tt.method(h, c) }, "")

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"session not found", shared.NewDomainError("SESSION_NOT_FOUND", "gone"), http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"row not loaded", shared.NewDomainError("ROW_NOT_LOADED", "not loaded"), http.StatusConflict, "ROW_NOT_LOADED"},
		{"nothing selected", shared.NewDomainError("NOTHING_SELECTED", "empty"), http.StatusUnprocessableEntity, "NOTHING_SELECTED"},
		{"storefront auth", shared.NewDomainError("STOREFRONT_AUTH_FAILED", "denied"), http.StatusBadGateway, "STOREFRONT_AUTH_FAILED"},
		{"wrapped domain error", fmt.Errorf("push: %w", shared.NewDomainError("STOREFRONT_RATE_LIMITED", "slow down")), http.StatusTooManyRequests, "STOREFRONT_RATE_LIMITED"},
		{"shared not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"plain error", errors.New("database unreachable"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := serveBase(func(c *gin.Context) { h.HandleError(c, tt.err) }, "")

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}

	t.Run("plain errors do not leak", func(t *testing.T) {
		h := &BaseHandler{}
		w := serveBase(func(c *gin.Context) { h.HandleError(c, errors.New("password=hunter2")) }, "")
		assert.NotContains(t, w.Body.String(), "hunter2")
	})
}

func TestBaseHandlerBind(t *testing.T) {
	type request struct {
		Name string `json:"name" binding:"required"`
	}
	h := &BaseHandler{}
	handler := func(c *gin.Context) {
		var req request
		if !h.bind(c, &req) {
			return
		}
		h.Success(c, req)
	}

	t.Run("valid", func(t *testing.T) {
		w := serveBase(handler, `{"name":"grid"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing field", func(t *testing.T) {
		w := serveBase(handler, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "name", resp.Error.Details[0].Field)
	})

	t.Run("malformed", func(t *testing.T) {
		w := serveBase(handler, `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})

	t.Run("too large", func(t *testing.T) {
		router := gin.New()
		router.Use(middleware.BodyLimit(16))
		router.POST("/test", handler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(`{"name":"`+strings.Repeat("x", 64)+`"}`))
		req.ContentLength = -1
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
