package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORSWithConfig(DefaultCORSConfig()))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	t.Run("empty whitelist sets no CORS headers", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/test", map[string]string{"Origin": "http://malicious.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight answers 204", func(t *testing.T) {
		w := serve(router, http.MethodOptions, "/test", map[string]string{"Origin": "http://some-origin.com"})
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestCORSWithConfig(t *testing.T) {
	newRouter := func(cfg CORSConfig) *gin.Engine {
		router := gin.New()
		router.Use(CORSWithConfig(cfg))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("allows a listed origin", func(t *testing.T) {
		router := newRouter(CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000", "https://grid.example.com"},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           time.Hour,
		})

		w := serve(router, http.MethodGet, "/test", map[string]string{"Origin": "https://grid.example.com"})
		assert.Equal(t, "https://grid.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("ignores an unlisted origin", func(t *testing.T) {
		router := newRouter(CORSConfig{AllowOrigins: []string{"http://localhost:3000"}})
		w := serve(router, http.MethodGet, "/test", map[string]string{"Origin": "http://other.com"})
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard never sends credentials", func(t *testing.T) {
		router := newRouter(CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true})
		w := serve(router, http.MethodGet, "/test", map[string]string{"Origin": "http://any.com"})
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestCORSConfigFrom(t *testing.T) {
	cfg := CORSConfigFrom(config.HTTPConfig{CORSAllowOrigins: []string{"https://grid.example.com"}})
	assert.Equal(t, []string{"https://grid.example.com"}, cfg.AllowOrigins)
	assert.Equal(t, DefaultCORSConfig().AllowMethods, cfg.AllowMethods)
	assert.Contains(t, cfg.AllowHeaders, HeaderRequestID)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates a uuid", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/test", nil)
		id := w.Header().Get(HeaderRequestID)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps the caller id", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/test", map[string]string{HeaderRequestID: "req-123"})
		assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
		assert.Equal(t, "req-123", w.Body.String())
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		long := strings.Repeat("x", MaxRequestIDLength+1)
		w := serve(router, http.MethodGet, "/test", map[string]string{HeaderRequestID: long})
		assert.NotEqual(t, long, w.Header().Get(HeaderRequestID))
		assert.Len(t, w.Header().Get(HeaderRequestID), 36)
	})
}

func TestSecure(t *testing.T) {
	router := gin.New()
	router.Use(Secure())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := serve(router, http.MethodGet, "/test", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}
