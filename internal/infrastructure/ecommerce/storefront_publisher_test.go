package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestStorefrontConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *StorefrontConfig
		wantErr error
	}{
		{"valid config", &StorefrontConfig{BaseURL: "https://store.example.com/api/", Token: "t"}, nil},
		{"missing base url", &StorefrontConfig{Token: "t"}, ErrStorefrontMissingBaseURL},
		{"relative base url", &StorefrontConfig{BaseURL: "/api", Token: "t"}, ErrStorefrontInvalidBaseURL},
		{"unsupported scheme", &StorefrontConfig{BaseURL: "ftp://store.example.com", Token: "t"}, ErrStorefrontInvalidBaseURL},
		{"missing token", &StorefrontConfig{BaseURL: "https://store.example.com"}, ErrStorefrontMissingToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("fills defaults and trims slash", func(t *testing.T) {
		cfg := NewStorefrontConfig(config.StorefrontConfig{BaseURL: "https://store.example.com/api/", Token: "t"})
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "https://store.example.com/api", cfg.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, 2.0, cfg.RateLimit)
		assert.Equal(t, 1, cfg.Burst)
	})
}

// ---------------------------------------------------------------------------
// Push Tests
// ---------------------------------------------------------------------------

func pushProducts() []catalog.Product {
	maxPrice := decimal.RequireFromString("24.99")
	return []catalog.Product{
		{
			SKU:        "SKU-1",
			Title:      "Widget",
			Brand:      "Acme",
			Price:      decimal.RequireFromString("19.5"),
			MaxPrice:   &maxPrice,
			Cost:       decimal.NewFromInt(8),
			Quantity:   3,
			UPC:        "012345678905",
			Visibility: catalog.VisibilityVisible,
		},
		{
			SKU:        "SKU-2",
			Title:      "Gadget",
			Vendor:     "Gadgets Inc",
			Price:      decimal.NewFromInt(5),
			Quantity:   1,
			Visibility: catalog.VisibilityHidden,
		},
	}
}

func newTestPublisher(t *testing.T, handler http.HandlerFunc) *StorefrontPublisher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewStorefrontPublisher(&StorefrontConfig{
		BaseURL:   srv.URL,
		Token:     "secret-token",
		RateLimit: 100,
		Burst:     10,
	}, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestStorefrontPublisher_Push(t *testing.T) {
	t.Run("sends one batch and reports success", func(t *testing.T) {
		var got storefrontPushRequest
		var headers http.Header
		p := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/products/push", r.URL.Path)
			headers = r.Header.Clone()
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"pushed":2,"skus":["SKU-1","SKU-2"],"message":"ok"}`))
		})

		ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-123")
		result, err := p.Push(ctx, pushProducts())
		require.NoError(t, err)

		assert.Equal(t, 2, result.Pushed)
		assert.Equal(t, []string{"SKU-1", "SKU-2"}, result.SKUs)
		assert.Equal(t, "Bearer secret-token", headers.Get("Authorization"))
		assert.Equal(t, "req-123", headers.Get("X-Request-ID"))

		require.Len(t, got.Products, 2)
		first := got.Products[0]
		assert.Equal(t, "19.50", first.Price)
		require.NotNil(t, first.CompareAtPrice)
		assert.Equal(t, "24.99", *first.CompareAtPrice)
		assert.Equal(t, "Acme", first.Vendor, "brand stands in for a missing vendor")
		assert.Equal(t, "012345678905", first.Barcode)
		assert.True(t, first.Published)

		second := got.Products[1]
		assert.Equal(t, "Gadgets Inc", second.Vendor)
		assert.Nil(t, second.CompareAtPrice)
		assert.False(t, second.Published)
	})

	t.Run("empty reply body still succeeds", func(t *testing.T) {
		p := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		result, err := p.Push(context.Background(), pushProducts())
		require.NoError(t, err)
		assert.Equal(t, 2, result.Pushed)
		assert.Equal(t, []string{"SKU-1", "SKU-2"}, result.SKUs)
	})

	t.Run("empty batch", func(t *testing.T) {
		p := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		_, err := p.Push(context.Background(), nil)
		assert.ErrorIs(t, err, catalog.ErrNothingToPush)
	})
}

func TestStorefrontPublisher_PushFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{"unauthorized", http.StatusUnauthorized, ``, "STOREFRONT_AUTH_FAILED", ""},
		{"rate limited", http.StatusTooManyRequests, ``, "STOREFRONT_RATE_LIMITED", ""},
		{"server error", http.StatusBadGateway, `oops`, "STOREFRONT_UNAVAILABLE", ""},
		{"rejected with reasons", http.StatusUnprocessableEntity, `{"errors":["SKU-2: price missing","SKU-9: unknown"]}`,
			"STOREFRONT_REJECTED", "Storefront rejected the push: SKU-2: price missing; SKU-9: unknown"},
		{"rejected with message", http.StatusBadRequest, `{"message":"batch too large"}`,
			"STOREFRONT_REJECTED", "Storefront rejected the push: batch too large"},
		{"rejected without body", http.StatusBadRequest, ``, "STOREFRONT_REJECTED", "Storefront rejected the push"},
		{"invalid json on success", http.StatusOK, `<html>`, "STOREFRONT_INVALID_RESPONSE", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			result, err := p.Push(context.Background(), pushProducts())
			require.Error(t, err)
			assert.Nil(t, result)

			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.wantCode, de.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, de.Message)
			}
		})
	}

	t.Run("unreachable storefront", func(t *testing.T) {
		p, err := NewStorefrontPublisher(&StorefrontConfig{BaseURL: "http://127.0.0.1:1", Token: "t", Timeout: time.Second}, nil)
		require.NoError(t, err)

		_, err = p.Push(context.Background(), pushProducts())
		assert.ErrorIs(t, err, catalog.ErrStorefrontUnavailable)
	})

	t.Run("cancelled context while waiting for the limiter", func(t *testing.T) {
		p := newTestPublisher(t, func(w http.ResponseWriter, r *http.Request) {})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := p.Push(ctx, pushProducts())
		assert.ErrorIs(t, err, catalog.ErrStorefrontRateLimited)
	})
}

func TestDryRunPublisher(t *testing.T) {
	p := NewDryRunPublisher(nil)

	result, err := p.Push(context.Background(), pushProducts())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pushed)
	assert.Contains(t, result.Message, "dry run")

	_, err = p.Push(context.Background(), nil)
	assert.ErrorIs(t, err, catalog.ErrNothingToPush)
}
