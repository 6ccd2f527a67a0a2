package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxResponseSize bounds a storefront reply (1MB)
const maxResponseSize = 1 << 20

// StorefrontPublisher pushes product batches to the storefront API. One
// push is one POST; the storefront accepts or rejects the batch whole.
type StorefrontPublisher struct {
	config     *StorefrontConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

var _ catalog.StorefrontPublisher = (*StorefrontPublisher)(nil)

// NewStorefrontPublisher creates a publisher with the given configuration
func NewStorefrontPublisher(cfg *StorefrontConfig, log *zap.Logger) (*StorefrontPublisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &StorefrontPublisher{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		logger:     log.Named("storefront"),
	}, nil
}

// Push sends the products in one request
func (p *StorefrontPublisher) Push(ctx context.Context, products []catalog.Product) (result *catalog.PushResult, err error) {
	if len(products) == 0 {
		return nil, catalog.ErrNothingToPush
	}

	ctx, span := telemetry.StartSpan(ctx, "storefront.push",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrRows, len(products)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	payload := storefrontPushRequest{Products: make([]storefrontProduct, len(products))}
	for i := range products {
		payload.Products[i] = toStorefrontProduct(&products[i])
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("storefront: failed to encode push: %w", err)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrStorefrontRateLimited, err)
	}

	resp, err := p.doRequest(ctx, http.MethodPost, "/products/push", body)
	if err != nil {
		return nil, err
	}

	result = &catalog.PushResult{
		Pushed:  resp.Pushed,
		SKUs:    resp.SKUs,
		Message: resp.Message,
	}
	if result.Pushed == 0 {
		result.Pushed = len(products)
	}
	if len(result.SKUs) == 0 {
		result.SKUs = make([]string, len(products))
		for i := range products {
			result.SKUs[i] = products[i].SKU
		}
	}

	p.logger.Info("Pushed products to storefront", zap.Int("count", result.Pushed))
	return result, nil
}

func (p *StorefrontPublisher) doRequest(ctx context.Context, method, path string, body []byte) (*storefrontPushResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("storefront: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.Token)
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrStorefrontUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrStorefrontUnavailable, err)
	}

	var decoded storefrontPushResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, catalog.ErrStorefrontAuthFailed
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, catalog.ErrStorefrontRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", catalog.ErrStorefrontUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, rejection(decoded, resp.StatusCode)
	}

	if decodeErr != nil && len(bytes.TrimSpace(raw)) > 0 {
		return nil, fmt.Errorf("%w: %v", catalog.ErrStorefrontInvalidReply, decodeErr)
	}
	return &decoded, nil
}

// rejection turns a 4xx reply into a domain error carrying the storefront's reason
func rejection(resp storefrontPushResponse, status int) error {
	reasons := resp.Errors
	if len(reasons) == 0 && resp.Message != "" {
		reasons = []string{resp.Message}
	}
	if len(reasons) == 0 {
		return fmt.Errorf("%w: HTTP %d", catalog.ErrStorefrontRejected, status)
	}
	return shared.NewDomainError(catalog.ErrStorefrontRejected.Code,
		catalog.ErrStorefrontRejected.Message+": "+strings.Join(reasons, "; "))
}

// DryRunPublisher accepts every push without sending it. Used when no
// storefront is configured.
type DryRunPublisher struct {
	logger *zap.Logger
}

// NewDryRunPublisher creates a publisher that only logs
func NewDryRunPublisher(log *zap.Logger) *DryRunPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &DryRunPublisher{logger: log.Named("storefront")}
}

// Push logs the batch and reports it as pushed
func (p *DryRunPublisher) Push(_ context.Context, products []catalog.Product) (*catalog.PushResult, error) {
	if len(products) == 0 {
		return nil, catalog.ErrNothingToPush
	}
	skus := make([]string, len(products))
	for i := range products {
		skus[i] = products[i].SKU
	}
	p.logger.Warn("Storefront not configured, push not sent", zap.Strings("skus", skus))
	return &catalog.PushResult{Pushed: len(skus), SKUs: skus, Message: "dry run: storefront not configured"}, nil
}

var _ catalog.StorefrontPublisher = (*DryRunPublisher)(nil)
