package catalog

import (
	"context"

	"github.com/catalogsync/backend/internal/domain/shared"
)

// Storefront push failures
var (
	ErrNothingToPush          = shared.NewDomainError("NOTHING_TO_PUSH", "No products selected to push")
	ErrStorefrontUnavailable  = shared.NewDomainError("STOREFRONT_UNAVAILABLE", "Storefront is unavailable")
	ErrStorefrontAuthFailed   = shared.NewDomainError("STOREFRONT_AUTH_FAILED", "Storefront rejected the credentials")
	ErrStorefrontRateLimited  = shared.NewDomainError("STOREFRONT_RATE_LIMITED", "Storefront is rate limiting pushes")
	ErrStorefrontRejected     = shared.NewDomainError("STOREFRONT_REJECTED", "Storefront rejected the push")
	ErrStorefrontInvalidReply = shared.NewDomainError("STOREFRONT_INVALID_RESPONSE", "Storefront returned an invalid response")
)

// StorefrontPublisher sends products to the storefront platform. A push
// succeeds or fails as a whole.
type StorefrontPublisher interface {
	Push(ctx context.Context, products []Product) (*PushResult, error)
}

// PushResult reports a successful push
type PushResult struct {
	Pushed  int      `json:"pushed"`
	SKUs    []string `json:"skus"`
	Message string   `json:"message,omitempty"`
}
