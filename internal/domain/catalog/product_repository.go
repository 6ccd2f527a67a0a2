package catalog

import (
	"context"

	"github.com/catalogsync/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindPage returns one keyset page of a scope, newest change first
	// (updated_at DESC, sku DESC)
	FindPage(ctx context.Context, scope Scope, q shared.CursorQuery) (*shared.CursorPage[Product], error)

	// FindBySKU finds a product by SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindBySKUs finds the products with the given SKUs, in no particular order
	FindBySKUs(ctx context.Context, skus []string) ([]Product, error)

	// UpdateField writes one field of a product and returns the stored
	// product. Lockable fields are locked by the write.
	UpdateField(ctx context.Context, sku, field string, value any) (*Product, error)

	// BulkUpdateField writes a flag field on many products
	BulkUpdateField(ctx context.Context, skus []string, field string, value any) (int64, error)

	// UnlockField clears the lock flag of a lockable field
	UnlockField(ctx context.Context, sku, field string) error

	// DeleteBySKUs deletes products
	DeleteBySKUs(ctx context.Context, skus []string) (int64, error)

	// SaveBatch creates or updates products
	SaveBatch(ctx context.Context, products []*Product) error
}

// VariantRepository reads distributor offers
type VariantRepository interface {
	// FindBySKU returns the offers for a normalized SKU, cheapest first
	FindBySKU(ctx context.Context, sku string) ([]Variant, error)
}
