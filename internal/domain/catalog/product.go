package catalog

import (
	"strings"
	"time"

	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Visibility of a product on the storefront
type Visibility string

const (
	VisibilityVisible Visibility = "Visible"
	VisibilityHidden  Visibility = "Hidden"
)

// Product is one normalized catalog product, keyed by SKU
type Product struct {
	SKU             string
	Title           string
	Description     string
	Cost            decimal.Decimal
	Price           decimal.Decimal
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	MAP             decimal.Decimal
	Quantity        int
	Brand           string
	Vendor          string
	Distributor     string
	ProductType     string
	Tags            string
	MetaTitle       string
	MetaDescription string
	UPC             string
	ASIN            string
	Weight          decimal.Decimal
	Width           decimal.Decimal
	Length          decimal.Decimal
	ShippingCost    decimal.Decimal
	ImageCount      int
	ImageURL        string
	Visibility      Visibility
	Blocked         bool

	ApprovedForSync    bool
	ApprovedForShopify bool
	SyncedToShopify    bool

	// Locks holds the lockable fields a manual edit pinned
	Locks map[string]bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProduct creates a product with the required identity
func NewProduct(sku, title string) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 64 {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 64 characters")
	}
	now := time.Now()
	return &Product{
		SKU:        sku,
		Title:      strings.TrimSpace(title),
		Visibility: VisibilityVisible,
		Locks:      make(map[string]bool),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsLocked reports whether a manual edit pinned field
func (p *Product) IsLocked(field string) bool {
	return p.Locks[field]
}

// ReadyToSync reports whether the product belongs to the synced scope
func (p *Product) ReadyToSync() bool {
	return p.ApprovedForShopify &&
		!p.Blocked &&
		p.Quantity > 0 &&
		p.SKU != "" &&
		p.Title != "" &&
		!p.Price.IsZero()
}

// ToRow flattens the product into a grid row. Decimal values become
// float64 so rows stay plain scalars.
func (p *Product) ToRow() grid.Row {
	status := DeriveSyncStatus(p)
	r := grid.Row{
		"sku":                  p.SKU,
		"title":                p.Title,
		"description":          p.Description,
		"cost":                 p.Cost.InexactFloat64(),
		"price":                p.Price.InexactFloat64(),
		"minPrice":             optionalFloat(p.MinPrice),
		"maxPrice":             optionalFloat(p.MaxPrice),
		"map":                  p.MAP.InexactFloat64(),
		"quantity":             p.Quantity,
		"brand":                p.Brand,
		"vendor":               p.Vendor,
		"distributor":          p.Distributor,
		"product_type":         p.ProductType,
		"tags":                 p.Tags,
		"meta_title":           p.MetaTitle,
		"meta_description":     p.MetaDescription,
		"upc":                  p.UPC,
		"asin":                 p.ASIN,
		"weight":               p.Weight.InexactFloat64(),
		"width":                p.Width.InexactFloat64(),
		"length":               p.Length.InexactFloat64(),
		"shippingCost":         p.ShippingCost.InexactFloat64(),
		"imageCount":           p.ImageCount,
		"imageUrl":             p.ImageURL,
		"visibility":           string(p.Visibility),
		"blocked":              p.Blocked,
		"approved_for_sync":    p.ApprovedForSync,
		"approved_for_shopify": p.ApprovedForShopify,
		"synced_to_shopify":    p.SyncedToShopify,
		"status":               string(status.Status),
		"status_notes":         strings.Join(status.Notes, ", "),
		"lastUpdated":          p.UpdatedAt,
		"createdAt":            p.CreatedAt,
	}
	for _, f := range LockableFields() {
		r[f+"_locked"] = p.Locks[f]
	}
	return r
}

func optionalFloat(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}
