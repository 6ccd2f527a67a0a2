package catalog

import "github.com/shopspring/decimal"

// Variant is one distributor's offer for a normalized SKU
type Variant struct {
	NormalizedSKU   string          `json:"normalized_sku"`
	DistributorName string          `json:"distributor_name"`
	Cost            decimal.Decimal `json:"cost"`
}
