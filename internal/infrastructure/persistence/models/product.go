package models

import (
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for a normalized catalog product.
// Each lockable field has a matching <column>_locked flag.
type ProductModel struct {
	SKU             string           `gorm:"column:sku;type:varchar(64);primaryKey;index:idx_products_updated_sku,priority:2"`
	Title           string           `gorm:"type:text;not null;default:''"`
	Description     string           `gorm:"type:text;not null;default:''"`
	Cost            decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Price           decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	MinPrice        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MaxPrice        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MapPrice        decimal.Decimal  `gorm:"column:map_price;type:decimal(12,2);not null;default:0"`
	Quantity        int              `gorm:"not null;default:0"`
	Brand           string           `gorm:"type:varchar(255);not null;default:''"`
	Vendor          string           `gorm:"type:varchar(255);not null;default:''"`
	Distributor     string           `gorm:"type:varchar(255);not null;default:'';index"`
	ProductType     string           `gorm:"type:varchar(255);not null;default:''"`
	Tags            string           `gorm:"type:text;not null;default:''"`
	MetaTitle       string           `gorm:"type:text;not null;default:''"`
	MetaDescription string           `gorm:"type:text;not null;default:''"`
	UPC             string           `gorm:"column:upc;type:varchar(32);not null;default:''"`
	ASIN            string           `gorm:"column:asin;type:varchar(32);not null;default:''"`
	Weight          decimal.Decimal  `gorm:"type:decimal(10,3);not null;default:0"`
	Width           decimal.Decimal  `gorm:"type:decimal(10,3);not null;default:0"`
	Length          decimal.Decimal  `gorm:"type:decimal(10,3);not null;default:0"`
	ShippingCost    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	ImageCount      int              `gorm:"not null;default:0"`
	ImageURL        string           `gorm:"column:image_url;type:text;not null;default:''"`
	Visibility      string           `gorm:"type:varchar(20);not null;default:'Visible'"`
	Blocked         bool             `gorm:"not null;default:false"`

	ApprovedForSync    bool `gorm:"not null;default:false"`
	ApprovedForShopify bool `gorm:"not null;default:false"`
	SyncedToShopify    bool `gorm:"not null;default:false"`

	TitleLocked           bool `gorm:"not null;default:false"`
	DescriptionLocked     bool `gorm:"not null;default:false"`
	BrandLocked           bool `gorm:"not null;default:false"`
	VendorLocked          bool `gorm:"not null;default:false"`
	ProductTypeLocked     bool `gorm:"not null;default:false"`
	TagsLocked            bool `gorm:"not null;default:false"`
	MetaTitleLocked       bool `gorm:"not null;default:false"`
	MetaDescriptionLocked bool `gorm:"not null;default:false"`
	UPCLocked             bool `gorm:"column:upc_locked;not null;default:false"`
	ShippingCostLocked    bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;index:idx_products_updated_sku,priority:1"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ProductColumns maps grid field ids to product columns. Fields missing
// here (derived ones like status) cannot be queried in SQL.
var ProductColumns = map[string]string{
	"sku":                  "sku",
	"title":                "title",
	"description":          "description",
	"cost":                 "cost",
	"price":                "price",
	"minPrice":             "min_price",
	"maxPrice":             "max_price",
	"map":                  "map_price",
	"quantity":             "quantity",
	"brand":                "brand",
	"vendor":               "vendor",
	"distributor":          "distributor",
	"product_type":         "product_type",
	"tags":                 "tags",
	"meta_title":           "meta_title",
	"meta_description":     "meta_description",
	"upc":                  "upc",
	"asin":                 "asin",
	"weight":               "weight",
	"width":                "width",
	"length":               "length",
	"shippingCost":         "shipping_cost",
	"imageCount":           "image_count",
	"imageUrl":             "image_url",
	"visibility":           "visibility",
	"blocked":              "blocked",
	"approved_for_sync":    "approved_for_sync",
	"approved_for_shopify": "approved_for_shopify",
	"synced_to_shopify":    "synced_to_shopify",
	"lastUpdated":          "updated_at",
	"createdAt":            "created_at",
}

// LockColumn returns the lock flag column of a lockable field
func LockColumn(field string) (string, bool) {
	if !catalog.IsLockable(field) {
		return "", false
	}
	col, ok := ProductColumns[field]
	if !ok {
		return "", false
	}
	return col + "_locked", true
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		SKU:                m.SKU,
		Title:              m.Title,
		Description:        m.Description,
		Cost:               m.Cost,
		Price:              m.Price,
		MinPrice:           m.MinPrice,
		MaxPrice:           m.MaxPrice,
		MAP:                m.MapPrice,
		Quantity:           m.Quantity,
		Brand:              m.Brand,
		Vendor:             m.Vendor,
		Distributor:        m.Distributor,
		ProductType:        m.ProductType,
		Tags:               m.Tags,
		MetaTitle:          m.MetaTitle,
		MetaDescription:    m.MetaDescription,
		UPC:                m.UPC,
		ASIN:               m.ASIN,
		Weight:             m.Weight,
		Width:              m.Width,
		Length:             m.Length,
		ShippingCost:       m.ShippingCost,
		ImageCount:         m.ImageCount,
		ImageURL:           m.ImageURL,
		Visibility:         catalog.Visibility(m.Visibility),
		Blocked:            m.Blocked,
		ApprovedForSync:    m.ApprovedForSync,
		ApprovedForShopify: m.ApprovedForShopify,
		SyncedToShopify:    m.SyncedToShopify,
		Locks:              m.locks(),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (m *ProductModel) locks() map[string]bool {
	return map[string]bool{
		"title":            m.TitleLocked,
		"description":      m.DescriptionLocked,
		"brand":            m.BrandLocked,
		"vendor":           m.VendorLocked,
		"product_type":     m.ProductTypeLocked,
		"tags":             m.TagsLocked,
		"meta_title":       m.MetaTitleLocked,
		"meta_description": m.MetaDescriptionLocked,
		"upc":              m.UPCLocked,
		"shippingCost":     m.ShippingCostLocked,
	}
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.SKU = p.SKU
	m.Title = p.Title
	m.Description = p.Description
	m.Cost = p.Cost
	m.Price = p.Price
	m.MinPrice = p.MinPrice
	m.MaxPrice = p.MaxPrice
	m.MapPrice = p.MAP
	m.Quantity = p.Quantity
	m.Brand = p.Brand
	m.Vendor = p.Vendor
	m.Distributor = p.Distributor
	m.ProductType = p.ProductType
	m.Tags = p.Tags
	m.MetaTitle = p.MetaTitle
	m.MetaDescription = p.MetaDescription
	m.UPC = p.UPC
	m.ASIN = p.ASIN
	m.Weight = p.Weight
	m.Width = p.Width
	m.Length = p.Length
	m.ShippingCost = p.ShippingCost
	m.ImageCount = p.ImageCount
	m.ImageURL = p.ImageURL
	m.Visibility = string(p.Visibility)
	if m.Visibility == "" {
		m.Visibility = string(catalog.VisibilityVisible)
	}
	m.Blocked = p.Blocked
	m.ApprovedForSync = p.ApprovedForSync
	m.ApprovedForShopify = p.ApprovedForShopify
	m.SyncedToShopify = p.SyncedToShopify

	m.TitleLocked = p.IsLocked("title")
	m.DescriptionLocked = p.IsLocked("description")
	m.BrandLocked = p.IsLocked("brand")
	m.VendorLocked = p.IsLocked("vendor")
	m.ProductTypeLocked = p.IsLocked("product_type")
	m.TagsLocked = p.IsLocked("tags")
	m.MetaTitleLocked = p.IsLocked("meta_title")
	m.MetaDescriptionLocked = p.IsLocked("meta_description")
	m.UPCLocked = p.IsLocked("upc")
	m.ShippingCostLocked = p.IsLocked("shippingCost")

	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// ProductVariantModel is one distributor's offer for a normalized SKU
type ProductVariantModel struct {
	ID              uint            `gorm:"primaryKey"`
	NormalizedSKU   string          `gorm:"column:normalized_sku;type:varchar(64);not null;index;uniqueIndex:uq_variants_sku_distributor,priority:1"`
	DistributorName string          `gorm:"type:varchar(255);not null;uniqueIndex:uq_variants_sku_distributor,priority:2"`
	Cost            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductVariantModel) TableName() string {
	return "product_distributor_variants"
}

// ToDomain converts the persistence model to a domain Variant
func (m *ProductVariantModel) ToDomain() catalog.Variant {
	return catalog.Variant{
		NormalizedSKU:   m.NormalizedSKU,
		DistributorName: m.DistributorName,
		Cost:            m.Cost,
	}
}
