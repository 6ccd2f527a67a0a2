package ecommerce

import (
	"github.com/catalogsync/backend/internal/domain/catalog"
)

// storefrontProduct is one product in a push request
type storefrontProduct struct {
	SKU             string  `json:"sku"`
	Title           string  `json:"title"`
	Description     string  `json:"body_html"`
	Vendor          string  `json:"vendor"`
	ProductType     string  `json:"product_type"`
	Tags            string  `json:"tags"`
	Price           string  `json:"price"`
	CompareAtPrice  *string `json:"compare_at_price,omitempty"`
	Cost            string  `json:"cost"`
	Quantity        int     `json:"inventory_quantity"`
	Barcode         string  `json:"barcode,omitempty"`
	Weight          string  `json:"weight"`
	ImageURL        string  `json:"image_url,omitempty"`
	MetaTitle       string  `json:"seo_title,omitempty"`
	MetaDescription string  `json:"seo_description,omitempty"`
	Published       bool    `json:"published"`
}

type storefrontPushRequest struct {
	Products []storefrontProduct `json:"products"`
}

// storefrontPushResponse is the reply to a push. Errors is set on 4xx.
type storefrontPushResponse struct {
	Pushed  int      `json:"pushed"`
	SKUs    []string `json:"skus"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func toStorefrontProduct(p *catalog.Product) storefrontProduct {
	out := storefrontProduct{
		SKU:             p.SKU,
		Title:           p.Title,
		Description:     p.Description,
		Vendor:          p.Vendor,
		ProductType:     p.ProductType,
		Tags:            p.Tags,
		Price:           p.Price.StringFixed(2),
		Cost:            p.Cost.StringFixed(2),
		Quantity:        p.Quantity,
		Barcode:         p.UPC,
		Weight:          p.Weight.String(),
		ImageURL:        p.ImageURL,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		Published:       p.Visibility != catalog.VisibilityHidden,
	}
	if out.Vendor == "" {
		out.Vendor = p.Brand
	}
	if p.MaxPrice != nil && p.MaxPrice.GreaterThan(p.Price) {
		compare := p.MaxPrice.StringFixed(2)
		out.CompareAtPrice = &compare
	}
	return out
}
