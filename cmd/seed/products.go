package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
)

var distributors = []string{"Ingram", "D&H", "TD Synnex", "ASI", "Petra"}

// productGenerator builds fake catalog products with a deterministic SKU
// sequence so repeated runs with the same seed upsert the same rows.
type productGenerator struct {
	faker *gofakeit.Faker
	now   time.Time
}

func newProductGenerator(seed uint64, now time.Time) *productGenerator {
	return &productGenerator{faker: gofakeit.New(seed), now: now}
}

func (g *productGenerator) product(i int) (*catalog.Product, error) {
	f := g.faker
	p, err := catalog.NewProduct(fmt.Sprintf("SEED-%06d", i), f.ProductName())
	if err != nil {
		return nil, err
	}

	cost := decimal.NewFromFloat(f.Price(2, 400)).Round(2)
	markup := decimal.NewFromFloat(f.Float64Range(1.1, 1.8))
	p.Cost = cost
	p.Price = cost.Mul(markup).Round(2)
	p.MAP = p.Price.Mul(decimal.NewFromFloat(0.95)).Round(2)
	p.Quantity = f.IntRange(0, 250)
	p.Brand = f.Company()
	p.Vendor = f.Company()
	p.Distributor = distributors[f.IntRange(0, len(distributors)-1)]
	p.ProductType = f.ProductCategory()
	p.Tags = strings.Join([]string{f.Word(), f.Word()}, ",")
	p.Description = f.ProductDescription()
	p.MetaTitle = p.Title
	p.UPC = f.DigitN(12)
	p.Weight = decimal.NewFromFloat(f.Float64Range(0.1, 40)).Round(2)
	p.Width = decimal.NewFromFloat(f.Float64Range(1, 30)).Round(1)
	p.Length = decimal.NewFromFloat(f.Float64Range(1, 30)).Round(1)
	p.ShippingCost = decimal.NewFromFloat(f.Float64Range(0, 25)).Round(2)
	p.ImageCount = f.IntRange(0, 4)
	if p.ImageCount > 0 {
		p.ImageURL = f.URL()
	}
	if f.IntRange(0, 9) == 0 {
		p.Visibility = catalog.VisibilityHidden
	}
	p.Blocked = f.IntRange(0, 19) == 0
	p.ApprovedForSync = f.Bool()
	p.ApprovedForShopify = p.ApprovedForSync && f.Bool()

	// spread change times so keyset paging has something to walk
	p.CreatedAt = g.now.Add(-time.Duration(f.IntRange(24, 24*90)) * time.Hour)
	p.UpdatedAt = p.CreatedAt.Add(time.Duration(f.IntRange(0, 23)) * time.Hour)
	return p, nil
}

// variants returns between zero and three distributor offers around the
// product's cost
func (g *productGenerator) variants(p *catalog.Product) []models.ProductVariantModel {
	f := g.faker
	n := f.IntRange(0, 3)
	picked := make(map[string]bool, n)
	out := make([]models.ProductVariantModel, 0, n)
	for len(out) < n {
		name := distributors[f.IntRange(0, len(distributors)-1)]
		if picked[name] {
			continue
		}
		picked[name] = true
		delta := decimal.NewFromFloat(f.Float64Range(-0.1, 0.15))
		out = append(out, models.ProductVariantModel{
			NormalizedSKU:   p.SKU,
			DistributorName: name,
			Cost:            p.Cost.Add(p.Cost.Mul(delta)).Round(2),
			CreatedAt:       g.now,
		})
	}
	return out
}
