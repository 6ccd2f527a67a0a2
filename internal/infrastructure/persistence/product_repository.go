package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db, now: time.Now}
}

// applyScope restricts a query to the products a table shows
func applyScope(db *gorm.DB, scope catalog.Scope) *gorm.DB {
	if scope != catalog.ScopeSynced {
		return db
	}
	return db.
		Where("approved_for_shopify = ?", true).
		Where("blocked = ?", false).
		Where("quantity > 0").
		Where("sku <> '' AND title <> ''").
		Where("price <> 0")
}

// FindPage returns one keyset page, newest change first
func (r *GormProductRepository) FindPage(ctx context.Context, scope catalog.Scope, q shared.CursorQuery) (*shared.CursorPage[catalog.Product], error) {
	q = q.Normalize()

	query := applyScope(r.db.WithContext(ctx).Model(&models.ProductModel{}), scope)
	query, err := applyPredicates(query, q.Predicates, models.ProductColumns)
	if err != nil {
		return nil, err
	}
	if q.Cursor != nil {
		c, err := decodeCursor(*q.Cursor)
		if err != nil {
			return nil, err
		}
		query = query.Where("(updated_at < ? OR (updated_at = ? AND sku < ?))", c.UpdatedAt, c.UpdatedAt, c.SKU)
	}

	var rows []models.ProductModel
	if err := query.
		Order("updated_at DESC").
		Order("sku DESC").
		Limit(q.PageSize + 1).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load products page: %w", err)
	}

	hasMore := len(rows) > q.PageSize
	if hasMore {
		rows = rows[:q.PageSize]
	}

	page := &shared.CursorPage[catalog.Product]{Items: make([]catalog.Product, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, *rows[i].ToDomain())
	}
	if hasMore {
		last := rows[len(rows)-1]
		next := encodeCursor(pageCursor{UpdatedAt: last.UpdatedAt, SKU: last.SKU})
		page.NextCursor = &next
	}
	return page, nil
}

// FindBySKU finds a product by SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySKUs finds the products with the given SKUs
func (r *GormProductRepository) FindBySKUs(ctx context.Context, skus []string) ([]catalog.Product, error) {
	if len(skus) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("sku IN ?", skus).Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].ToDomain())
	}
	return products, nil
}

// UpdateField writes one editable or flag field. Editable fields are
// locked so the next distributor sync keeps the manual value.
func (r *GormProductRepository) UpdateField(ctx context.Context, sku, field string, value any) (*catalog.Product, error) {
	col, ok := models.ProductColumns[field]
	if !ok || (!catalog.IsLockable(field) && !catalog.IsFlagField(field)) {
		return nil, catalog.ErrFieldNotEditable
	}

	updates := map[string]any{
		col:          value,
		"updated_at": r.now(),
	}
	if lockCol, ok := models.LockColumn(field); ok {
		updates[lockCol] = true
	}

	var model models.ProductModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ProductModel{}).Where("sku = ?", sku).UpdateColumns(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("sku = ?", sku).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update %s: %w", field, err)
	}
	return model.ToDomain(), nil
}

// BulkUpdateField writes a flag field on many products
func (r *GormProductRepository) BulkUpdateField(ctx context.Context, skus []string, field string, value any) (int64, error) {
	if !catalog.IsFlagField(field) {
		return 0, catalog.ErrFieldNotFlag
	}
	if len(skus) == 0 {
		return 0, nil
	}
	col := models.ProductColumns[field]

	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("sku IN ?", skus).
		UpdateColumns(map[string]any{col: value, "updated_at": r.now()})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update %s: %w", field, result.Error)
	}
	return result.RowsAffected, nil
}

// UnlockField clears the lock flag so the next sync may overwrite the field.
// The change timestamp is left alone: the value itself did not change.
func (r *GormProductRepository) UnlockField(ctx context.Context, sku, field string) error {
	lockCol, ok := models.LockColumn(field)
	if !ok {
		return catalog.ErrFieldNotLockable
	}

	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("sku = ?", sku).
		UpdateColumn(lockCol, false)
	if result.Error != nil {
		return fmt.Errorf("failed to unlock %s: %w", field, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteBySKUs deletes products
func (r *GormProductRepository) DeleteBySKUs(ctx context.Context, skus []string) (int64, error) {
	if len(skus) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("sku IN ?", skus).Delete(&models.ProductModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete products: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// syncColumns are overwritten on upsert unless locked
var syncColumns = []string{
	"cost", "price", "min_price", "max_price", "map_price", "quantity",
	"distributor", "asin", "weight", "width", "length", "image_count",
	"image_url", "visibility", "blocked", "updated_at",
}

// upsertAssignments keeps the stored value of every locked column and the
// lock flags themselves; everything else takes the incoming value.
func upsertAssignments() clause.Set {
	set := make(clause.Set, 0, len(syncColumns)+len(catalog.LockableFields()))
	for _, col := range syncColumns {
		set = append(set, clause.Assignment{
			Column: clause.Column{Name: col},
			Value:  gorm.Expr("excluded." + col),
		})
	}
	for _, field := range catalog.LockableFields() {
		col := models.ProductColumns[field]
		lockCol, _ := models.LockColumn(field)
		set = append(set, clause.Assignment{
			Column: clause.Column{Name: col},
			Value: gorm.Expr(fmt.Sprintf(
				"CASE WHEN products.%s THEN products.%s ELSE excluded.%s END", lockCol, col, col)),
		})
	}
	return set
}

// SaveBatch inserts products or refreshes existing ones, respecting locks
func (r *GormProductRepository) SaveBatch(ctx context.Context, products []*catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]models.ProductModel, len(products))
	for i, p := range products {
		rows[i].FromDomain(p)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}},
			DoUpdates: upsertAssignments(),
		}).
		CreateInBatches(&rows, 200).Error
	if err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	return nil
}

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

var _ catalog.VariantRepository = (*GormVariantRepository)(nil)

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindBySKU returns the distributor offers for a SKU, cheapest first
func (r *GormVariantRepository) FindBySKU(ctx context.Context, sku string) ([]catalog.Variant, error) {
	var rows []models.ProductVariantModel
	if err := r.db.WithContext(ctx).
		Where("normalized_sku = ?", sku).
		Order("cost ASC").
		Order("distributor_name ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	variants := make([]catalog.Variant, 0, len(rows))
	for i := range rows {
		variants = append(variants, rows[i].ToDomain())
	}
	return variants, nil
}

// SaveVariants stores distributor offers, replacing the cost of an offer
// that already exists for the same distributor
func (r *GormVariantRepository) SaveVariants(ctx context.Context, variants []catalog.Variant) error {
	if len(variants) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]models.ProductVariantModel, len(variants))
	for i, v := range variants {
		rows[i] = models.ProductVariantModel{
			NormalizedSKU:   v.NormalizedSKU,
			DistributorName: v.DistributorName,
			Cost:            v.Cost,
			CreatedAt:       now,
		}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "normalized_sku"}, {Name: "distributor_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"cost"}),
		}).
		CreateInBatches(&rows, 200).Error
}
