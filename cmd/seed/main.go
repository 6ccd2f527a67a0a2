package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/infrastructure/persistence"
	"github.com/catalogsync/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	var (
		count     int
		batchSize int
		seed      uint64
		logLevel  string
	)
	flag.IntVar(&count, "count", 500, "Number of products to insert")
	flag.IntVar(&batchSize, "batch", 100, "Products per insert batch")
	flag.Uint64Var(&seed, "seed", 0, "Random seed (0 picks a random one)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if count <= 0 || batchSize <= 0 {
		log.Fatal("count and batch must be positive", zap.Int("count", count), zap.Int("batch", batchSize))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithGormLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	n, err := seedProducts(ctx, db.DB, newProductGenerator(seed, time.Now()), count, batchSize)
	if err != nil {
		log.Fatal("Seeding failed", zap.Int("inserted", n), zap.Error(err))
	}
	log.Info("Seeding complete", zap.Int("products", n))
}

// seedProducts upserts count products and their distributor offers in
// batches and returns how many products were written.
func seedProducts(ctx context.Context, db *gorm.DB, gen *productGenerator, count, batchSize int) (int, error) {
	repo := persistence.NewGormProductRepository(db)
	written := 0
	for start := 0; start < count; start += batchSize {
		end := min(start+batchSize, count)

		products := make([]*catalog.Product, 0, end-start)
		var variants []models.ProductVariantModel
		for i := start; i < end; i++ {
			p, err := gen.product(i + 1)
			if err != nil {
				return written, err
			}
			products = append(products, p)
			variants = append(variants, gen.variants(p)...)
		}

		if err := repo.SaveBatch(ctx, products); err != nil {
			return written, fmt.Errorf("failed to save products: %w", err)
		}
		if len(variants) > 0 {
			err := db.WithContext(ctx).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "normalized_sku"}, {Name: "distributor_name"}},
					DoUpdates: clause.AssignmentColumns([]string{"cost"}),
				}).
				Create(&variants).Error
			if err != nil {
				return written, fmt.Errorf("failed to save variants: %w", err)
			}
		}
		written += len(products)
	}
	return written, nil
}
