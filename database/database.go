package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/voltaic/catalog/config"
	"github.com/voltaic/catalog/models"
)

// Open connects to PostgreSQL and applies the pool limits of opts.
func Open(opts config.DatabaseOptions, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := gorm.Open(postgres.Open(opts.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgreSQL instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	log.Info("connected to PostgreSQL", zap.String("host", opts.Host), zap.String("database", opts.Name))
	return db, nil
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Models lists every table of the catalog schema in creation order.
func Models() []any {
	return []any{
		&models.Category{},
		&models.Manufacturer{},
		&models.Attribute{},
		&models.AttributeOption{},
		&models.CategoryAttribute{},
		&models.Product{},
		&models.ProductAttributeValue{},
	}
}

// fullTextIndexes back the search query; their expressions must match the
// ones used there for PostgreSQL to pick them.
var fullTextIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_products_title_fts ON products USING GIN (to_tsvector('simple', title))`,
	`CREATE INDEX IF NOT EXISTS idx_products_description_fts ON products USING GIN (to_tsvector('simple', description))`,
	`CREATE INDEX IF NOT EXISTS idx_manufacturers_title_fts ON manufacturers USING GIN (to_tsvector('simple', title))`,
}

// Migrate creates or updates the schema. Full-text indexes are only created on
// PostgreSQL.
func Migrate(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)
	if err := tx.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, stmt := range fullTextIndexes {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create full-text index: %w", err)
		}
	}
	return nil
}
