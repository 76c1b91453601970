//go:build integration

package search_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voltaic/catalog/app/search"
	"github.com/voltaic/catalog/config"
	"github.com/voltaic/catalog/database"
	"github.com/voltaic/catalog/models"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image: "postgres:15",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	opts := config.DatabaseOptions{
		Host:            host,
		Port:            port.Port(),
		User:            "testuser",
		Password:        "testpass",
		Name:            "testdb",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}
	require.NoError(t, waitForPostgresReady(opts.DSN(), 30*time.Second))

	db, err := database.Open(opts, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(ctx, db))
	return db
}

func waitForPostgresReady(dsn string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for PostgreSQL to be ready after %s", timeout)
}

func seedProducts(t *testing.T, db *gorm.DB) {
	t.Helper()
	category := models.Category{Slug: "batteries", Title: "Batteries"}
	require.NoError(t, db.Create(&category).Error)

	voltix := models.Manufacturer{Slug: "voltix", Title: "Voltix"}
	ecotech := models.Manufacturer{Slug: "ecotech", Title: "Ecotech"}
	require.NoError(t, db.Create(&voltix).Error)
	require.NoError(t, db.Create(&ecotech).Error)

	products := []models.Product{
		{Title: "Battery X", Slug: "battery-x", ManufacturerID: ecotech.ID, Description: "Lead acid"},
		{Title: "EcoCell 100", Slug: "ecocell-100", ManufacturerID: voltix.ID, Description: "Lithium cell"},
		{Title: "PowerBlock 75", Slug: "powerblock-75", ManufacturerID: voltix.ID, Description: "Eco friendly casing"},
		{Title: "Inverter 3000", Slug: "inverter-3000", ManufacturerID: voltix.ID, Description: "Pure sine wave"},
	}
	for i := range products {
		products[i].CategoryID = category.ID
		products[i].Price = decimal.NewFromInt(100)
		require.NoError(t, db.Create(&products[i]).Error)
	}
}

func titles(results []search.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Product.Title
	}
	return out
}

func TestSearch_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupPostgres(t)
	seedProducts(t, db)
	searcher := search.New(db, models.NewProductsRepository(db), zap.NewNop())
	ctx := context.Background()

	t.Run("title outranks description and manufacturer", func(t *testing.T) {
		// Act
		results, err := searcher.Search(ctx, "eco", 10)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"EcoCell 100", "PowerBlock 75", "Battery X"}, titles(results))
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Relevance, results[i].Relevance)
		}
	})

	t.Run("limit", func(t *testing.T) {
		results, err := searcher.Search(ctx, "eco", 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"EcoCell 100"}, titles(results))
	})

	t.Run("details are loaded", func(t *testing.T) {
		results, err := searcher.Search(ctx, "inverter", 10)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Voltix", results[0].Product.Manufacturer.Title)
		assert.Equal(t, "Batteries", results[0].Product.Category.Title)
	})

	t.Run("no match", func(t *testing.T) {
		results, err := searcher.Search(ctx, "zeppelin", 10)

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("blank query", func(t *testing.T) {
		results, err := searcher.Search(ctx, "  !! ", 10)

		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
