package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltaic/catalog/database/databasetest"
	"github.com/voltaic/catalog/models"
)

func TestMigrate_CreatesSchema(t *testing.T) {
	db := databasetest.New(t)

	for _, table := range []string{
		"categories",
		"manufacturers",
		"attributes",
		"attribute_options",
		"category_attribute",
		"products",
		"product_attribute_values",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.AttributeOption{}, "idx_attribute_options_label"))
	assert.True(t, db.Migrator().HasIndex(&models.ProductAttributeValue{}, "idx_pav_attribute_decimal"))
}

func TestMigrate_UniqueSlugs(t *testing.T) {
	db := databasetest.New(t)

	require.NoError(t, db.Create(&models.Category{Slug: "battery", Title: "Batteries"}).Error)
	err := db.Create(&models.Category{Slug: "battery", Title: "Again"}).Error

	assert.ErrorIs(t, models.TranslateError(err), models.ErrDuplicateKey)
}
