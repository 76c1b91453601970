package models_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltaic/catalog/database/databasetest"
	"github.com/voltaic/catalog/models"
)

func TestCategoriesRepository_GetAllCategories(t *testing.T) {
	ctx := context.Background()
	db := databasetest.New(t)
	dict := models.NewDictionaryRepository(db)
	for slug, title := range map[string]string{"solar-panel": "Solar Panels", "battery": "Batteries", "connector": "Connectors"} {
		_, _, err := dict.GetOrCreateCategory(ctx, slug, title)
		require.NoError(t, err)
	}
	repo := models.NewCategoriesRepository(db)

	all, err := repo.GetAllCategories(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Batteries", "Connectors", "Solar Panels"}, []string{all[0].Title, all[1].Title, all[2].Title})

	one, err := repo.GetAllCategories(ctx, "connector")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "connector", one[0].Slug)

	none, err := repo.GetAllCategories(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCategoriesRepository_GetCategoryAttributes(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := databasetest.New(t)
	dict := models.NewDictionaryRepository(db)
	cat, _, err := dict.GetOrCreateCategory(ctx, "connector", "Connectors")
	require.NoError(t, err)
	connector, _, err := dict.GetOrCreateAttribute(ctx, models.Attribute{Slug: "connector-type", Title: "Connector Type", Type: models.AttributeTypeList})
	require.NoError(t, err)
	current, _, err := dict.GetOrCreateAttribute(ctx, models.Attribute{Slug: "max-current", Title: "Max Current", Type: models.AttributeTypeDecimal})
	require.NoError(t, err)
	for _, id := range []uint{connector.ID, current.ID} {
		_, err = dict.LinkAttributeToCategory(ctx, cat.ID, id)
		require.NoError(t, err)
	}
	for _, label := range []string{"MC4", "Anderson"} {
		_, _, err = dict.GetOrCreateOption(ctx, connector.ID, label)
		require.NoError(t, err)
	}
	repo := models.NewCategoriesRepository(db)

	// Act
	attrs, err := repo.GetCategoryAttributes(ctx, cat.ID)

	// Assert
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, "connector-type", attrs[0].Slug)
	require.Len(t, attrs[0].Options, 2)
	assert.Equal(t, "MC4", attrs[0].Options[0].Label)
	assert.Equal(t, "Anderson", attrs[0].Options[1].Label)
	assert.Equal(t, "max-current", attrs[1].Slug)
	assert.Empty(t, attrs[1].Options)

	_, err = repo.GetCategoryAttributes(ctx, 9999)
	assert.ErrorIs(t, err, models.ErrCategoryNotFound)
}
