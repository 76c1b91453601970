package models

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

// GetAllCategories lists categories ordered by title. A non-empty slug narrows
// the result to that category.
func (r *CategoriesRepository) GetAllCategories(ctx context.Context, slug string) ([]Category, error) {
	query := r.db.WithContext(ctx).Model(&Category{})
	if slug != "" {
		query = query.Where("slug = ?", slug)
	}

	var categories []Category
	if err := query.Order("title").Order("id").Find(&categories).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list categories")
	}
	return categories, nil
}

// GetCategoryAttributes returns the attributes linked to a category in link
// order, with List options preloaded in option order.
func (r *CategoriesRepository) GetCategoryAttributes(ctx context.Context, categoryID uint) ([]Attribute, error) {
	var category Category
	err := r.db.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order").Order("attribute_id")
		}).
		Preload("Links.Attribute").
		Preload("Links.Attribute.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order").Order("id")
		}).
		First(&category, categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load category attributes")
	}

	attrs := make([]Attribute, 0, len(category.Links))
	for _, link := range category.Links {
		attrs = append(attrs, link.Attribute)
	}
	return attrs, nil
}
