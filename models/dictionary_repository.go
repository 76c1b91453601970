package models

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DictionaryRepository resolves categories, manufacturers, attributes, options
// and category links by their natural keys, creating them when missing.
//
// Every natural key is backed by a unique index. Creation is an insert that
// does nothing on conflict; when nothing was inserted another writer created
// the row first and it is read back instead.
type DictionaryRepository struct {
	db *gorm.DB
}

func NewDictionaryRepository(db *gorm.DB) *DictionaryRepository {
	return &DictionaryRepository{db: db}
}

// getOrCreate looks a row up with where/args and, when absent, inserts the row
// returned by build. It reports whether the row was created by this call.
func getOrCreate[T any](ctx context.Context, db *gorm.DB, build func(tx *gorm.DB) (*T, error), where string, args ...any) (*T, bool, error) {
	tx := db.WithContext(ctx)

	var found T
	err := tx.Where(where, args...).Take(&found).Error
	if err == nil {
		return &found, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	row, err := build(tx)
	if err != nil {
		return nil, false, err
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(row)
	if res.Error != nil {
		return nil, false, TranslateError(res.Error)
	}
	if res.RowsAffected > 0 {
		return row, true, nil
	}

	var winner T
	if err := tx.Where(where, args...).Take(&winner).Error; err != nil {
		return nil, false, err
	}
	return &winner, false, nil
}

func (r *DictionaryRepository) GetOrCreateCategory(ctx context.Context, slug, title string) (*Category, bool, error) {
	c, created, err := getOrCreate(ctx, r.db, func(*gorm.DB) (*Category, error) {
		return &Category{Slug: slug, Title: title}, nil
	}, "slug = ?", slug)
	if err != nil {
		return nil, false, pkgerrors.Wrapf(err, "failed to resolve category %q", slug)
	}
	return c, created, nil
}

// GetOrCreateManufacturer resolves a manufacturer by the slug of its title.
func (r *DictionaryRepository) GetOrCreateManufacturer(ctx context.Context, title string) (*Manufacturer, bool, error) {
	slug := Slugify(title)
	if slug == "" {
		return nil, false, pkgerrors.Errorf("manufacturer title %q has no usable characters", title)
	}
	m, created, err := getOrCreate(ctx, r.db, func(*gorm.DB) (*Manufacturer, error) {
		return &Manufacturer{Slug: slug, Title: title}, nil
	}, "slug = ?", slug)
	if err != nil {
		return nil, false, pkgerrors.Wrapf(err, "failed to resolve manufacturer %q", title)
	}
	return m, created, nil
}

// GetOrCreateAttribute resolves attr by slug. An existing attribute is returned
// as stored: its type is never changed to match attr.
func (r *DictionaryRepository) GetOrCreateAttribute(ctx context.Context, attr Attribute) (*Attribute, bool, error) {
	if !attr.Type.Valid() {
		return nil, false, pkgerrors.Errorf("attribute %q has unknown type %d", attr.Slug, attr.Type)
	}
	a, created, err := getOrCreate(ctx, r.db, func(*gorm.DB) (*Attribute, error) {
		row := attr
		row.ID = 0
		row.Options = nil
		return &row, nil
	}, "slug = ?", attr.Slug)
	if err != nil {
		return nil, false, pkgerrors.Wrapf(err, "failed to resolve attribute %q", attr.Slug)
	}
	return a, created, nil
}

// LinkAttributeToCategory links the attribute to the category once, appending
// it to the end of the category's sort order.
func (r *DictionaryRepository) LinkAttributeToCategory(ctx context.Context, categoryID, attributeID uint) (bool, error) {
	_, created, err := getOrCreate(ctx, r.db, func(tx *gorm.DB) (*CategoryAttribute, error) {
		next, err := nextSortOrder(tx, &CategoryAttribute{}, "category_id = ?", categoryID)
		if err != nil {
			return nil, err
		}
		return &CategoryAttribute{CategoryID: categoryID, AttributeID: attributeID, SortOrder: next}, nil
	}, "category_id = ? AND attribute_id = ?", categoryID, attributeID)
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to link attribute to category")
	}
	return created, nil
}

// GetOrCreateOption resolves a List option by label. New options get the next
// sort order of the attribute; orders are never reused.
func (r *DictionaryRepository) GetOrCreateOption(ctx context.Context, attributeID uint, label string) (*AttributeOption, bool, error) {
	o, created, err := getOrCreate(ctx, r.db, func(tx *gorm.DB) (*AttributeOption, error) {
		next, err := nextSortOrder(tx, &AttributeOption{}, "attribute_id = ?", attributeID)
		if err != nil {
			return nil, err
		}
		return &AttributeOption{AttributeID: attributeID, Label: label, SortOrder: next}, nil
	}, "attribute_id = ? AND label = ?", attributeID, label)
	if err != nil {
		return nil, false, pkgerrors.Wrapf(err, "failed to resolve option %q", label)
	}
	return o, created, nil
}

func nextSortOrder(tx *gorm.DB, model any, where string, args ...any) (int, error) {
	var current int
	if err := tx.Model(model).
		Where(where, args...).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&current).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "failed to read sort order")
	}
	return current + 1, nil
}

// ProductSlugExists reports whether a product already uses slug.
func (r *DictionaryRepository) ProductSlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Product{}).Where("slug = ?", slug).Count(&n).Error; err != nil {
		return false, pkgerrors.Wrap(err, "failed to check product slug")
	}
	return n > 0, nil
}

// ProductSlugByExternalID returns the slug of the product imported under
// externalID, if any.
func (r *DictionaryRepository) ProductSlugByExternalID(ctx context.Context, externalID string) (string, bool, error) {
	var slugs []string
	if err := r.db.WithContext(ctx).Model(&Product{}).
		Where("external_id = ?", externalID).
		Limit(1).
		Pluck("slug", &slugs).Error; err != nil {
		return "", false, pkgerrors.Wrap(err, "failed to look up product slug")
	}
	if len(slugs) == 0 {
		return "", false, nil
	}
	return slugs[0], true, nil
}

// AttributesBySlug returns the stored attributes among slugs; unknown slugs are
// left out.
func (r *DictionaryRepository) AttributesBySlug(ctx context.Context, slugs []string) ([]Attribute, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var attrs []Attribute
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&attrs).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load attributes")
	}
	return attrs, nil
}
