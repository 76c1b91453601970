package models

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

// Scope narrows a product query. A nil Scope leaves the query untouched.
type Scope func(*gorm.DB) *gorm.DB

// ValuesBuilder produces the attribute values of a product being written. It
// runs inside the write transaction and must use the dictionary it is given.
type ValuesBuilder func(ctx context.Context, dict *DictionaryRepository) ([]ProductAttributeValue, error)

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Category.Links", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order")
		}).
		Preload("Manufacturer").
		Preload("AttributeValues", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("AttributeValues.Attribute").
		Preload("AttributeValues.Option")
}

func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, offset, limit int, filter Scope) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{})
	if filter != nil {
		query = query.Scopes(filter)
	}
	query = query.Session(&gorm.Session{})

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, "failed to count products")
	}

	// Apply pagination
	if err := query.
		Scopes(withDetails).
		Order("products.id").
		Offset(offset).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, "failed to list products")
	}

	return products, total, nil
}

func (r *ProductsRepository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Scopes(withDetails).
		Where("slug = ?", slug).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// GetByIDs loads products with their details, keeping the order of ids.
func (r *ProductsRepository) GetByIDs(ctx context.Context, ids []uint) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []Product
	if err := r.db.WithContext(ctx).
		Scopes(withDetails).
		Where("id IN ?", ids).
		Find(&found).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load products")
	}

	byID := make(map[uint]Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	products := make([]Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// ReplaceProduct writes one product and its complete attribute value set in a
// single transaction. A product whose external id already exists is updated in
// place, keeps its slug, and has its previous values deleted before the new
// ones are inserted. The returned flag reports whether a new row was created.
func (r *ProductsRepository) ReplaceProduct(ctx context.Context, p *Product, values ValuesBuilder) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Product
		found := false
		if p.ExternalID != nil && *p.ExternalID != "" {
			err := tx.Where("external_id = ?", *p.ExternalID).Take(&existing).Error
			switch {
			case err == nil:
				found = true
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return pkgerrors.Wrap(err, "failed to look up product")
			}
		}

		var rows []ProductAttributeValue
		if values != nil {
			var err error
			if rows, err = values(ctx, NewDictionaryRepository(tx)); err != nil {
				return err
			}
		}

		if found {
			p.ID = existing.ID
			p.Slug = existing.Slug
			p.CreatedAt = existing.CreatedAt
			if err := tx.Model(&existing).Omit(clause.Associations).Updates(map[string]any{
				"title":           p.Title,
				"category_id":     p.CategoryID,
				"manufacturer_id": p.ManufacturerID,
				"price":           p.Price,
				"description":     p.Description,
			}).Error; err != nil {
				return pkgerrors.Wrap(TranslateError(err), "failed to update product")
			}
			if err := tx.Where("product_id = ?", existing.ID).Delete(&ProductAttributeValue{}).Error; err != nil {
				return pkgerrors.Wrap(err, "failed to delete attribute values")
			}
		} else {
			p.ID = 0
			if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
				return pkgerrors.Wrap(TranslateError(err), "failed to create product")
			}
			created = true
		}

		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].ID = 0
			rows[i].ProductID = p.ID
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return pkgerrors.Wrap(TranslateError(err), "failed to insert attribute values")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// GetAllManufacturers returns manufacturers ordered by title.
func (r *ProductsRepository) GetAllManufacturers(ctx context.Context) ([]Manufacturer, error) {
	var manufacturers []Manufacturer
	if err := r.db.WithContext(ctx).Order("title").Find(&manufacturers).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list manufacturers")
	}
	return manufacturers, nil
}
