// Package filter compiles product listing criteria into query scopes.
package filter

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voltaic/catalog/app/codec"
	"github.com/voltaic/catalog/models"
)

// AttributeLookup resolves attribute slugs. Unknown slugs are left out of the
// result.
type AttributeLookup interface {
	AttributesBySlug(ctx context.Context, slugs []string) ([]models.Attribute, error)
}

type Compiler struct {
	lookup AttributeLookup
	log    *zap.Logger
}

func NewCompiler(lookup AttributeLookup, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{lookup: lookup, log: log}
}

// Predicate is one attribute filter: the product must carry a value of the
// attribute satisfying Criterion.
type Predicate struct {
	AttributeID uint
	Slug        string
	Type        models.AttributeType
	Criterion   codec.Criterion
}

// Query is compiled criteria, ready to be applied to a products query.
type Query struct {
	CategoryID      *uint
	ManufacturerIDs []uint
	PriceMin        *float64
	PriceMax        *float64
	// Empty forces an empty result; set when the price minimum exceeds the
	// maximum.
	Empty      bool
	Predicates []Predicate
}

// Compile resolves the attribute slugs of c and parses their filter text.
// Unknown slugs and filter text that does not parse produce no predicate.
func (c *Compiler) Compile(ctx context.Context, criteria Criteria) (Query, error) {
	q := Query{
		CategoryID:      criteria.CategoryID,
		ManufacturerIDs: criteria.ManufacturerIDs,
		PriceMin:        criteria.PriceMin,
		PriceMax:        criteria.PriceMax,
	}
	if q.PriceMin != nil && q.PriceMax != nil && *q.PriceMin > *q.PriceMax {
		q.Empty = true
	}

	slugs := criteria.Slugs()
	if len(slugs) == 0 {
		return q, nil
	}

	attrs, err := c.lookup.AttributesBySlug(ctx, slugs)
	if err != nil {
		return Query{}, fmt.Errorf("resolve filter attributes: %w", err)
	}
	bySlug := make(map[string]models.Attribute, len(attrs))
	for _, a := range attrs {
		bySlug[a.Slug] = a
	}

	for _, slug := range slugs {
		attr, ok := bySlug[slug]
		if !ok {
			continue
		}
		crit, ok := codec.ParseFilter(attr.Type, criteria.Attributes[slug])
		if !ok {
			c.log.Debug("ignoring unusable attribute filter",
				zap.String("attribute", slug),
				zap.String("value", criteria.Attributes[slug]))
			continue
		}
		q.Predicates = append(q.Predicates, Predicate{
			AttributeID: attr.ID,
			Slug:        slug,
			Type:        attr.Type,
			Criterion:   crit,
		})
	}
	return q, nil
}

// Scope applies q to a query over products.
func (q Query) Scope() models.Scope {
	return func(db *gorm.DB) *gorm.DB {
		if q.CategoryID != nil {
			db = db.Where("products.category_id = ?", *q.CategoryID)
		}
		if len(q.ManufacturerIDs) > 0 {
			db = db.Where("products.manufacturer_id IN ?", q.ManufacturerIDs)
		}
		if q.PriceMin != nil {
			db = db.Where("products.price >= ?", *q.PriceMin)
		}
		if q.PriceMax != nil {
			db = db.Where("products.price <= ?", *q.PriceMax)
		}
		if q.Empty {
			db = db.Where("1 = 0")
		}
		for _, p := range q.Predicates {
			sub, ok := p.subquery(db)
			if !ok {
				continue
			}
			db = db.Where("EXISTS (?)", sub)
		}
		return db
	}
}

// subquery selects the values of the predicate's attribute on the outer
// product that satisfy its criterion.
func (p Predicate) subquery(db *gorm.DB) (*gorm.DB, bool) {
	column, err := codec.Column(p.Type)
	if err != nil {
		return nil, false
	}
	column = "product_attribute_values." + column

	sub := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.ProductAttributeValue{}).
		Select("1").
		Where("product_attribute_values.product_id = products.id").
		Where("product_attribute_values.attribute_id = ?", p.AttributeID)

	switch c := p.Criterion.(type) {
	case codec.Range:
		switch {
		case c.Min != nil && c.Max != nil:
			sub = sub.Where(column+" BETWEEN ? AND ?", *c.Min, *c.Max)
		case c.Min != nil:
			sub = sub.Where(column+" >= ?", *c.Min)
		case c.Max != nil:
			sub = sub.Where(column+" <= ?", *c.Max)
		default:
			return nil, false
		}
	case codec.Equals:
		switch v := c.Value.(type) {
		case codec.Numeric:
			sub = sub.Where(column+" = ?", float64(v))
		case codec.Text:
			sub = sub.Where(column+" = ?", string(v))
		case codec.OptionRef:
			sub = sub.Where(column+" = ?", uint(v))
		default:
			return nil, false
		}
	case codec.OneOf:
		if len(c.Options) == 0 {
			return nil, false
		}
		sub = sub.Where(column+" IN ?", c.Options)
	default:
		return nil, false
	}
	return sub, true
}
