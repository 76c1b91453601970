package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/voltaic/catalog/config"
	"github.com/voltaic/catalog/models"
)

// Required import columns.
const (
	ColumnID           = "id"
	ColumnName         = "name"
	ColumnManufacturer = "manufacturer"
	ColumnPrice        = "price"
	ColumnDescription  = "description"
)

var (
	ErrManufacturerRequired = errors.New("manufacturer is required")
	ErrNameRequired         = errors.New("name is required")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrCategoryUnresolved   = errors.New("import category could not be determined")
)

// Dictionary resolves the catalog entities a row refers to, creating them when
// missing.
type Dictionary interface {
	GetOrCreateCategory(ctx context.Context, slug, title string) (*models.Category, bool, error)
	GetOrCreateManufacturer(ctx context.Context, title string) (*models.Manufacturer, bool, error)
	GetOrCreateAttribute(ctx context.Context, attr models.Attribute) (*models.Attribute, bool, error)
	LinkAttributeToCategory(ctx context.Context, categoryID, attributeID uint) (bool, error)
	ProductSlugExists(ctx context.Context, slug string) (bool, error)
	ProductSlugByExternalID(ctx context.Context, externalID string) (string, bool, error)
}

// PendingValue is an attribute cell waiting to be encoded by the writer.
type PendingValue struct {
	Attribute models.Attribute
	Raw       string
}

// Record is a processed row ready to be written.
type Record struct {
	Line    int
	Product models.Product
	Values  []PendingValue
}

// Processor turns rows of one category into records. It is not safe for
// concurrent use.
type Processor struct {
	dict         Dictionary
	mapping      *config.Mapping
	categorySlug string
	log          *zap.Logger

	category *models.Category
	slugs    map[string]struct{}
	// slugs handed to external ids earlier in this run
	external map[string]string
}

func NewProcessor(dict Dictionary, mapping *config.Mapping, categorySlug string, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		dict:         dict,
		mapping:      mapping,
		categorySlug: categorySlug,
		log:          log,
		slugs:        make(map[string]struct{}),
		external:     make(map[string]string),
	}
}

// Category resolves the import category once per processor.
func (p *Processor) Category(ctx context.Context) (*models.Category, error) {
	if p.category != nil {
		return p.category, nil
	}
	if p.categorySlug == "" {
		return nil, ErrCategoryUnresolved
	}
	c, created, err := p.dict.GetOrCreateCategory(ctx, p.categorySlug, p.mapping.CategoryTitle(p.categorySlug))
	if err != nil {
		return nil, err
	}
	if created {
		p.log.Info("created category", zap.String("category", c.Slug), zap.String("title", c.Title), zap.Uint("category_id", c.ID))
	}
	p.category = c
	return c, nil
}

// Process builds the record of one row. Attribute columns of the category
// mapping with a non-empty cell become pending values; their attributes are
// resolved and linked to the category here.
func (p *Processor) Process(ctx context.Context, row Row) (Record, error) {
	category, err := p.Category(ctx)
	if err != nil {
		return Record{}, err
	}

	manufacturerTitle := row.Get(ColumnManufacturer)
	if manufacturerTitle == "" {
		return Record{}, ErrManufacturerRequired
	}
	title := row.Get(ColumnName)
	if title == "" {
		return Record{}, ErrNameRequired
	}
	price, err := parsePrice(row.Get(ColumnPrice))
	if err != nil {
		return Record{}, err
	}

	manufacturer, created, err := p.dict.GetOrCreateManufacturer(ctx, manufacturerTitle)
	if err != nil {
		return Record{}, err
	}
	if created {
		p.log.Info("created manufacturer", zap.String("manufacturer", manufacturer.Slug), zap.Uint("manufacturer_id", manufacturer.ID))
	}

	slug, err := p.productSlug(ctx, row.Get(ColumnID), title)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		Line: row.Line,
		Product: models.Product{
			Title:          title,
			Slug:           slug,
			CategoryID:     category.ID,
			Category:       *category,
			ManufacturerID: manufacturer.ID,
			Price:          price,
			Description:    row.Get(ColumnDescription),
		},
	}
	if id := row.Get(ColumnID); id != "" {
		rec.Product.ExternalID = &id
	}

	for _, col := range p.mapping.Columns(category.Slug) {
		raw := row.Get(col.Column)
		if raw == "" {
			continue
		}
		attr, created, err := p.dict.GetOrCreateAttribute(ctx, col.Attribute())
		if err != nil {
			return Record{}, err
		}
		if created {
			p.log.Info("created attribute",
				zap.String("attribute", attr.Slug),
				zap.Stringer("type", attr.Type),
				zap.Uint("attribute_id", attr.ID))
		}
		if attr.Type != col.Type {
			p.log.Warn("attribute type differs from mapping, keeping stored type",
				zap.String("attribute", attr.Slug),
				zap.Stringer("stored", attr.Type),
				zap.Stringer("mapped", col.Type))
		}
		if _, err := p.dict.LinkAttributeToCategory(ctx, category.ID, attr.ID); err != nil {
			return Record{}, err
		}
		rec.Values = append(rec.Values, PendingValue{Attribute: *attr, Raw: raw})
	}
	return rec, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return d.Round(2), nil
}

// productSlug returns the slug a product with externalID already owns, in
// storage or earlier in this run, and allocates a new one otherwise.
func (p *Processor) productSlug(ctx context.Context, externalID, title string) (string, error) {
	if externalID == "" {
		return p.allocateSlug(ctx, title)
	}
	if slug, ok := p.external[externalID]; ok {
		return slug, nil
	}
	slug, found, err := p.dict.ProductSlugByExternalID(ctx, externalID)
	if err != nil {
		return "", err
	}
	if !found {
		if slug, err = p.allocateSlug(ctx, title); err != nil {
			return "", err
		}
	}
	p.external[externalID] = slug
	return slug, nil
}

// allocateSlug returns the slug of title, suffixed with -1, -2, ... until it
// is used neither in storage nor earlier in this run.
func (p *Processor) allocateSlug(ctx context.Context, title string) (string, error) {
	base := models.Slugify(title)
	if base == "" {
		base = "product"
	}
	candidate := base
	for n := 1; ; n++ {
		if _, taken := p.slugs[candidate]; !taken {
			exists, err := p.dict.ProductSlugExists(ctx, candidate)
			if err != nil {
				return "", err
			}
			if !exists {
				p.slugs[candidate] = struct{}{}
				return candidate, nil
			}
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}
