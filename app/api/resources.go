package api

import (
	"time"

	"github.com/voltaic/catalog/app/codec"
	"github.com/voltaic/catalog/models"
)

type Category struct {
	ID    uint   `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type Manufacturer struct {
	ID    uint   `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type AttributeType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type AttributeOption struct {
	ID        uint   `json:"id"`
	Label     string `json:"label"`
	SortOrder int    `json:"sort_order"`
}

type Attribute struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Type        AttributeType     `json:"type"`
	Unit        *string           `json:"unit"`
	Description *string           `json:"description"`
	Options     []AttributeOption `json:"options,omitempty"`
}

type AttributeValue struct {
	ID              uint             `json:"id"`
	Attribute       Attribute        `json:"attribute"`
	AttributeOption *AttributeOption `json:"attribute_option"`
	ValueText       *string          `json:"value_text"`
	ValueDecimal    *float64         `json:"value_decimal"`
	// Value is the display form: the option label for list attributes.
	Value string `json:"value"`
}

type Product struct {
	ID              uint             `json:"id"`
	ExternalID      *string          `json:"external_id"`
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Price           float64          `json:"price"`
	Description     string           `json:"description"`
	Category        Category         `json:"category"`
	Manufacturer    Manufacturer     `json:"manufacturer"`
	AttributeValues []AttributeValue `json:"attribute_values"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// SearchResult is a product with its search relevance.
type SearchResult struct {
	Product
	Relevance float64 `json:"relevance"`
}

func NewCategory(c models.Category) Category {
	return Category{ID: c.ID, Slug: c.Slug, Title: c.Title}
}

func NewManufacturer(m models.Manufacturer) Manufacturer {
	return Manufacturer{ID: m.ID, Slug: m.Slug, Title: m.Title}
}

func NewAttributeType(t models.AttributeType) AttributeType {
	return AttributeType{ID: t.ID(), Name: t.Label(), Slug: t.Slug()}
}

func NewAttributeOption(o models.AttributeOption) AttributeOption {
	return AttributeOption{ID: o.ID, Label: o.Label, SortOrder: o.SortOrder}
}

func NewAttribute(a models.Attribute) Attribute {
	out := Attribute{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		Type:        NewAttributeType(a.Type),
		Unit:        a.Unit,
		Description: a.Description,
	}
	if len(a.Options) > 0 {
		out.Options = make([]AttributeOption, len(a.Options))
		for i, o := range a.Options {
			out.Options[i] = NewAttributeOption(o)
		}
	}
	return out
}

// NewAttributeValue renders v. Values whose stored column does not match the
// attribute type keep an empty display value.
func NewAttributeValue(v models.ProductAttributeValue) AttributeValue {
	out := AttributeValue{
		ID:           v.ID,
		Attribute:    NewAttribute(v.Attribute),
		ValueText:    v.ValueText,
		ValueDecimal: v.ValueDecimal,
	}
	if v.Option != nil {
		opt := NewAttributeOption(*v.Option)
		out.AttributeOption = &opt
	}
	if value, err := codec.Decode(v.Attribute.Type, v); err == nil {
		if _, isOption := value.(codec.OptionRef); isOption && v.Option != nil {
			out.Value = v.Option.Label
		} else {
			out.Value = codec.Format(v.Attribute.Type, value)
		}
	}
	return out
}

// NewProduct renders p with its applicable attribute values only.
func NewProduct(p models.Product) Product {
	values := p.ApplicableValues()
	out := Product{
		ID:              p.ID,
		ExternalID:      p.ExternalID,
		Title:           p.Title,
		Slug:            p.Slug,
		Price:           p.Price.InexactFloat64(),
		Description:     p.Description,
		Category:        NewCategory(p.Category),
		Manufacturer:    NewManufacturer(p.Manufacturer),
		AttributeValues: make([]AttributeValue, len(values)),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	for i, v := range values {
		out.AttributeValues[i] = NewAttributeValue(v)
	}
	return out
}

func NewProducts(products []models.Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = NewProduct(p)
	}
	return out
}
