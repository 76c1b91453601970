package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// MaxDisplayedValues caps how many applicable attribute values a product shows.
const MaxDisplayedValues = 3

// Product represents a product in the catalog.
// ExternalID is the import identity; Slug is unique and human readable.
type Product struct {
	ID             uint            `gorm:"primaryKey"`
	ExternalID     *string         `gorm:"size:64;uniqueIndex"`
	Title          string          `gorm:"not null"`
	Slug           string          `gorm:"size:160;uniqueIndex;not null"`
	CategoryID     uint            `gorm:"not null;index"`
	Category       Category        `gorm:"foreignKey:CategoryID"`
	ManufacturerID uint            `gorm:"not null;index"`
	Manufacturer   Manufacturer    `gorm:"foreignKey:ManufacturerID"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null;index"`
	Description    string          `gorm:"type:text;not null;default:''"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	AttributeValues []ProductAttributeValue `gorm:"foreignKey:ProductID"`
}

func (p *Product) TableName() string {
	return "products"
}

// ApplicableValues returns the attribute values whose attribute belongs to the
// product's category, capped at MaxDisplayedValues. A nil Category.Links means
// the links were not loaded and every value is considered applicable; an empty
// one means the category has no attributes.
func (p *Product) ApplicableValues() []ProductAttributeValue {
	loaded := p.Category.Links != nil
	allowed := p.Category.AttributeIDs()
	out := make([]ProductAttributeValue, 0, min(len(p.AttributeValues), MaxDisplayedValues))
	for _, v := range p.AttributeValues {
		if len(out) == MaxDisplayedValues {
			break
		}
		if loaded && !slices.Contains(allowed, v.AttributeID) {
			continue
		}
		out = append(out, v)
	}
	return out
}
