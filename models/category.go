package models

// Category represents a product category.
// It is identified by its slug and owns an ordered set of attribute links.
type Category struct {
	ID    uint   `gorm:"primaryKey"`
	Slug  string `gorm:"size:64;uniqueIndex;not null"`
	Title string `gorm:"not null"`

	Links []CategoryAttribute `gorm:"foreignKey:CategoryID"`
}

func (c *Category) TableName() string {
	return "categories"
}

// AttributeIDs returns the ids of the attributes linked to the category.
// Links must be loaded.
func (c *Category) AttributeIDs() []uint {
	ids := make([]uint, 0, len(c.Links))
	for _, l := range c.Links {
		ids = append(ids, l.AttributeID)
	}
	return ids
}

// CategoryAttribute links an attribute to a category with a per-category sort order.
type CategoryAttribute struct {
	CategoryID  uint `gorm:"primaryKey;autoIncrement:false"`
	AttributeID uint `gorm:"primaryKey;autoIncrement:false;index"`
	SortOrder   int  `gorm:"not null;default:0"`

	Attribute Attribute `gorm:"foreignKey:AttributeID"`
}

func (c *CategoryAttribute) TableName() string {
	return "category_attribute"
}
