package models

// Attribute describes one category-specific product property.
// Type is fixed when the attribute is created.
type Attribute struct {
	ID          uint          `gorm:"primaryKey"`
	Slug        string        `gorm:"size:64;uniqueIndex;not null"`
	Title       string        `gorm:"not null"`
	Type        AttributeType `gorm:"column:type_id;not null;index"`
	Unit        *string       `gorm:"size:16"`
	Description *string       `gorm:"type:text"`

	Options []AttributeOption `gorm:"foreignKey:AttributeID"`
}

func (a *Attribute) TableName() string {
	return "attributes"
}

// AttributeOption is one selectable value of a List attribute.
type AttributeOption struct {
	ID          uint   `gorm:"primaryKey"`
	AttributeID uint   `gorm:"not null;uniqueIndex:idx_attribute_options_label,priority:1"`
	Label       string `gorm:"not null;uniqueIndex:idx_attribute_options_label,priority:2"`
	SortOrder   int    `gorm:"not null;default:0"`
}

func (o *AttributeOption) TableName() string {
	return "attribute_options"
}
