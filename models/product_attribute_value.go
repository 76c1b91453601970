package models

// ProductAttributeValue stores one typed attribute value in a generic shape.
// Exactly one of AttributeOptionID, ValueText and ValueDecimal is set; which one
// depends on the attribute's type and is decided by the value codec.
type ProductAttributeValue struct {
	ID                uint     `gorm:"primaryKey"`
	ProductID         uint     `gorm:"not null;index:idx_pav_product_attribute,priority:1"`
	AttributeID       uint     `gorm:"not null;index:idx_pav_product_attribute,priority:2;index:idx_pav_attribute_option,priority:1;index:idx_pav_attribute_decimal,priority:1"`
	AttributeOptionID *uint    `gorm:"index:idx_pav_attribute_option,priority:2"`
	ValueText         *string  `gorm:"type:text"`
	ValueDecimal      *float64 `gorm:"type:decimal(14,4);index:idx_pav_attribute_decimal,priority:2"`

	Attribute Attribute        `gorm:"foreignKey:AttributeID"`
	Option    *AttributeOption `gorm:"foreignKey:AttributeOptionID"`
}

func (v *ProductAttributeValue) TableName() string {
	return "product_attribute_values"
}
