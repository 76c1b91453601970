package models

// Manufacturer is identified by the slug derived from its title.
type Manufacturer struct {
	ID    uint   `gorm:"primaryKey"`
	Slug  string `gorm:"size:64;uniqueIndex;not null"`
	Title string `gorm:"not null"`
}

func (m *Manufacturer) TableName() string {
	return "manufacturers"
}
