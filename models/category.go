package models

// Category is a display grouping for products. Product.Category references
// Name by value; no referential integrity is enforced at the storage level
// and listings tolerate products whose category has no matching row.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Icon string `gorm:"size:16" json:"icon"`
}

func (Category) TableName() string {
	return "categories"
}
