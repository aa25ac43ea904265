package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"freshscan/models"
)

// DefaultCategoryIcon is substituted when a product's category has no
// matching row.
const DefaultCategoryIcon = "📦"

// DefaultCategories is the seed set created at initialization.
func DefaultCategories() []models.Category {
	return []models.Category{
		{Name: "Dairy", Icon: "🥛"},
		{Name: "Bakery", Icon: "🍞"},
		{Name: "Beverages", Icon: "🥤"},
		{Name: "Snacks", Icon: "🍪"},
		{Name: "Fruits", Icon: "🍎"},
		{Name: "Vegetables", Icon: "🥦"},
		{Name: "Meat", Icon: "🥩"},
		{Name: "Frozen", Icon: "❄️"},
	}
}

// Initialize ensures both tables exist and the default category set is
// present. It is idempotent: the seed is a conditional insert keyed on the
// category name, so re-running against a populated store is a no-op.
func Initialize(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		return err
	}

	categories := DefaultCategories()
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&categories).Error
}
