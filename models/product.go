package models

import "time"

// Product is one perishable batch. BatchID is the externally meaningful
// business key and must be globally unique; the numeric ID is internal.
// MfgDate and ExpiryDate are calendar dates in YYYY-MM-DD form with no
// time-of-day component, stored as fixed-width strings: varchar columns
// round-trip unchanged on every driver (a DATE column would come back as
// time.Time with parseTime enabled) and the fixed format keeps range
// comparisons correct. The system does not enforce ExpiryDate > MfgDate;
// that is the caller's responsibility.
type Product struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	ProductName         string    `gorm:"column:product_name;size:100;not null" json:"product_name"`
	BatchID             string    `gorm:"column:batch_id;size:64;not null;uniqueIndex" json:"batch_id"`
	Category            string    `gorm:"column:category;size:100" json:"category"`
	MfgDate             string    `gorm:"column:mfg_date;size:10;not null" json:"mfg_date"`
	ExpiryDate          string    `gorm:"column:expiry_date;size:10;not null" json:"expiry_date"`
	StorageInstructions string    `gorm:"column:storage_instructions;type:text" json:"storage_instructions"`
	AddedDate           time.Time `gorm:"column:added_date;autoCreateTime" json:"added_date"`
}

func (Product) TableName() string {
	return "products"
}
