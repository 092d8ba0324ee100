package entity

import "time"

// Serial counter scopes
const (
	SerialScopePurchase = "PURCHASE"  // key: material|supplier|FY
	SerialScopeBatch    = "BATCH"     // key: seed lineage code
	SerialScopeBatchDay = "BATCH_DAY" // key: oil material code|seed date
)

// SerialCounter holds the last serial issued for one scope key.
type SerialCounter struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ScopeType string    `json:"scope_type" gorm:"size:16;not null;uniqueIndex:idx_oil_serial_scope"`
	ScopeKey  string    `json:"scope_key" gorm:"size:160;not null;uniqueIndex:idx_oil_serial_scope"`
	Value     int64     `json:"value" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SerialCounter) TableName() string {
	return "oil_serial_counters"
}
