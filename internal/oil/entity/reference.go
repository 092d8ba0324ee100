package entity

import "time"

// Material categories
const (
	MaterialCategorySeed  = "SEED"
	MaterialCategoryOil   = "OIL"
	MaterialCategoryOther = "OTHER"
)

// Material is a purchasable or producible item. Seed materials carry the oil
// type their extraction yields.
type Material struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Name          string    `json:"name" gorm:"size:128;not null"`
	ShortCode     string    `json:"short_code" gorm:"size:16"`
	Category      string    `json:"category" gorm:"size:20;not null;default:SEED"`
	TargetOilType string    `json:"target_oil_type" gorm:"size:64"`
	Unit          string    `json:"unit" gorm:"size:20;not null;default:kg"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Material) TableName() string {
	return "oil_materials"
}

// Supplier is a seller of raw material.
type Supplier struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	ShortCode string    `json:"short_code" gorm:"size:16"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "oil_suppliers"
}

// ProductionUnit is a mill. Exactly one unit is expected to be primary.
type ProductionUnit struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	ShortCode string    `json:"short_code" gorm:"size:16"`
	IsPrimary bool      `json:"is_primary" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProductionUnit) TableName() string {
	return "oil_production_units"
}

// CostElement is a catalogue entry (power, labour, drying...) charged to
// batches. A nil DefaultRate means the element has no default and every use
// must supply a rate.
type CostElement struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Name          string    `json:"name" gorm:"size:128;not null"`
	Category      string    `json:"category" gorm:"size:32"`
	UnitOfMeasure string    `json:"unit_of_measure" gorm:"size:20"`
	DefaultRate   *float64  `json:"default_rate" gorm:"type:decimal(12,4)"`
	IsActive      bool      `json:"is_active" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (CostElement) TableName() string {
	return "oil_cost_elements"
}
