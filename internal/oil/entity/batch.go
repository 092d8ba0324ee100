package entity

import "time"

// Batch is one extraction run. Cost fields are written once at creation.
type Batch struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	LineageCode      string    `json:"lineage_code" gorm:"size:64;not null;uniqueIndex"`
	SeedLineageCode  string    `json:"seed_lineage_code" gorm:"size:64;not null;index"`
	Serial           int64     `json:"serial" gorm:"not null"`
	MaterialID       string    `json:"material_id" gorm:"size:36;not null;index"`
	OilType          string    `json:"oil_type" gorm:"size:64;not null"`
	ProductionUnitID string    `json:"production_unit_id" gorm:"size:36;not null"`
	ProductionDate   time.Time `json:"production_date" gorm:"not null"`

	PreDryQty   float64 `json:"pre_dry_qty" gorm:"type:decimal(14,4);not null"`
	PostDryQty  float64 `json:"post_dry_qty" gorm:"type:decimal(14,4);not null"`
	OilYield    float64 `json:"oil_yield" gorm:"type:decimal(14,4);not null;default:0"`
	CakeYield   float64 `json:"cake_yield" gorm:"type:decimal(14,4);not null;default:0"`
	SludgeYield float64 `json:"sludge_yield" gorm:"type:decimal(14,4);not null;default:0"`
	CakeRate    float64 `json:"cake_rate" gorm:"type:decimal(12,4);default:0"`
	SludgeRate  float64 `json:"sludge_rate" gorm:"type:decimal(12,4);default:0"`

	DirectCost          float64 `json:"direct_cost" gorm:"type:decimal(14,4);default:0"`
	CostElementTotal    float64 `json:"cost_element_total" gorm:"type:decimal(14,4);default:0"`
	TotalProductionCost float64 `json:"total_production_cost" gorm:"type:decimal(14,4);not null"`
	CakeCredit          float64 `json:"cake_credit" gorm:"type:decimal(14,4);default:0"`
	SludgeCredit        float64 `json:"sludge_credit" gorm:"type:decimal(14,4);default:0"`
	NetOilCost          float64 `json:"net_oil_cost" gorm:"type:decimal(14,4);not null"`
	OilCostPerKg        float64 `json:"oil_cost_per_kg" gorm:"type:decimal(12,4);not null"`

	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedBy string    `json:"created_by" gorm:"size:64;not null"`
	CreatedAt time.Time `json:"created_at"`

	CostElements []BatchCostElement `json:"cost_elements,omitempty" gorm:"foreignKey:BatchID"`
	Byproducts   []ByproductLot     `json:"byproducts,omitempty" gorm:"foreignKey:BatchID"`
}

func (Batch) TableName() string {
	return "oil_batches"
}

// BatchCostElement is one resolved cost element of a batch, unique per
// (batch, element).
type BatchCostElement struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	BatchID       string    `json:"batch_id" gorm:"size:36;not null;uniqueIndex:idx_oil_batch_element"`
	CostElementID string    `json:"cost_element_id" gorm:"size:36;not null;uniqueIndex:idx_oil_batch_element"`
	Quantity      float64   `json:"quantity" gorm:"type:decimal(14,4);not null"`
	Rate          float64   `json:"rate" gorm:"type:decimal(12,4);not null"`
	TotalCost     float64   `json:"total_cost" gorm:"type:decimal(14,4);not null"`
	Overridden    bool      `json:"overridden" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (BatchCostElement) TableName() string {
	return "oil_batch_cost_elements"
}
