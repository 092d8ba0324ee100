package entity

import "time"

// PurchaseLine is one received lot of raw material. Its lineage code and cost
// fields are immutable once written.
type PurchaseLine struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	LineageCode    string    `json:"lineage_code" gorm:"size:64;not null;uniqueIndex"`
	MaterialID     string    `json:"material_id" gorm:"size:36;not null;index:idx_oil_purchase_material_date"`
	SupplierID     string    `json:"supplier_id" gorm:"size:36;not null;index"`
	FinancialYear  string    `json:"financial_year" gorm:"size:7;not null"`
	Serial         int64     `json:"serial" gorm:"not null"`
	PurchaseDate   time.Time `json:"purchase_date" gorm:"not null;index:idx_oil_purchase_material_date"`
	Quantity       float64   `json:"quantity" gorm:"type:decimal(14,4);not null"`
	Rate           float64   `json:"rate" gorm:"type:decimal(12,4);not null"`
	GSTRate        float64   `json:"gst_rate" gorm:"type:decimal(6,2);default:0"`
	Transport      float64   `json:"transport" gorm:"type:decimal(12,4);default:0"`
	Handling       float64   `json:"handling" gorm:"type:decimal(12,4);default:0"`
	Amount         float64   `json:"amount" gorm:"type:decimal(14,4);not null"`
	GSTAmount      float64   `json:"gst_amount" gorm:"type:decimal(14,4);default:0"`
	TotalAmount    float64   `json:"total_amount" gorm:"type:decimal(14,4);not null"`
	LandedUnitCost float64   `json:"landed_unit_cost" gorm:"type:decimal(12,4);not null"`
	Notes          string    `json:"notes" gorm:"type:text"`
	CreatedBy      string    `json:"created_by" gorm:"size:64;not null"`
	CreatedAt      time.Time `json:"created_at"`

	Material *Material `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (PurchaseLine) TableName() string {
	return "oil_purchase_lines"
}
