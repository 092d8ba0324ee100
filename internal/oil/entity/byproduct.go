package entity

import "time"

// By-product types
const (
	ByproductCake   = "CAKE"
	ByproductSludge = "SLUDGE"
)

// ByproductLot is the cake or sludge produced by one batch. EstimatedRate is
// the rate netted against the batch cost; sales never change it.
type ByproductLot struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	BatchID           string    `json:"batch_id" gorm:"size:36;not null;index"`
	BatchLineageCode  string    `json:"batch_lineage_code" gorm:"size:64;not null"`
	ByproductType     string    `json:"byproduct_type" gorm:"size:10;not null;index"`
	QuantityProduced  float64   `json:"quantity_produced" gorm:"type:decimal(14,4);not null"`
	QuantityRemaining float64   `json:"quantity_remaining" gorm:"type:decimal(14,4);not null"`
	EstimatedRate     float64   `json:"estimated_rate" gorm:"type:decimal(12,4);not null"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (ByproductLot) TableName() string {
	return "oil_byproduct_lots"
}

// ByproductSale is a realised sale against a lot.
type ByproductSale struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	LotID     string    `json:"lot_id" gorm:"size:36;not null;index"`
	Quantity  float64   `json:"quantity" gorm:"type:decimal(14,4);not null"`
	Rate      float64   `json:"rate" gorm:"type:decimal(12,4);not null"`
	Amount    float64   `json:"amount" gorm:"type:decimal(14,4);not null"`
	Buyer     string    `json:"buyer" gorm:"size:128"`
	SoldAt    time.Time `json:"sold_at" gorm:"not null"`
	CreatedBy string    `json:"created_by" gorm:"size:64;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (ByproductSale) TableName() string {
	return "oil_byproduct_sales"
}
