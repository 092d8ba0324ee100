package entity

import "time"

// Inventory item types
const (
	ItemTypeMaterial  = "MATERIAL"  // key: material id
	ItemTypeOilType   = "OIL_TYPE"  // key: oil type name
	ItemTypeByproduct = "BYPRODUCT" // key: by-product lot id
)

// Inventory transaction types
const (
	TxTypePurchaseIn    = "PURCHASE_IN"
	TxTypeProductionOut = "PRODUCTION_OUT"
	TxTypeProductionIn  = "PRODUCTION_IN"
	TxTypeByproductIn   = "BYPRODUCT_IN"
	TxTypeByproductSale = "BYPRODUCT_SALE"
)

// Reference types on inventory transactions
const (
	RefTypePurchase = "PURCHASE"
	RefTypeBatch    = "BATCH"
	RefTypeSale     = "SALE"
)

// InventoryPosition is the running quantity and weighted-average unit cost of
// one material or oil type.
type InventoryPosition struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	ItemType    string     `json:"item_type" gorm:"size:12;not null;uniqueIndex:idx_oil_position_item"`
	ItemKey     string     `json:"item_key" gorm:"size:64;not null;uniqueIndex:idx_oil_position_item"`
	ItemName    string     `json:"item_name" gorm:"size:128"`
	Quantity    float64    `json:"quantity" gorm:"type:decimal(14,4);not null;default:0"`
	UnitCost    float64    `json:"unit_cost" gorm:"type:decimal(12,4);not null;default:0"`
	Unit        string     `json:"unit" gorm:"size:20;not null;default:kg"`
	LastMovedAt *time.Time `json:"last_moved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (InventoryPosition) TableName() string {
	return "oil_inventory_positions"
}

// InventoryTransaction records one movement with the quantity before and after.
type InventoryTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	ItemType        string    `json:"item_type" gorm:"size:12;not null;index:idx_oil_tx_item"`
	ItemKey         string    `json:"item_key" gorm:"size:64;not null;index:idx_oil_tx_item"`
	TransactionType string    `json:"transaction_type" gorm:"size:20;not null"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(14,4);not null"` // positive in, negative out
	QuantityBefore  float64   `json:"quantity_before" gorm:"type:decimal(14,4);not null"`
	QuantityAfter   float64   `json:"quantity_after" gorm:"type:decimal(14,4);not null"`
	UnitCost        float64   `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	ReferenceType   string    `json:"reference_type" gorm:"size:20;not null"`
	ReferenceID     string    `json:"reference_id" gorm:"size:36;not null"`
	ReferenceCode   string    `json:"reference_code" gorm:"size:64"`
	CreatedBy       string    `json:"created_by" gorm:"size:64;not null"`
	CreatedAt       time.Time `json:"created_at"`
}

func (InventoryTransaction) TableName() string {
	return "oil_inventory_transactions"
}
