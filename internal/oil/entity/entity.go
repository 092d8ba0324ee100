package entity

import "gorm.io/gorm"

// AutoMigrate creates or updates every oil ledger table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// reference data
		&Material{},
		&Supplier{},
		&ProductionUnit{},
		&CostElement{},

		// lineage
		&SerialCounter{},
		&PurchaseLine{},
		&Batch{},
		&BatchCostElement{},
		&Blend{},
		&BlendComponent{},

		// inventory
		&InventoryPosition{},
		&InventoryTransaction{},

		// by-products
		&ByproductLot{},
		&ByproductSale{},
	)
}
