package entity

import "time"

// Blend mixes oil lots into one identified lot.
type Blend struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	LineageCode      string    `json:"lineage_code" gorm:"size:64;not null;uniqueIndex"`
	OilPrefix        string    `json:"oil_prefix" gorm:"size:8;not null"`
	SupplierInitials string    `json:"supplier_initials" gorm:"size:8;not null"`
	ProductionUnitID string    `json:"production_unit_id" gorm:"size:36;not null"`
	BlendDate        time.Time `json:"blend_date" gorm:"not null"`
	Notes            string    `json:"notes" gorm:"type:text"`
	CreatedBy        string    `json:"created_by" gorm:"size:64;not null"`
	CreatedAt        time.Time `json:"created_at"`

	Components []BlendComponent `json:"components,omitempty" gorm:"foreignKey:BlendID"`
}

func (Blend) TableName() string {
	return "oil_blends"
}

// BlendComponent is one input lot of a blend, in submission order.
type BlendComponent struct {
	ID            string  `json:"id" gorm:"primaryKey;size:36"`
	BlendID       string  `json:"blend_id" gorm:"size:36;not null;index"`
	Seq           int     `json:"seq" gorm:"not null"`
	ComponentCode string  `json:"component_code" gorm:"size:64;not null;index"`
	Percentage    float64 `json:"percentage" gorm:"type:decimal(6,2);not null"`
}

func (BlendComponent) TableName() string {
	return "oil_blend_components"
}
