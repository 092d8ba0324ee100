package repository

import (
	"context"

	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"gorm.io/gorm"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(ctx context.Context, line *entity.PurchaseLine) error {
	err := r.db.WithContext(ctx).Omit("Material", "Supplier").Create(line).Error
	return duplicate(err, "purchase line", line.LineageCode)
}

func (r *PurchaseRepository) GetByLineageCode(ctx context.Context, code string) (*entity.PurchaseLine, error) {
	var line entity.PurchaseLine
	if err := r.db.WithContext(ctx).Where("lineage_code = ?", code).First(&line).Error; err != nil {
		return nil, notFound(err, "purchase_line", code)
	}
	return &line, nil
}

// LatestForMaterial returns the most recent purchase line of a material: by
// purchase date, then serial, then insertion time.
func (r *PurchaseRepository) LatestForMaterial(ctx context.Context, materialID string) (*entity.PurchaseLine, error) {
	var line entity.PurchaseLine
	err := r.db.WithContext(ctx).Where("material_id = ?", materialID).
		Order("purchase_date DESC").Order("serial DESC").Order("created_at DESC").
		First(&line).Error
	if err != nil {
		return nil, notFound(err, "purchase_line", "latest for material "+materialID)
	}
	return &line, nil
}

func (r *PurchaseRepository) ExistsCode(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.PurchaseLine{}).Where("lineage_code = ?", code).Count(&n).Error
	return n > 0, err
}
