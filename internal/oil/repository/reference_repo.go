package repository

import (
	"context"

	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"gorm.io/gorm"
)

// ReferenceRepository reads the master data owned by other services.
type ReferenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) GetMaterial(ctx context.Context, id string) (*entity.Material, error) {
	var m entity.Material
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, "material", id)
	}
	return &m, nil
}

func (r *ReferenceRepository) GetSupplier(ctx context.Context, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, notFound(err, "supplier", id)
	}
	return &s, nil
}

// GetPrimaryUnit returns the production unit flagged primary. With several
// flagged, the oldest wins.
func (r *ReferenceRepository) GetPrimaryUnit(ctx context.Context) (*entity.ProductionUnit, error) {
	var u entity.ProductionUnit
	err := r.db.WithContext(ctx).Where("is_primary = ?", true).
		Order("created_at ASC").Order("id ASC").First(&u).Error
	if err != nil {
		return nil, notFound(err, "production_unit", "primary")
	}
	return &u, nil
}

// ListCostElements returns the active catalogue entries among ids.
func (r *ReferenceRepository) ListCostElements(ctx context.Context, ids []string) ([]entity.CostElement, error) {
	var items []entity.CostElement
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&items).Error
	return items, err
}
