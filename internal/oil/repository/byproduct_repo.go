package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ByproductRepository struct {
	db *gorm.DB
}

func NewByproductRepository(db *gorm.DB) *ByproductRepository {
	return &ByproductRepository{db: db}
}

func (r *ByproductRepository) CreateLot(ctx context.Context, lot *entity.ByproductLot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

// LatestEstimatedRate returns the estimated rate of the newest lot of the
// given type that carries a positive rate.
func (r *ByproductRepository) LatestEstimatedRate(ctx context.Context, byproductType string) (float64, bool, error) {
	var lots []entity.ByproductLot
	err := r.db.WithContext(ctx).
		Where("byproduct_type = ? AND estimated_rate > 0", byproductType).
		Order("created_at DESC").Limit(1).Find(&lots).Error
	if err != nil || len(lots) == 0 {
		return 0, false, err
	}
	return lots[0].EstimatedRate, true, nil
}

func (r *ByproductRepository) Lock(ctx context.Context, id string) (*entity.ByproductLot, error) {
	var lot entity.ByproductLot
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&lot).Error
	if err != nil {
		return nil, notFound(err, "byproduct_lot", id)
	}
	return &lot, nil
}

// DecrementRemaining takes qty off a lot only while enough remains. It reports
// false, without error, when the guard rejected the update.
func (r *ByproductRepository) DecrementRemaining(ctx context.Context, id string, qty float64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.ByproductLot{}).
		Where("id = ? AND quantity_remaining >= ?", id, qty).
		Updates(map[string]interface{}{
			"quantity_remaining": gorm.Expr("quantity_remaining - ?", qty),
			"updated_at":         time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *ByproductRepository) CreateSale(ctx context.Context, sale *entity.ByproductSale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

type ByproductListParams struct {
	ByproductType string
	BatchID       string
	Available     bool
	Page          int
	Size          int
}

func (r *ByproductRepository) List(ctx context.Context, params ByproductListParams) ([]entity.ByproductLot, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ByproductLot{})
	if params.ByproductType != "" {
		query = query.Where("byproduct_type = ?", params.ByproductType)
	}
	if params.BatchID != "" {
		query = query.Where("batch_id = ?", params.BatchID)
	}
	if params.Available {
		query = query.Where("quantity_remaining > 0")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page, size := normalizePage(params.Page, params.Size)
	var lots []entity.ByproductLot
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&lots).Error
	return lots, total, err
}
