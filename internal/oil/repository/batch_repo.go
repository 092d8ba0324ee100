package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts the batch row only; cost elements and by-product lots are
// written through their own methods.
func (r *BatchRepository) Create(ctx context.Context, batch *entity.Batch) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(batch).Error
	return duplicate(err, "batch", batch.LineageCode)
}

func (r *BatchRepository) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	var batch entity.Batch
	err := r.db.WithContext(ctx).
		Preload("CostElements").
		Preload("Byproducts").
		Where("id = ?", id).First(&batch).Error
	if err != nil {
		return nil, notFound(err, "batch", id)
	}
	return &batch, nil
}

func (r *BatchRepository) GetByLineageCode(ctx context.Context, code string) (*entity.Batch, error) {
	var batch entity.Batch
	if err := r.db.WithContext(ctx).Where("lineage_code = ?", code).First(&batch).Error; err != nil {
		return nil, notFound(err, "batch", code)
	}
	return &batch, nil
}

func (r *BatchRepository) ExistsCode(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Batch{}).Where("lineage_code = ?", code).Count(&n).Error
	return n > 0, err
}

// UpsertCostElements writes cost elements keyed by (batch, element).
// Resubmitting an element overwrites its figures.
func (r *BatchRepository) UpsertCostElements(ctx context.Context, items []entity.BatchCostElement) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now()
	for i := range items {
		items[i].UpdatedAt = now
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "batch_id"}, {Name: "cost_element_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "rate", "total_cost", "overridden", "updated_at"}),
	}).Create(&items).Error
}

func (r *BatchRepository) ListCostElements(ctx context.Context, batchID string) ([]entity.BatchCostElement, error) {
	var items []entity.BatchCostElement
	err := r.db.WithContext(ctx).Where("batch_id = ?", batchID).Order("cost_element_id").Find(&items).Error
	return items, err
}
