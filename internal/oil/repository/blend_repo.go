package repository

import (
	"context"

	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"gorm.io/gorm"
)

type BlendRepository struct {
	db *gorm.DB
}

func NewBlendRepository(db *gorm.DB) *BlendRepository {
	return &BlendRepository{db: db}
}

// Create inserts the blend together with its components.
func (r *BlendRepository) Create(ctx context.Context, blend *entity.Blend) error {
	err := r.db.WithContext(ctx).Create(blend).Error
	return duplicate(err, "blend", blend.LineageCode)
}

func (r *BlendRepository) GetByLineageCode(ctx context.Context, code string) (*entity.Blend, error) {
	var blend entity.Blend
	err := r.db.WithContext(ctx).
		Preload("Components", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("lineage_code = ?", code).First(&blend).Error
	if err != nil {
		return nil, notFound(err, "blend", code)
	}
	return &blend, nil
}

func (r *BlendRepository) ExistsCode(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Blend{}).Where("lineage_code = ?", code).Count(&n).Error
	return n > 0, err
}
