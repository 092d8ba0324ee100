package repository

import (
	"context"

	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
)

// CounterValue returns the stored value of a serial counter, or 0 when it does
// not exist.
func CounterValue(ctx context.Context, r *SerialRepository, scopeType, scopeKey string) (int64, error) {
	var counter entity.SerialCounter
	err := r.db.WithContext(ctx).Where("scope_type = ? AND scope_key = ?", scopeType, scopeKey).Limit(1).Find(&counter).Error
	return counter.Value, err
}
