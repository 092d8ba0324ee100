package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/lineage"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SerialRepository allocates lineage serials from persisted counters. Every
// allocation is a single atomic statement or runs under a row lock, so any
// number of service instances share one sequence per scope key.
type SerialRepository struct {
	db *gorm.DB
}

func NewSerialRepository(db *gorm.DB) *SerialRepository {
	return &SerialRepository{db: db}
}

// PurchaseScopeKey is the counter key of a (material, supplier, financial year)
// purchase scope.
func PurchaseScopeKey(materialID, supplierID, financialYear string) string {
	return strings.Join([]string{materialID, supplierID, financialYear}, "|")
}

// NextPurchaseSerial returns the next serial for the purchase scope, starting
// at 1. Insert-or-increment happens in one statement.
func (r *SerialRepository) NextPurchaseSerial(ctx context.Context, materialID, supplierID, financialYear string) (int64, error) {
	key := PurchaseScopeKey(materialID, supplierID, financialYear)
	now := time.Now()
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO oil_serial_counters (id, scope_type, scope_key, value, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT (scope_type, scope_key)
		DO UPDATE SET value = oil_serial_counters.value + 1, updated_at = ?
		RETURNING value
	`, uuid.New().String(), entity.SerialScopePurchase, key, now, now, now).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("allocate purchase serial %s: %w", key, err)
	}
	return value, nil
}

// BatchDayScopeKey is the counter key shared by every batch of one oil material
// code and seed date, the scope in which batch codes must be unique.
func BatchDayScopeKey(oilMaterialCode, seedDateStr string) string {
	return oilMaterialCode + "|" + seedDateStr
}

// NextBatchSerial returns the next batch serial for a seed lot. Batch codes are
// unique per oil material code and seed date, so sibling seed lots (the same
// material bought from two suppliers on one day) draw from one sequence: the
// day counter is locked first, then the seed counter, and both are folded with
// the highest serial found among existing batch codes so drift from manual
// fixes heals itself. Everything runs in one transaction (a savepoint when r
// is already bound to one).
func (r *SerialRepository) NextBatchSerial(ctx context.Context, seedLineageCode, oilMaterialCode, seedDateStr string) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		day, err := lockCounter(tx, entity.SerialScopeBatchDay, BatchDayScopeKey(oilMaterialCode, seedDateStr), now)
		if err != nil {
			return err
		}
		seed, err := lockCounter(tx, entity.SerialScopeBatch, seedLineageCode, now)
		if err != nil {
			return err
		}

		observed, err := maxObservedBatchSerial(tx, oilMaterialCode, seedDateStr)
		if err != nil {
			return err
		}

		next = max(day.Value, seed.Value, observed) + 1
		return tx.Model(&entity.SerialCounter{}).Where("id IN ?", []string{day.ID, seed.ID}).
			Updates(map[string]interface{}{"value": next, "updated_at": now}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("allocate batch serial %s: %w", seedLineageCode, err)
	}
	return next, nil
}

// lockCounter creates the counter row if missing and takes a row lock on it.
func lockCounter(tx *gorm.DB, scopeType, scopeKey string, now time.Time) (entity.SerialCounter, error) {
	row := entity.SerialCounter{
		ID:        uuid.New().String(),
		ScopeType: scopeType,
		ScopeKey:  scopeKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope_type"}, {Name: "scope_key"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return entity.SerialCounter{}, fmt.Errorf("ensure %s counter: %w", scopeType, err)
	}

	var counter entity.SerialCounter
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("scope_type = ? AND scope_key = ?", scopeType, scopeKey).
		First(&counter).Error
	if err != nil {
		return entity.SerialCounter{}, fmt.Errorf("lock %s counter: %w", scopeType, err)
	}
	return counter, nil
}

// maxObservedBatchSerial scans the prefix-matched batch codes of one oil
// material code and seed date. Codes that fail to decode are skipped; legacy
// codes carry serial 0.
func maxObservedBatchSerial(tx *gorm.DB, oilMaterialCode, seedDateStr string) (int64, error) {
	pattern := lineage.BatchScanPrefix(oilMaterialCode) + "%" + lineage.Separator + seedDateStr + lineage.Separator + "%"
	var codes []string
	err := tx.Model(&entity.Batch{}).Where("lineage_code LIKE ?", pattern).Pluck("lineage_code", &codes).Error
	if err != nil {
		return 0, fmt.Errorf("scan batch codes: %w", err)
	}
	var observed int64
	for _, code := range codes {
		decoded, err := lineage.DecodeProduction(code)
		if err != nil || decoded.MaterialCode != oilMaterialCode || decoded.DateStr != seedDateStr {
			continue
		}
		observed = max(observed, decoded.Serial)
	}
	return observed, nil
}
