package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Ensure creates an empty position for (itemType, itemKey) unless one exists.
func (r *InventoryRepository) Ensure(ctx context.Context, itemType, itemKey, itemName, unit string) error {
	if unit == "" {
		unit = "kg"
	}
	pos := entity.InventoryPosition{
		ID:       uuid.New().String(),
		ItemType: itemType,
		ItemKey:  itemKey,
		ItemName: itemName,
		Unit:     unit,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_type"}, {Name: "item_key"}},
		DoNothing: true,
	}).Create(&pos).Error
}

// Lock reads a position with SELECT ... FOR UPDATE. Call it inside a
// transaction.
func (r *InventoryRepository) Lock(ctx context.Context, itemType, itemKey string) (*entity.InventoryPosition, error) {
	var pos entity.InventoryPosition
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_type = ? AND item_key = ?", itemType, itemKey).First(&pos).Error
	if err != nil {
		return nil, notFound(err, "inventory_position", itemType+"/"+itemKey)
	}
	return &pos, nil
}

func (r *InventoryRepository) Get(ctx context.Context, itemType, itemKey string) (*entity.InventoryPosition, error) {
	var pos entity.InventoryPosition
	err := r.db.WithContext(ctx).Where("item_type = ? AND item_key = ?", itemType, itemKey).First(&pos).Error
	if err != nil {
		return nil, notFound(err, "inventory_position", itemType+"/"+itemKey)
	}
	return &pos, nil
}

// SetValuation overwrites quantity and unit cost of a locked position.
func (r *InventoryRepository) SetValuation(ctx context.Context, id string, quantity, unitCost float64, movedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.InventoryPosition{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":      quantity,
			"unit_cost":     unitCost,
			"last_moved_at": movedAt,
			"updated_at":    movedAt,
		}).Error
}

// Decrement removes qty from a position only if enough is on hand. It reports
// false, without error, when the guard rejected the update.
func (r *InventoryRepository) Decrement(ctx context.Context, id string, qty float64, movedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.InventoryPosition{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Updates(map[string]interface{}{
			"quantity":      gorm.Expr("quantity - ?", qty),
			"last_moved_at": movedAt,
			"updated_at":    movedAt,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *InventoryRepository) CreateTransaction(ctx context.Context, tx *entity.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

type InventoryListParams struct {
	ItemType string
	ItemKey  string
	Keyword  string
	InStock  bool
	Page     int
	Size     int
}

func (r *InventoryRepository) List(ctx context.Context, params InventoryListParams) ([]entity.InventoryPosition, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.InventoryPosition{})
	if params.ItemType != "" {
		query = query.Where("item_type = ?", params.ItemType)
	}
	if params.ItemKey != "" {
		query = query.Where("item_key = ?", params.ItemKey)
	}
	if params.Keyword != "" {
		kw := "%" + strings.ToLower(params.Keyword) + "%"
		query = query.Where("LOWER(item_key) LIKE ? OR LOWER(item_name) LIKE ?", kw, kw)
	}
	if params.InStock {
		query = query.Where("quantity > 0")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page, size := normalizePage(params.Page, params.Size)
	var items []entity.InventoryPosition
	err := query.Order("item_type ASC").Order("item_key ASC").
		Offset((page - 1) * size).Limit(size).Find(&items).Error
	return items, total, err
}

func (r *InventoryRepository) ListTransactions(ctx context.Context, itemType, itemKey string, page, size int) ([]entity.InventoryTransaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.InventoryTransaction{})
	if itemType != "" {
		query = query.Where("item_type = ?", itemType)
	}
	if itemKey != "" {
		query = query.Where("item_key = ?", itemKey)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page, size = normalizePage(page, size)
	var txs []entity.InventoryTransaction
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&txs).Error
	return txs, total, err
}
