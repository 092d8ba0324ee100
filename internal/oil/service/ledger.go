package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/bitfantasy/nimo-oil/internal/costing"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/google/uuid"
)

// movement describes one change to an inventory position.
type movement struct {
	ItemType      string
	ItemKey       string
	ItemName      string
	TxType        string
	Quantity      float64
	UnitCost      float64
	ReferenceType string
	ReferenceID   string
	ReferenceCode string
	CreatedBy     string
	At            time.Time
}

// ledger applies movements to inventory positions. It must be bound to
// repositories inside a transaction: every read is a row lock.
type ledger struct {
	inv *repository.InventoryRepository
}

// receive folds an inbound movement into its position with the rolling
// weighted average, creating the position on first receipt.
func (l ledger) receive(ctx context.Context, m movement) (*entity.InventoryPosition, error) {
	if err := l.inv.Ensure(ctx, m.ItemType, m.ItemKey, m.ItemName, ""); err != nil {
		return nil, fmt.Errorf("ensure position %s/%s: %w", m.ItemType, m.ItemKey, err)
	}
	pos, err := l.inv.Lock(ctx, m.ItemType, m.ItemKey)
	if err != nil {
		return nil, fmt.Errorf("lock position %s/%s: %w", m.ItemType, m.ItemKey, err)
	}

	before := pos.Quantity
	pos.Quantity, pos.UnitCost = costing.RollingWeightedAverage(pos.Quantity, pos.UnitCost, m.Quantity, m.UnitCost)
	if err := l.inv.SetValuation(ctx, pos.ID, pos.Quantity, pos.UnitCost, m.At); err != nil {
		return nil, fmt.Errorf("update position %s/%s: %w", m.ItemType, m.ItemKey, err)
	}
	if err := l.record(ctx, m, m.Quantity, before, pos.Quantity); err != nil {
		return nil, err
	}
	return pos, nil
}

// reserve locks a position and checks that qty is on hand.
func (l ledger) reserve(ctx context.Context, itemType, itemKey string, qty float64) (*entity.InventoryPosition, error) {
	pos, err := l.inv.Lock(ctx, itemType, itemKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &apperr.InsufficientStockError{ItemType: itemType, ItemKey: itemKey, Available: 0, Requested: qty}
	}
	if err != nil {
		return nil, fmt.Errorf("lock position %s/%s: %w", itemType, itemKey, err)
	}
	if pos.Quantity < qty {
		return nil, &apperr.InsufficientStockError{ItemType: itemType, ItemKey: itemKey, Available: pos.Quantity, Requested: qty}
	}
	return pos, nil
}

// issue takes m.Quantity out of a position previously returned by reserve.
// The issue is valued at the position's average cost.
func (l ledger) issue(ctx context.Context, pos *entity.InventoryPosition, m movement) error {
	ok, err := l.inv.Decrement(ctx, pos.ID, m.Quantity, m.At)
	if err != nil {
		return fmt.Errorf("decrement position %s/%s: %w", pos.ItemType, pos.ItemKey, err)
	}
	if !ok {
		return &apperr.InsufficientStockError{ItemType: pos.ItemType, ItemKey: pos.ItemKey, Available: pos.Quantity, Requested: m.Quantity}
	}
	m.UnitCost = pos.UnitCost
	before := pos.Quantity
	pos.Quantity -= m.Quantity
	return l.record(ctx, m, -m.Quantity, before, pos.Quantity)
}

func (l ledger) record(ctx context.Context, m movement, signedQty, before, after float64) error {
	tx := &entity.InventoryTransaction{
		ID:              uuid.New().String(),
		ItemType:        m.ItemType,
		ItemKey:         m.ItemKey,
		TransactionType: m.TxType,
		Quantity:        signedQty,
		QuantityBefore:  before,
		QuantityAfter:   after,
		UnitCost:        m.UnitCost,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		ReferenceCode:   m.ReferenceCode,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.At,
	}
	if err := l.inv.CreateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("record %s movement: %w", m.TxType, err)
	}
	return nil
}
