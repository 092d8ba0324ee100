package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned, wrapped with the entity and key, when a lookup
// matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned, wrapped with the entity and key, when an insert
// hits a unique constraint. The pool must be opened with TranslateError.
var ErrDuplicate = errors.New("duplicate key")

func duplicate(err error, entity, key string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s %s: %w", entity, key, ErrDuplicate)
	}
	return err
}

func notFound(err error, entity, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", entity, key, ErrNotFound)
	}
	return err
}

// Repositories groups the oil ledger repositories over one *gorm.DB, which is
// either the pool or an open transaction.
type Repositories struct {
	db *gorm.DB

	Reference *ReferenceRepository
	Serial    *SerialRepository
	Purchase  *PurchaseRepository
	Batch     *BatchRepository
	Blend     *BlendRepository
	Inventory *InventoryRepository
	Byproduct *ByproductRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:        db,
		Reference: NewReferenceRepository(db),
		Serial:    NewSerialRepository(db),
		Purchase:  NewPurchaseRepository(db),
		Batch:     NewBatchRepository(db),
		Blend:     NewBlendRepository(db),
		Inventory: NewInventoryRepository(db),
		Byproduct: NewByproductRepository(db),
	}
}

// WithTx returns a copy bound to tx.
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return NewRepositories(tx)
}

// Transaction runs fn in one database transaction. Returning an error from fn
// rolls everything back; a cancelled ctx aborts the transaction.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// DB returns the underlying handle.
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 200 {
		size = 200
	}
	return page, size
}
