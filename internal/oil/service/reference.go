package service

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/bitfantasy/nimo-oil/internal/oil/cache"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
)

// referenceReader resolves master data through the cache, translating missing
// rows into ReferenceDataError.
type referenceReader struct {
	repo  *repository.ReferenceRepository
	cache *cache.ReferenceCache
}

func newReferenceReader(repo *repository.ReferenceRepository, c *cache.ReferenceCache) referenceReader {
	return referenceReader{repo: repo, cache: c}
}

func (r referenceReader) material(ctx context.Context, id string) (*entity.Material, error) {
	m, err := cache.Fetch(ctx, r.cache, cache.MaterialKey(id), func(ctx context.Context) (*entity.Material, error) {
		return r.repo.GetMaterial(ctx, id)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &apperr.ReferenceDataError{Entity: "material", ID: id, Field: "id", Message: "does not exist"}
	}
	return m, err
}

func (r referenceReader) supplier(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := cache.Fetch(ctx, r.cache, cache.SupplierKey(id), func(ctx context.Context) (*entity.Supplier, error) {
		return r.repo.GetSupplier(ctx, id)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &apperr.ReferenceDataError{Entity: "supplier", ID: id, Field: "id", Message: "does not exist"}
	}
	return s, err
}

func (r referenceReader) primaryUnit(ctx context.Context) (*entity.ProductionUnit, error) {
	u, err := cache.Fetch(ctx, r.cache, cache.PrimaryUnitKey(), r.repo.GetPrimaryUnit)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &apperr.ReferenceDataError{Entity: "production_unit", Field: "is_primary", Message: "no primary production unit is configured"}
	}
	return u, err
}

// forget drops cached master data that just failed a check, so a corrected
// record is read on the next submission instead of after the TTL. A failed
// delete leaves the entry to expire.
func (r referenceReader) forget(ctx context.Context, keys ...string) {
	_ = r.cache.Invalidate(ctx, keys...)
}
