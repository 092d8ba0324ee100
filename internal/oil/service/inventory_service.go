package service

import (
	"context"

	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
)

// InventoryService reads positions and their movement history.
type InventoryService struct {
	repo *repository.InventoryRepository
}

func NewInventoryService(repos *repository.Repositories) *InventoryService {
	return &InventoryService{repo: repos.Inventory}
}

func (s *InventoryService) List(ctx context.Context, params repository.InventoryListParams) ([]entity.InventoryPosition, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *InventoryService) Get(ctx context.Context, itemType, itemKey string) (*entity.InventoryPosition, error) {
	return s.repo.Get(ctx, itemType, itemKey)
}

func (s *InventoryService) ListTransactions(ctx context.Context, itemType, itemKey string, page, size int) ([]entity.InventoryTransaction, int64, error) {
	return s.repo.ListTransactions(ctx, itemType, itemKey, page, size)
}
