package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/bitfantasy/nimo-oil/internal/metrics"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ByproductService lists cake and sludge lots and records their sales. Sales
// never touch the batch that produced the lot.
type ByproductService struct {
	repos   *repository.Repositories
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewByproductService(repos *repository.Repositories, opts Options) *ByproductService {
	return &ByproductService{repos: repos, metrics: opts.Metrics, logger: opts.Logger}
}

func (s *ByproductService) List(ctx context.Context, params repository.ByproductListParams) ([]entity.ByproductLot, int64, error) {
	if params.ByproductType != "" {
		params.ByproductType = strings.ToUpper(params.ByproductType)
	}
	return s.repos.Byproduct.List(ctx, params)
}

type RecordSaleRequest struct {
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
	Buyer    string  `json:"buyer"`
	SoldAt   string  `json:"sold_at"` // YYYY-MM-DD, defaults to today
}

// RecordSale takes qty off a lot's remaining quantity under a row lock and a
// guarded update, so the remainder never goes below zero.
func (s *ByproductService) RecordSale(ctx context.Context, lotID string, req RecordSaleRequest, userID string) (*entity.ByproductSale, error) {
	started := time.Now()
	sale, err := s.recordSale(ctx, lotID, req, userID)
	s.metrics.Observe(metrics.KindSale, started, err)
	if err != nil {
		s.logger.Warn("by-product sale rejected", zap.String("lot_id", lotID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("by-product sale recorded",
		zap.String("lot_id", lotID), zap.Float64("quantity", sale.Quantity), zap.Float64("amount", sale.Amount))
	return sale, nil
}

func (s *ByproductService) recordSale(ctx context.Context, lotID string, req RecordSaleRequest, userID string) (*entity.ByproductSale, error) {
	if req.Quantity <= 0 {
		return nil, &apperr.InvalidQuantityError{Field: "quantity", Value: req.Quantity}
	}
	if err := nonNegative("rate", req.Rate); err != nil {
		return nil, err
	}
	soldAt := time.Now().UTC().Truncate(24 * time.Hour)
	if req.SoldAt != "" {
		t, err := parseDate("sold_at", req.SoldAt)
		if err != nil {
			return nil, err
		}
		soldAt = t
	}

	var sale *entity.ByproductSale
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		lot, err := tx.Byproduct.Lock(ctx, lotID)
		if err != nil {
			return err
		}
		stockErr := &apperr.InsufficientStockError{
			ItemType: entity.ItemTypeByproduct, ItemKey: lot.ID, Available: lot.QuantityRemaining, Requested: req.Quantity,
		}
		if lot.QuantityRemaining < req.Quantity {
			return stockErr
		}
		ok, err := tx.Byproduct.DecrementRemaining(ctx, lot.ID, req.Quantity)
		if err != nil {
			return fmt.Errorf("decrement lot %s: %w", lot.ID, err)
		}
		if !ok {
			return stockErr
		}

		now := time.Now()
		sale = &entity.ByproductSale{
			ID:        uuid.New().String(),
			LotID:     lot.ID,
			Quantity:  req.Quantity,
			Rate:      req.Rate,
			Amount:    req.Quantity * req.Rate,
			Buyer:     req.Buyer,
			SoldAt:    soldAt,
			CreatedBy: userID,
			CreatedAt: now,
		}
		if err := tx.Byproduct.CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		return ledger{inv: tx.Inventory}.record(ctx, movement{
			ItemType:      entity.ItemTypeByproduct,
			ItemKey:       lot.ID,
			TxType:        entity.TxTypeByproductSale,
			UnitCost:      req.Rate,
			ReferenceType: entity.RefTypeSale,
			ReferenceID:   sale.ID,
			ReferenceCode: lot.BatchLineageCode,
			CreatedBy:     userID,
			At:            now,
		}, -req.Quantity, lot.QuantityRemaining, lot.QuantityRemaining-req.Quantity)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}
