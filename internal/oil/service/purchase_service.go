package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/bitfantasy/nimo-oil/internal/costing"
	"github.com/bitfantasy/nimo-oil/internal/lineage"
	"github.com/bitfantasy/nimo-oil/internal/metrics"
	"github.com/bitfantasy/nimo-oil/internal/oil/cache"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseService records received raw material and mints its lineage code.
type PurchaseService struct {
	repos   *repository.Repositories
	cache   *cache.ReferenceCache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewPurchaseService(repos *repository.Repositories, opts Options) *PurchaseService {
	return &PurchaseService{repos: repos, cache: opts.Cache, metrics: opts.Metrics, logger: opts.Logger}
}

type SubmitPurchaseRequest struct {
	MaterialID   string  `json:"material_id" binding:"required"`
	SupplierID   string  `json:"supplier_id" binding:"required"`
	PurchaseDate string  `json:"purchase_date" binding:"required"` // YYYY-MM-DD
	Quantity     float64 `json:"quantity"`
	Rate         float64 `json:"rate"`
	GSTRate      float64 `json:"gst_rate"`
	Transport    float64 `json:"transport"`
	Handling     float64 `json:"handling"`
	Notes        string  `json:"notes"`
}

type PurchaseResult struct {
	ID            string         `json:"id"`
	LineageCode   string         `json:"lineage_code"`
	Serial        int64          `json:"serial"`
	FinancialYear string         `json:"financial_year"`
	UnitCost      float64        `json:"unit_cost"`
	Landed        costing.Landed `json:"landed"`
}

// Submit validates and costs a purchase line, allocates its serial within
// (material, supplier, financial year), and receives the quantity into the
// material's inventory position at the landed unit cost. All of it commits or
// none of it does.
func (s *PurchaseService) Submit(ctx context.Context, req SubmitPurchaseRequest, userID string) (*PurchaseResult, error) {
	started := time.Now()
	result, err := s.submit(ctx, req, userID)
	s.metrics.Observe(metrics.KindPurchase, started, err)
	if err != nil {
		s.logger.Warn("purchase rejected",
			zap.String("material_id", req.MaterialID),
			zap.String("supplier_id", req.SupplierID),
			zap.Error(err))
		return nil, err
	}
	s.metrics.SerialAllocated(entity.SerialScopePurchase)
	s.logger.Info("purchase committed",
		zap.String("lineage_code", result.LineageCode),
		zap.Float64("quantity", req.Quantity),
		zap.Float64("unit_cost", result.UnitCost))
	return result, nil
}

func (s *PurchaseService) submit(ctx context.Context, req SubmitPurchaseRequest, userID string) (*PurchaseResult, error) {
	date, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	landed, err := costing.LandedUnitCost(req.Quantity, req.Rate, req.GSTRate, req.Transport, req.Handling)
	if err != nil {
		return nil, err
	}
	fy := lineage.FinancialYear(date)

	var result *PurchaseResult
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		ref := newReferenceReader(tx.Reference, s.cache)
		material, err := ref.material(ctx, req.MaterialID)
		if err != nil {
			return err
		}
		supplier, err := ref.supplier(ctx, req.SupplierID)
		if err != nil {
			return err
		}

		serial, err := tx.Serial.NextPurchaseSerial(ctx, material.ID, supplier.ID, fy)
		if err != nil {
			return err
		}
		code, err := lineage.EncodePurchase(lineage.PurchaseFields{
			MaterialID:   material.ID,
			MaterialCode: material.ShortCode,
			SupplierID:   supplier.ID,
			SupplierCode: supplier.ShortCode,
			Serial:       serial,
			Date:         date,
		})
		if err != nil {
			if apperr.IsReferenceData(err) {
				ref.forget(ctx, cache.MaterialKey(material.ID), cache.SupplierKey(supplier.ID))
			}
			return err
		}
		exists, err := tx.Purchase.ExistsCode(ctx, code)
		if err != nil {
			return fmt.Errorf("check lineage code: %w", err)
		}
		if exists {
			return &apperr.CollisionError{Code: code, Entity: "purchase_line"}
		}

		now := time.Now()
		line := &entity.PurchaseLine{
			ID:             uuid.New().String(),
			LineageCode:    code,
			MaterialID:     material.ID,
			SupplierID:     supplier.ID,
			FinancialYear:  fy,
			Serial:         serial,
			PurchaseDate:   date,
			Quantity:       req.Quantity,
			Rate:           req.Rate,
			GSTRate:        req.GSTRate,
			Transport:      req.Transport,
			Handling:       req.Handling,
			Amount:         landed.Amount,
			GSTAmount:      landed.GST,
			TotalAmount:    landed.Total,
			LandedUnitCost: landed.UnitCost,
			Notes:          req.Notes,
			CreatedBy:      userID,
			CreatedAt:      now,
		}
		if err := tx.Purchase.Create(ctx, line); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return &apperr.CollisionError{Code: line.LineageCode, Entity: "purchase_line"}
			}
			return fmt.Errorf("create purchase line: %w", err)
		}

		_, err = ledger{inv: tx.Inventory}.receive(ctx, movement{
			ItemType:      entity.ItemTypeMaterial,
			ItemKey:       material.ID,
			ItemName:      material.Name,
			TxType:        entity.TxTypePurchaseIn,
			Quantity:      req.Quantity,
			UnitCost:      landed.UnitCost,
			ReferenceType: entity.RefTypePurchase,
			ReferenceID:   line.ID,
			ReferenceCode: code,
			CreatedBy:     userID,
			At:            now,
		})
		if err != nil {
			return err
		}

		result = &PurchaseResult{
			ID:            line.ID,
			LineageCode:   code,
			Serial:        serial,
			FinancialYear: fy,
			UnitCost:      landed.UnitCost,
			Landed:        landed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PurchaseService) validate(req SubmitPurchaseRequest) (time.Time, error) {
	if req.MaterialID == "" {
		return time.Time{}, apperr.Validation("material_id", "is required")
	}
	if req.SupplierID == "" {
		return time.Time{}, apperr.Validation("supplier_id", "is required")
	}
	date, err := parseDate("purchase_date", req.PurchaseDate)
	if err != nil {
		return time.Time{}, err
	}
	if req.Quantity <= 0 {
		return time.Time{}, &apperr.InvalidQuantityError{Field: "quantity", Value: req.Quantity}
	}
	if err := nonNegative("rate", req.Rate); err != nil {
		return time.Time{}, err
	}
	if err := nonNegative("transport", req.Transport); err != nil {
		return time.Time{}, err
	}
	if err := nonNegative("handling", req.Handling); err != nil {
		return time.Time{}, err
	}
	if req.GSTRate < 0 || req.GSTRate > 100 {
		return time.Time{}, apperr.Validation("gst_rate", "must be between 0 and 100, got %.2f", req.GSTRate)
	}
	return date, nil
}
