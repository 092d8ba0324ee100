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

// BatchService runs extraction batches: lineage, stock, costing and the
// ledger update happen in one transaction.
type BatchService struct {
	repos         *repository.Repositories
	cache         *cache.ReferenceCache
	metrics       *metrics.Metrics
	logger        *zap.Logger
	markers       lineage.Markers
	fallbackRates map[string]float64
	nextSerial    func(ctx context.Context, tx *repository.Repositories, seedCode, oilCode, seedDate string) (int64, error)
}

func NewBatchService(repos *repository.Repositories, opts Options) *BatchService {
	return &BatchService{
		repos:         repos,
		cache:         opts.Cache,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		markers:       opts.Markers,
		fallbackRates: opts.FallbackRates,
		nextSerial: func(ctx context.Context, tx *repository.Repositories, seedCode, oilCode, seedDate string) (int64, error) {
			return tx.Serial.NextBatchSerial(ctx, seedCode, oilCode, seedDate)
		},
	}
}

type SubmitBatchRequest struct {
	MaterialID string `json:"material_id" binding:"required"`
	// SeedLineageCode pins the seed lot. Empty means the latest purchase of
	// the material.
	SeedLineageCode string  `json:"seed_lineage_code"`
	ProductionDate  string  `json:"production_date" binding:"required"` // YYYY-MM-DD
	PreDryQty       float64 `json:"pre_dry_qty"`
	PostDryQty      float64 `json:"post_dry_qty"`
	OilYield        float64 `json:"oil_yield"`
	CakeYield       float64 `json:"cake_yield"`
	SludgeYield     float64 `json:"sludge_yield"`
	// Nil rates fall back to history, then configuration.
	CakeRate   *float64           `json:"cake_rate"`
	SludgeRate *float64           `json:"sludge_rate"`
	DirectCost float64            `json:"direct_cost"`
	CostItems  []costing.CostItem `json:"cost_items"`
	Notes      string             `json:"notes"`
}

type BatchResult struct {
	BatchID             string  `json:"batch_id"`
	LineageCode         string  `json:"lineage_code"`
	SeedLineageCode     string  `json:"seed_lineage_code"`
	Serial              int64   `json:"serial"`
	TotalProductionCost float64 `json:"total_production_cost"`
	NetOilCost          float64 `json:"net_oil_cost"`
	OilCostPerKg        float64 `json:"oil_cost_per_kg"`
}

// Submit records one production run. Any error rolls back the whole run and
// is returned as-is; nothing is retried.
func (s *BatchService) Submit(ctx context.Context, req SubmitBatchRequest, userID string) (*BatchResult, error) {
	started := time.Now()
	result, err := s.submit(ctx, req, userID)
	s.metrics.Observe(metrics.KindBatch, started, err)
	if err != nil {
		var collision *apperr.CollisionError
		if errors.As(err, &collision) {
			s.logger.Error("batch lineage code collision",
				zap.String("lineage_code", collision.Code),
				zap.String("material_id", req.MaterialID),
				zap.String("seed_lineage_code", req.SeedLineageCode))
		} else {
			s.logger.Warn("batch rejected", zap.String("material_id", req.MaterialID), zap.Error(err))
		}
		return nil, err
	}
	s.metrics.SerialAllocated(entity.SerialScopeBatch)
	s.logger.Info("batch committed",
		zap.String("batch_id", result.BatchID),
		zap.String("lineage_code", result.LineageCode),
		zap.Float64("net_oil_cost", result.NetOilCost),
		zap.Float64("oil_cost_per_kg", result.OilCostPerKg))
	return result, nil
}

func (s *BatchService) submit(ctx context.Context, req SubmitBatchRequest, userID string) (*BatchResult, error) {
	date, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	items := collapseCostItems(req.CostItems)

	var result *BatchResult
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		ref := newReferenceReader(tx.Reference, s.cache)
		material, err := ref.material(ctx, req.MaterialID)
		if err != nil {
			return err
		}
		if material.TargetOilType == "" {
			ref.forget(ctx, cache.MaterialKey(material.ID))
			return &apperr.InvalidConfigurationError{ReferenceDataError: apperr.ReferenceDataError{
				Entity: "material", ID: material.ID, Field: "target_oil_type", Message: "is not configured",
			}}
		}

		// lineage
		seed, err := s.resolveSeed(ctx, tx, material.ID, req.SeedLineageCode)
		if err != nil {
			return err
		}
		seedCode, err := lineage.DecodePurchase(seed.LineageCode)
		if err != nil {
			return err
		}
		unit, err := ref.primaryUnit(ctx)
		if err != nil {
			return err
		}
		oilCode := s.markers.OilMaterialCode(seedCode.MaterialCode)
		serial, err := s.nextSerial(ctx, tx, seed.LineageCode, oilCode, seedCode.DateStr)
		if err != nil {
			return err
		}
		code, err := lineage.EncodeBatch(lineage.BatchFields{
			OilMaterialCode: oilCode,
			Serial:          serial,
			SeedDateStr:     seedCode.DateStr,
			UnitCode:        unit.ShortCode,
		})
		if err != nil {
			if apperr.IsReferenceData(err) {
				ref.forget(ctx, cache.PrimaryUnitKey())
			}
			return err
		}
		exists, err := tx.Batch.ExistsCode(ctx, code)
		if err != nil {
			return fmt.Errorf("check lineage code: %w", err)
		}
		if exists {
			return &apperr.CollisionError{Code: code, Entity: "batch"}
		}

		// availability
		inv := ledger{inv: tx.Inventory}
		stock, err := inv.reserve(ctx, entity.ItemTypeMaterial, material.ID, req.PreDryQty)
		if err != nil {
			return err
		}

		// costs
		alloc, err := s.allocate(ctx, tx, items)
		if err != nil {
			return err
		}
		cakeRate, err := s.byproductRate(ctx, tx, entity.ByproductCake, req.CakeYield, req.CakeRate)
		if err != nil {
			return err
		}
		sludgeRate, err := s.byproductRate(ctx, tx, entity.ByproductSludge, req.SludgeYield, req.SludgeRate)
		if err != nil {
			return err
		}
		total := alloc.Total + req.DirectCost
		net := costing.NetOilCost(costing.NetInput{
			TotalCost:   total,
			OilYield:    req.OilYield,
			CakeYield:   req.CakeYield,
			CakeRate:    cakeRate,
			SludgeYield: req.SludgeYield,
			SludgeRate:  sludgeRate,
		})

		// commit
		now := time.Now()
		batch := &entity.Batch{
			ID:                  uuid.New().String(),
			LineageCode:         code,
			SeedLineageCode:     seed.LineageCode,
			Serial:              serial,
			MaterialID:          material.ID,
			OilType:             material.TargetOilType,
			ProductionUnitID:    unit.ID,
			ProductionDate:      date,
			PreDryQty:           req.PreDryQty,
			PostDryQty:          req.PostDryQty,
			OilYield:            req.OilYield,
			CakeYield:           req.CakeYield,
			SludgeYield:         req.SludgeYield,
			CakeRate:            cakeRate,
			SludgeRate:          sludgeRate,
			DirectCost:          req.DirectCost,
			CostElementTotal:    alloc.Total,
			TotalProductionCost: net.TotalCost,
			CakeCredit:          net.CakeCredit,
			SludgeCredit:        net.SludgeCredit,
			NetOilCost:          net.NetOilCost,
			OilCostPerKg:        net.OilCostPerKg,
			Notes:               req.Notes,
			CreatedBy:           userID,
			CreatedAt:           now,
		}
		if err := tx.Batch.Create(ctx, batch); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return &apperr.CollisionError{Code: code, Entity: "batch"}
			}
			return fmt.Errorf("create batch: %w", err)
		}
		if err := tx.Batch.UpsertCostElements(ctx, costElementRows(batch.ID, alloc, now)); err != nil {
			return fmt.Errorf("save cost elements: %w", err)
		}

		base := movement{
			ReferenceType: entity.RefTypeBatch,
			ReferenceID:   batch.ID,
			ReferenceCode: code,
			CreatedBy:     userID,
			At:            now,
		}
		out := base
		out.ItemType, out.ItemKey, out.TxType, out.Quantity = entity.ItemTypeMaterial, material.ID, entity.TxTypeProductionOut, req.PreDryQty
		if err := inv.issue(ctx, stock, out); err != nil {
			return err
		}
		if req.OilYield > 0 {
			in := base
			in.ItemType, in.ItemKey, in.ItemName = entity.ItemTypeOilType, material.TargetOilType, material.TargetOilType
			in.TxType, in.Quantity, in.UnitCost = entity.TxTypeProductionIn, req.OilYield, net.OilCostPerKg
			if _, err := inv.receive(ctx, in); err != nil {
				return err
			}
		}
		if err := s.createByproductLots(ctx, tx, batch, base); err != nil {
			return err
		}

		result = &BatchResult{
			BatchID:             batch.ID,
			LineageCode:         code,
			SeedLineageCode:     seed.LineageCode,
			Serial:              serial,
			TotalProductionCost: net.TotalCost,
			NetOilCost:          net.NetOilCost,
			OilCostPerKg:        net.OilCostPerKg,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BatchService) validate(req SubmitBatchRequest) (time.Time, error) {
	if req.MaterialID == "" {
		return time.Time{}, apperr.Validation("material_id", "is required")
	}
	date, err := parseDate("production_date", req.ProductionDate)
	if err != nil {
		return time.Time{}, err
	}
	if req.PreDryQty <= 0 {
		return time.Time{}, &apperr.InvalidQuantityError{Field: "pre_dry_qty", Value: req.PreDryQty}
	}
	if err := nonNegative("post_dry_qty", req.PostDryQty); err != nil {
		return time.Time{}, err
	}
	if req.PostDryQty > req.PreDryQty {
		return time.Time{}, apperr.Validation("post_dry_qty", "%.4f exceeds pre_dry_qty %.4f", req.PostDryQty, req.PreDryQty)
	}
	checks := []struct {
		field string
		value float64
	}{
		{"oil_yield", req.OilYield},
		{"cake_yield", req.CakeYield},
		{"sludge_yield", req.SludgeYield},
		{"direct_cost", req.DirectCost},
	}
	for _, c := range checks {
		if err := nonNegative(c.field, c.value); err != nil {
			return time.Time{}, err
		}
	}
	if req.CakeRate != nil {
		if err := nonNegative("cake_rate", *req.CakeRate); err != nil {
			return time.Time{}, err
		}
	}
	if req.SludgeRate != nil {
		if err := nonNegative("sludge_rate", *req.SludgeRate); err != nil {
			return time.Time{}, err
		}
	}
	return date, nil
}

// resolveSeed returns the purchase line the batch draws from. A supplied code
// must decode and belong to the batch's material.
func (s *BatchService) resolveSeed(ctx context.Context, tx *repository.Repositories, materialID, seedCode string) (*entity.PurchaseLine, error) {
	if seedCode == "" {
		line, err := tx.Purchase.LatestForMaterial(ctx, materialID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperr.ReferenceDataError{
				Entity: "material", ID: materialID, Field: "purchase_lines", Message: "has no purchase to derive lineage from",
			}
		}
		return line, err
	}

	if _, err := lineage.DecodePurchase(seedCode); err != nil {
		return nil, err
	}
	line, err := tx.Purchase.GetByLineageCode(ctx, seedCode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &apperr.ReferenceDataError{
			Entity: "purchase_line", ID: seedCode, Field: "lineage_code", Message: "does not exist",
		}
	}
	if err != nil {
		return nil, err
	}
	if line.MaterialID != materialID {
		return nil, apperr.Validation("seed_lineage_code", "%s belongs to material %s, not %s", seedCode, line.MaterialID, materialID)
	}
	return line, nil
}

// allocate resolves cost items against the active catalogue.
func (s *BatchService) allocate(ctx context.Context, tx *repository.Repositories, items []costing.CostItem) (costing.Allocation, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ElementID)
	}
	catalogue, err := tx.Reference.ListCostElements(ctx, ids)
	if err != nil {
		return costing.Allocation{}, fmt.Errorf("load cost elements: %w", err)
	}
	known := make(map[string]bool, len(catalogue))
	defaults := make(map[string]float64, len(catalogue))
	for _, el := range catalogue {
		known[el.ID] = true
		if el.DefaultRate != nil {
			defaults[el.ID] = *el.DefaultRate
		}
	}
	for _, item := range items {
		if item.ElementID != "" && !known[item.ElementID] {
			return costing.Allocation{}, &apperr.ReferenceDataError{
				Entity: "cost_element", ID: item.ElementID, Field: "id", Message: "does not exist or is inactive",
			}
		}
	}
	return costing.AllocateCostElements(items, defaults)
}

// byproductRate resolves the estimated rate of a by-product: the declared
// rate, else the latest historical rate, else the configured fallback. A
// by-product with no yield needs no rate.
func (s *BatchService) byproductRate(ctx context.Context, tx *repository.Repositories, byproductType string, yield float64, declared *float64) (float64, error) {
	if declared != nil {
		return *declared, nil
	}
	if yield <= 0 {
		return 0, nil
	}
	rate, ok, err := tx.Byproduct.LatestEstimatedRate(ctx, byproductType)
	if err != nil {
		return 0, fmt.Errorf("load %s rate history: %w", byproductType, err)
	}
	if ok {
		return rate, nil
	}
	if rate, ok := s.fallbackRates[byproductType]; ok {
		s.logger.Warn("using configured fallback by-product rate",
			zap.String("byproduct_type", byproductType), zap.Float64("rate", rate))
		return rate, nil
	}
	return 0, &apperr.ReferenceDataError{
		Entity: "byproduct_rate", ID: byproductType, Field: "estimated_rate",
		Message: "has no declared, historical or configured value",
	}
}

func (s *BatchService) createByproductLots(ctx context.Context, tx *repository.Repositories, batch *entity.Batch, base movement) error {
	outputs := []struct {
		kind  string
		yield float64
		rate  float64
	}{
		{entity.ByproductCake, batch.CakeYield, batch.CakeRate},
		{entity.ByproductSludge, batch.SludgeYield, batch.SludgeRate},
	}
	for _, out := range outputs {
		if out.yield <= 0 {
			continue
		}
		lot := &entity.ByproductLot{
			ID:                uuid.New().String(),
			BatchID:           batch.ID,
			BatchLineageCode:  batch.LineageCode,
			ByproductType:     out.kind,
			QuantityProduced:  out.yield,
			QuantityRemaining: out.yield,
			EstimatedRate:     out.rate,
			CreatedAt:         base.At,
			UpdatedAt:         base.At,
		}
		if err := tx.Byproduct.CreateLot(ctx, lot); err != nil {
			return fmt.Errorf("create %s lot: %w", out.kind, err)
		}
		m := base
		m.ItemType, m.ItemKey, m.TxType, m.UnitCost = entity.ItemTypeByproduct, lot.ID, entity.TxTypeByproductIn, out.rate
		if err := (ledger{inv: tx.Inventory}).record(ctx, m, out.yield, 0, out.yield); err != nil {
			return err
		}
	}
	return nil
}

// collapseCostItems keeps one item per element; a repeated element replaces
// the earlier one in place.
func collapseCostItems(items []costing.CostItem) []costing.CostItem {
	out := make([]costing.CostItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if i, ok := index[item.ElementID]; ok && item.ElementID != "" {
			out[i] = item
			continue
		}
		index[item.ElementID] = len(out)
		out = append(out, item)
	}
	return out
}

func costElementRows(batchID string, alloc costing.Allocation, now time.Time) []entity.BatchCostElement {
	rows := make([]entity.BatchCostElement, 0, len(alloc.Items))
	for _, item := range alloc.Items {
		rows = append(rows, entity.BatchCostElement{
			ID:            uuid.New().String(),
			BatchID:       batchID,
			CostElementID: item.ElementID,
			Quantity:      item.Quantity,
			Rate:          item.Rate,
			TotalCost:     item.Total,
			Overridden:    item.Overridden,
			CreatedAt:     now,
		})
	}
	return rows
}

// Get returns a batch with its cost elements and by-product lots.
func (s *BatchService) Get(ctx context.Context, id string) (*entity.Batch, error) {
	return s.repos.Batch.GetByID(ctx, id)
}
