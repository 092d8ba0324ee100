package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/bitfantasy/nimo-oil/internal/lineage"
	"github.com/bitfantasy/nimo-oil/internal/metrics"
	"github.com/bitfantasy/nimo-oil/internal/oil/cache"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PercentageTolerance is the allowed deviation of blend shares from 100.
const PercentageTolerance = 0.01

// BlendService records oil blends.
type BlendService struct {
	repos   *repository.Repositories
	cache   *cache.ReferenceCache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewBlendService(repos *repository.Repositories, opts Options) *BlendService {
	return &BlendService{repos: repos, cache: opts.Cache, metrics: opts.Metrics, logger: opts.Logger}
}

type SubmitBlendRequest struct {
	ComponentCodes []string  `json:"component_codes" binding:"required"`
	Percentages    []float64 `json:"percentages" binding:"required"`
	BlendDate      string    `json:"blend_date" binding:"required"` // YYYY-MM-DD
	Notes          string    `json:"notes"`
}

type BlendResult struct {
	ID          string `json:"id"`
	LineageCode string `json:"lineage_code"`
}

func (s *BlendService) Submit(ctx context.Context, req SubmitBlendRequest, userID string) (*BlendResult, error) {
	started := time.Now()
	result, err := s.submit(ctx, req, userID)
	s.metrics.Observe(metrics.KindBlend, started, err)
	if err != nil {
		var dup *apperr.DuplicateError
		if errors.As(err, &dup) {
			s.logger.Warn("blend already recorded", zap.String("lineage_code", dup.Code))
		} else {
			s.logger.Warn("blend rejected", zap.Error(err))
		}
		return nil, err
	}
	s.logger.Info("blend committed", zap.String("lineage_code", result.LineageCode))
	return result, nil
}

func (s *BlendService) submit(ctx context.Context, req SubmitBlendRequest, userID string) (*BlendResult, error) {
	date, components, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	var result *BlendResult
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		for i, comp := range components {
			if err := componentExists(ctx, tx, fmt.Sprintf("component_codes[%d]", i), comp.Code); err != nil {
				return err
			}
		}
		ref := newReferenceReader(tx.Reference, s.cache)
		unit, err := ref.primaryUnit(ctx)
		if err != nil {
			return err
		}
		code, err := lineage.EncodeBlend(components, date, unit.ShortCode)
		if err != nil {
			if apperr.IsReferenceData(err) {
				ref.forget(ctx, cache.PrimaryUnitKey())
			}
			return err
		}
		exists, err := tx.Blend.ExistsCode(ctx, code)
		if err != nil {
			return fmt.Errorf("check lineage code: %w", err)
		}
		if exists {
			return &apperr.DuplicateError{Code: code, Entity: "blend"}
		}
		decoded, err := lineage.DecodeBlend(code)
		if err != nil {
			return err
		}

		blend := &entity.Blend{
			ID:               uuid.New().String(),
			LineageCode:      code,
			OilPrefix:        decoded.OilPrefix,
			SupplierInitials: strings.Join(decoded.Suppliers, ""),
			ProductionUnitID: unit.ID,
			BlendDate:        date,
			Notes:            req.Notes,
			CreatedBy:        userID,
			CreatedAt:        time.Now(),
		}
		for i, comp := range components {
			blend.Components = append(blend.Components, entity.BlendComponent{
				ID:            uuid.New().String(),
				BlendID:       blend.ID,
				Seq:           i,
				ComponentCode: comp.Code,
				Percentage:    comp.Percentage,
			})
		}
		if err := tx.Blend.Create(ctx, blend); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return &apperr.DuplicateError{Code: code, Entity: "blend"}
			}
			return fmt.Errorf("create blend: %w", err)
		}
		result = &BlendResult{ID: blend.ID, LineageCode: code}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BlendService) validate(req SubmitBlendRequest) (time.Time, []lineage.BlendComponent, error) {
	date, err := parseDate("blend_date", req.BlendDate)
	if err != nil {
		return time.Time{}, nil, err
	}
	if len(req.ComponentCodes) == 0 {
		return time.Time{}, nil, apperr.Validation("component_codes", "at least one component is required")
	}
	if len(req.ComponentCodes) != len(req.Percentages) {
		return time.Time{}, nil, apperr.Validation("percentages", "got %d percentages for %d components",
			len(req.Percentages), len(req.ComponentCodes))
	}

	seen := make(map[string]bool, len(req.ComponentCodes))
	components := make([]lineage.BlendComponent, 0, len(req.ComponentCodes))
	var sum float64
	for i, raw := range req.ComponentCodes {
		code := strings.TrimSpace(raw)
		field := fmt.Sprintf("component_codes[%d]", i)
		if code == "" {
			return time.Time{}, nil, apperr.Validation(field, "is empty")
		}
		if seen[code] {
			return time.Time{}, nil, apperr.Validation(field, "%s is listed twice", code)
		}
		seen[code] = true
		pct := req.Percentages[i]
		if pct <= 0 {
			return time.Time{}, nil, &apperr.InvalidQuantityError{Field: fmt.Sprintf("percentages[%d]", i), Value: pct}
		}
		sum += pct
		components = append(components, lineage.BlendComponent{Code: code, Percentage: pct})
	}
	if math.Abs(sum-100) > PercentageTolerance {
		return time.Time{}, nil, apperr.Validation("percentages", "must sum to 100, got %.4f", sum)
	}
	return date, components, nil
}

// componentExists checks that code identifies a recorded purchase line, batch
// or blend.
func componentExists(ctx context.Context, tx *repository.Repositories, field, code string) error {
	var (
		exists bool
		err    error
	)
	if lineage.IsBlendCode(code) {
		if _, err := lineage.DecodeBlend(code); err != nil {
			return err
		}
		exists, err = tx.Blend.ExistsCode(ctx, code)
	} else {
		if _, err := lineage.Decode(code); err != nil {
			return err
		}
		exists, err = tx.Purchase.ExistsCode(ctx, code)
		if err == nil && !exists {
			exists, err = tx.Batch.ExistsCode(ctx, code)
		}
	}
	if err != nil {
		return fmt.Errorf("look up %s: %w", code, err)
	}
	if !exists {
		return &apperr.ReferenceDataError{Entity: "lineage_code", ID: code, Field: field, Message: "matches no purchase, batch or blend"}
	}
	return nil
}
