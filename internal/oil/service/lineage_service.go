package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bitfantasy/nimo-oil/internal/lineage"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
)

// Lineage code families
const (
	FamilyPurchase = "purchase"
	FamilyBatch    = "batch"
	FamilyBlend    = "blend"
	// FamilyUnregistered is a well-formed purchase/batch code with no record.
	FamilyUnregistered = "unregistered"
)

// LineageService decodes lineage codes and links them to their records.
type LineageService struct {
	repos   *repository.Repositories
	markers lineage.Markers
}

func NewLineageService(repos *repository.Repositories, opts Options) *LineageService {
	return &LineageService{repos: repos, markers: opts.Markers}
}

type LineageInfo struct {
	Code          string   `json:"code"`
	Family        string   `json:"family"`
	RecordID      string   `json:"record_id,omitempty"`
	MaterialCode  string   `json:"material_code,omitempty"`
	Serial        int64    `json:"serial,omitempty"`
	Legacy        bool     `json:"legacy"`
	OilPrefix     string   `json:"oil_prefix,omitempty"`
	Suppliers     []string `json:"suppliers,omitempty"`
	DateStr       string   `json:"date_str"`
	Date          string   `json:"date"`
	FinancialYear string   `json:"financial_year"`
	Suffix        string   `json:"suffix"`
	// SeedLineageCode is set for batches.
	SeedLineageCode string `json:"seed_lineage_code,omitempty"`
	// OilMaterialCode is the code a batch from this seed lot would carry.
	OilMaterialCode string `json:"oil_material_code,omitempty"`
}

// Inspect decodes any lineage code. Malformed codes fail with ParseError.
func (s *LineageService) Inspect(ctx context.Context, raw string) (*LineageInfo, error) {
	code := strings.TrimSpace(raw)
	if lineage.IsBlendCode(code) {
		b, err := lineage.DecodeBlend(code)
		if err != nil {
			return nil, err
		}
		date, _ := lineage.ParseDate(b.DateStr)
		info := &LineageInfo{
			Code:          code,
			Family:        FamilyBlend,
			OilPrefix:     b.OilPrefix,
			Suppliers:     b.Suppliers,
			DateStr:       b.DateStr,
			Date:          date.Format(DateLayout),
			FinancialYear: lineage.FinancialYear(date),
			Suffix:        b.UnitCode,
		}
		blend, err := s.repos.Blend.GetByLineageCode(ctx, code)
		switch {
		case err == nil:
			info.RecordID = blend.ID
		case errors.Is(err, repository.ErrNotFound):
			info.Family = FamilyUnregistered
		default:
			return nil, err
		}
		return info, nil
	}

	c, err := lineage.Decode(code)
	if err != nil {
		return nil, err
	}
	date, _ := c.Date()
	info := &LineageInfo{
		Code:          code,
		Family:        FamilyUnregistered,
		MaterialCode:  c.MaterialCode,
		Serial:        c.Serial,
		Legacy:        !c.HasSerial(),
		DateStr:       c.DateStr,
		Date:          date.Format(DateLayout),
		FinancialYear: lineage.FinancialYear(date),
		Suffix:        c.Suffix,
	}

	line, err := s.repos.Purchase.GetByLineageCode(ctx, code)
	if err == nil {
		info.Family, info.RecordID = FamilyPurchase, line.ID
		info.OilMaterialCode = s.markers.OilMaterialCode(c.MaterialCode)
		return info, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	batch, err := s.repos.Batch.GetByLineageCode(ctx, code)
	if err == nil {
		info.Family, info.RecordID, info.SeedLineageCode = FamilyBatch, batch.ID, batch.SeedLineageCode
		return info, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return info, nil
}
