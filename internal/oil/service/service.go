package service

import (
	"strings"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/bitfantasy/nimo-oil/internal/lineage"
	"github.com/bitfantasy/nimo-oil/internal/metrics"
	"github.com/bitfantasy/nimo-oil/internal/oil/cache"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"go.uber.org/zap"
)

// DateLayout is the request date format.
const DateLayout = "2006-01-02"

// Options carries the collaborators shared by the oil services.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Cache   *cache.ReferenceCache
	Markers lineage.Markers
	// FallbackRates are the last-resort by-product rates keyed by by-product
	// type, used when neither the request nor history supplies one.
	FallbackRates map[string]float64
}

// Services groups the oil services.
type Services struct {
	Purchase  *PurchaseService
	Batch     *BatchService
	Blend     *BlendService
	Byproduct *ByproductService
	Inventory *InventoryService
	Lineage   *LineageService
}

func NewServices(repos *repository.Repositories, opts Options) *Services {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Markers == (lineage.Markers{}) {
		opts.Markers = lineage.DefaultMarkers
	}
	return &Services{
		Purchase:  NewPurchaseService(repos, opts),
		Batch:     NewBatchService(repos, opts),
		Blend:     NewBlendService(repos, opts),
		Byproduct: NewByproductService(repos, opts),
		Inventory: NewInventoryService(repos),
		Lineage:   NewLineageService(repos, opts),
	}
}

func parseDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, apperr.Validation(field, "is required")
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "must be a %s date, got %q", DateLayout, value)
	}
	return t, nil
}

func nonNegative(field string, v float64) error {
	if v < 0 {
		return apperr.Validation(field, "must not be negative, got %.4f", v)
	}
	return nil
}
