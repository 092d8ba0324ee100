package service_test

import (
	"context"
	"math"
	"testing"

	"github.com/bitfantasy/nimo-oil/internal/costing"
	"github.com/bitfantasy/nimo-oil/internal/metrics"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/bitfantasy/nimo-oil/internal/oil/service"
	"github.com/bitfantasy/nimo-oil/internal/oil/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	groundnutK = "m-gns-k"
	groundnutA = "m-gns-a"
	sriTraders = "s-sri"
	oilType    = "Groundnut Oil"
	user       = "u-test"
)

type fixture struct {
	db      *gorm.DB
	repos   *repository.Repositories
	svc     *service.Services
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedMaterial(t, db, groundnutK, "GNS-K", oilType)
	testutil.SeedMaterial(t, db, groundnutA, "GNS-A", oilType)
	testutil.SeedSupplier(t, db, sriTraders, "SRI")
	testutil.SeedProductionUnit(t, db, "u-skm", "SKM", true)
	testutil.SeedProductionUnit(t, db, "u-pvm", "PVM", false)
	testutil.SeedCostElement(t, db, "power", testutil.Float(8))
	testutil.SeedCostElement(t, db, "labour", testutil.Float(120))
	testutil.SeedCostElement(t, db, "packing", nil)

	repos := repository.NewRepositories(db)
	m := metrics.New(prometheus.NewRegistry())
	svc := service.NewServices(repos, service.Options{
		Logger:        zap.NewNop(),
		Metrics:       m,
		FallbackRates: map[string]float64{entity.ByproductCake: 20, entity.ByproductSludge: 5},
	})
	return &fixture{db: db, repos: repos, svc: svc, metrics: m}
}

// purchase records qty kg of material at rate with no tax or freight, so the
// landed unit cost equals rate.
func (f *fixture) purchase(t *testing.T, materialID, date string, qty, rate float64) *service.PurchaseResult {
	t.Helper()
	res, err := f.svc.Purchase.Submit(context.Background(), service.SubmitPurchaseRequest{
		MaterialID:   materialID,
		SupplierID:   sriTraders,
		PurchaseDate: date,
		Quantity:     qty,
		Rate:         rate,
	}, user)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	return res
}

func (f *fixture) position(t *testing.T, itemType, key string) *entity.InventoryPosition {
	t.Helper()
	pos, err := f.repos.Inventory.Get(context.Background(), itemType, key)
	if err != nil {
		t.Fatalf("position %s/%s: %v", itemType, key, err)
	}
	return pos
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// standardBatch is the reference run: 10000 of cost elements, cake 200 @ 25,
// sludge 50 @ 8, oil 300 → net 4600, 15.33/kg.
func standardBatch(materialID string) service.SubmitBatchRequest {
	return service.SubmitBatchRequest{
		MaterialID:     materialID,
		ProductionDate: "2025-08-07",
		PreDryQty:      400,
		PostDryQty:     380,
		OilYield:       300,
		CakeYield:      200,
		SludgeYield:    50,
		CakeRate:       testutil.Float(25),
		SludgeRate:     testutil.Float(8),
		CostItems: []costing.CostItem{
			{ElementID: "power", Quantity: 1000},
			{ElementID: "labour", Quantity: 10, Rate: testutil.Float(200)},
		},
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
