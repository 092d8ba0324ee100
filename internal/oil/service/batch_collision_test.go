package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/bitfantasy/nimo-oil/internal/costing"
	"github.com/bitfantasy/nimo-oil/internal/metrics"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/bitfantasy/nimo-oil/internal/oil/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

// A serial source that hands out a used number must surface a collision and
// leave stock untouched.
func TestBatchCollisionRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedMaterial(t, db, "m-1", "GNS-K", "Groundnut Oil")
	testutil.SeedSupplier(t, db, "s-1", "SRI")
	testutil.SeedProductionUnit(t, db, "u-1", "SKM", true)
	testutil.SeedCostElement(t, db, "power", testutil.Float(8))

	repos := repository.NewRepositories(db)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewServices(repos, Options{Logger: zap.NewNop(), Metrics: m})
	svc.Batch.nextSerial = func(context.Context, *repository.Repositories, string, string, string) (int64, error) {
		return 1, nil
	}

	ctx := context.Background()
	if _, err := svc.Purchase.Submit(ctx, SubmitPurchaseRequest{
		MaterialID: "m-1", SupplierID: "s-1", PurchaseDate: "2025-08-05", Quantity: 1000, Rate: 10,
	}, "u"); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	req := SubmitBatchRequest{
		MaterialID:     "m-1",
		ProductionDate: "2025-08-07",
		PreDryQty:      400,
		PostDryQty:     380,
		OilYield:       300,
		CakeRate:       testutil.Float(25),
		SludgeRate:     testutil.Float(8),
		CostItems:      []costing.CostItem{{ElementID: "power", Quantity: 10}},
	}
	if _, err := svc.Batch.Submit(ctx, req, "u"); err != nil {
		t.Fatalf("first batch: %v", err)
	}

	_, err := svc.Batch.Submit(ctx, req, "u")
	var collision *apperr.CollisionError
	if !errors.As(err, &collision) || collision.Code != "GNO-K-1-05082025-SKM" {
		t.Fatalf("expected collision, got %v", err)
	}

	pos, err := repos.Inventory.Get(ctx, entity.ItemTypeMaterial, "m-1")
	if err != nil || pos.Quantity != 600 {
		t.Fatalf("seed position after collision = %+v, %v", pos, err)
	}
	var batches int64
	db.Model(&entity.Batch{}).Count(&batches)
	if batches != 1 {
		t.Errorf("%d batches written", batches)
	}
	if got := promtest.ToFloat64(m.LineageCollisions); got != 1 {
		t.Errorf("collision counter = %v", got)
	}
}

func TestCollapseCostItems(t *testing.T) {
	rate := 3.0
	got := collapseCostItems([]costing.CostItem{
		{ElementID: "a", Quantity: 1},
		{ElementID: "b", Quantity: 2},
		{ElementID: "a", Quantity: 5, Rate: &rate},
	})
	if len(got) != 2 || got[0].ElementID != "a" || got[0].Quantity != 5 || got[1].ElementID != "b" {
		t.Fatalf("collapsed = %+v", got)
	}
}
