package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/bitfantasy/nimo-oil/internal/oil/testutil"
)

func TestUpsertCostElementsOverwrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	ctx := context.Background()
	batch := testutil.SeedBatchCode(t, db, "GNO-K-1-05082025-SKM", "GNS-K-1-05082025-SRI", "m-1")

	first := []entity.BatchCostElement{
		{ID: "ce-1", BatchID: batch.ID, CostElementID: "power", Quantity: 100, Rate: 8, TotalCost: 800, CreatedAt: time.Now()},
		{ID: "ce-2", BatchID: batch.ID, CostElementID: "labour", Quantity: 2, Rate: 120, TotalCost: 240, CreatedAt: time.Now()},
	}
	if err := repos.Batch.UpsertCostElements(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	again := []entity.BatchCostElement{
		{ID: "ce-3", BatchID: batch.ID, CostElementID: "power", Quantity: 120, Rate: 9, TotalCost: 1080, Overridden: true, CreatedAt: time.Now()},
	}
	if err := repos.Batch.UpsertCostElements(ctx, again); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	items, err := repos.Batch.ListCostElements(ctx, batch.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d rows, want 2", len(items))
	}
	for _, item := range items {
		if item.CostElementID == "power" && (item.TotalCost != 1080 || !item.Overridden) {
			t.Errorf("power not overwritten: %+v", item)
		}
	}

	loaded, err := repos.Batch.GetByID(ctx, batch.ID)
	if err != nil || len(loaded.CostElements) != 2 {
		t.Fatalf("get with cost elements: %+v, %v", loaded, err)
	}
}
