package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/bitfantasy/nimo-oil/internal/oil/service"
)

func TestByproductSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.purchase(t, groundnutK, "2025-08-05", 1000, 10)
	batch, err := f.svc.Batch.Submit(ctx, standardBatch(groundnutK), user)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	lots, total, err := f.svc.Byproduct.List(ctx, repository.ByproductListParams{ByproductType: "cake", BatchID: batch.BatchID})
	if err != nil || total != 1 {
		t.Fatalf("cake lots = %d, %v", total, err)
	}
	cake := lots[0]
	if cake.QuantityProduced != 200 || cake.QuantityRemaining != 200 || cake.EstimatedRate != 25 {
		t.Fatalf("cake lot = %+v", cake)
	}
	if cake.BatchLineageCode != batch.LineageCode {
		t.Errorf("lot lineage = %s", cake.BatchLineageCode)
	}

	sale, err := f.svc.Byproduct.RecordSale(ctx, cake.ID, service.RecordSaleRequest{
		Quantity: 150, Rate: 30, Buyer: "Dairy Co-op", SoldAt: "2025-08-12",
	}, user)
	if err != nil {
		t.Fatalf("sale: %v", err)
	}
	if sale.Amount != 4500 || sale.SoldAt.Format(service.DateLayout) != "2025-08-12" {
		t.Errorf("sale = %+v", sale)
	}

	_, err = f.svc.Byproduct.RecordSale(ctx, cake.ID, service.RecordSaleRequest{Quantity: 100, Rate: 30}, user)
	var stock *apperr.InsufficientStockError
	if !errors.As(err, &stock) || stock.Available != 50 {
		t.Fatalf("oversell: got %v", err)
	}

	lots, _, _ = f.svc.Byproduct.List(ctx, repository.ByproductListParams{BatchID: batch.BatchID, ByproductType: entity.ByproductCake})
	if lots[0].QuantityRemaining != 50 {
		t.Errorf("remaining = %v, want 50", lots[0].QuantityRemaining)
	}
	if n := f.count(t, &entity.ByproductSale{}); n != 1 {
		t.Errorf("%d sales written", n)
	}

	txs, _, err := f.svc.Inventory.ListTransactions(ctx, entity.ItemTypeByproduct, cake.ID, 1, 10)
	if err != nil || len(txs) != 2 {
		t.Fatalf("lot movements = %d, %v", len(txs), err)
	}
	for _, tx := range txs {
		if tx.TransactionType == entity.TxTypeByproductSale && (tx.Quantity != -150 || tx.QuantityAfter != 50) {
			t.Errorf("sale movement = %+v", tx)
		}
	}

	// the batch itself is untouched by sales
	got, err := f.svc.Batch.Get(ctx, batch.BatchID)
	if err != nil || !near(got.NetOilCost, 4600) || got.CakeCredit != 5000 {
		t.Errorf("batch after sale = %+v, %v", got, err)
	}
}

func TestByproductSaleRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Byproduct.RecordSale(ctx, "missing", service.RecordSaleRequest{Quantity: 1}, user); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown lot: got %v", err)
	}
	if _, err := f.svc.Byproduct.RecordSale(ctx, "missing", service.RecordSaleRequest{Quantity: 0}, user); !apperr.IsValidation(err) {
		t.Errorf("zero quantity: got %v", err)
	}
	if _, err := f.svc.Byproduct.RecordSale(ctx, "missing", service.RecordSaleRequest{Quantity: 1, SoldAt: "12-08-2025"}, user); !apperr.IsValidation(err) {
		t.Errorf("bad date: got %v", err)
	}
}
