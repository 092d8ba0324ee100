package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/bitfantasy/nimo-oil/internal/metrics"
	"github.com/bitfantasy/nimo-oil/internal/oil/cache"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/repository"
	"github.com/bitfantasy/nimo-oil/internal/oil/service"
	"github.com/bitfantasy/nimo-oil/internal/oil/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func TestCorrectedShortCodeIsPickedUpWithoutWaitingForTTL(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedMaterial(t, db, groundnutK, "GNS-K", oilType)
	testutil.SeedSupplier(t, db, "s-bad", "SR-I")
	testutil.SeedProductionUnit(t, db, "u-skm", "SKM", true)

	store := &mapStore{data: map[string][]byte{}}
	svc := service.NewServices(repository.NewRepositories(db), service.Options{
		Logger:  zap.NewNop(),
		Metrics: metrics.New(prometheus.NewRegistry()),
		Cache:   cache.NewReferenceCache(store, time.Hour, zap.NewNop()),
	})
	ctx := context.Background()
	req := service.SubmitPurchaseRequest{
		MaterialID:   groundnutK,
		SupplierID:   "s-bad",
		PurchaseDate: "2025-08-05",
		Quantity:     100,
		Rate:         10,
	}

	if _, err := svc.Purchase.Submit(ctx, req, user); !apperr.IsReferenceData(err) {
		t.Fatalf("expected ReferenceDataError for supplier SR-I, got %v", err)
	}
	if _, ok, _ := store.Get(ctx, cache.SupplierKey("s-bad")); ok {
		t.Fatalf("rejected supplier is still cached")
	}

	if err := db.Model(&entity.Supplier{}).Where("id = ?", "s-bad").Update("short_code", "SRI").Error; err != nil {
		t.Fatalf("fix supplier: %v", err)
	}
	res, err := svc.Purchase.Submit(ctx, req, user)
	if err != nil {
		t.Fatalf("purchase after fix: %v", err)
	}
	if res.LineageCode != "GNS-K-1-05082025-SRI" {
		t.Errorf("lineage = %s", res.LineageCode)
	}
}
