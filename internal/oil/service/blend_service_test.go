package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/bitfantasy/nimo-oil/internal/metrics"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/bitfantasy/nimo-oil/internal/oil/service"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

// blendInputs records one batch for each groundnut variety and returns the
// two batch codes.
func blendInputs(t *testing.T, f *fixture) (kernel, whole string) {
	t.Helper()
	ctx := context.Background()
	f.purchase(t, groundnutK, "2025-08-05", 1000, 10)
	f.purchase(t, groundnutA, "2025-08-05", 1000, 11)
	k, err := f.svc.Batch.Submit(ctx, standardBatch(groundnutK), user)
	if err != nil {
		t.Fatalf("batch K: %v", err)
	}
	a, err := f.svc.Batch.Submit(ctx, standardBatch(groundnutA), user)
	if err != nil {
		t.Fatalf("batch A: %v", err)
	}
	return k.LineageCode, a.LineageCode
}

func TestBlendSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kernel, whole := blendInputs(t, f)

	res, err := f.svc.Blend.Submit(ctx, service.SubmitBlendRequest{
		ComponentCodes: []string{kernel, whole},
		Percentages:    []float64{40, 60},
		BlendDate:      "2025-08-20",
	}, user)
	if err != nil {
		t.Fatalf("submit blend: %v", err)
	}
	// the larger share leads the supplier initials
	if res.LineageCode != "GNOAK-20082025-SKM" {
		t.Errorf("lineage = %s", res.LineageCode)
	}

	var blend entity.Blend
	if err := f.db.Preload("Components").Where("id = ?", res.ID).First(&blend).Error; err != nil {
		t.Fatalf("load blend: %v", err)
	}
	if blend.OilPrefix != "GNO" || blend.SupplierInitials != "AK" || len(blend.Components) != 2 {
		t.Errorf("blend = %+v", blend)
	}

	// a blend can feed another blend
	nested, err := f.svc.Blend.Submit(ctx, service.SubmitBlendRequest{
		ComponentCodes: []string{res.LineageCode, kernel},
		Percentages:    []float64{70, 30},
		BlendDate:      "2025-08-21",
	}, user)
	if err != nil {
		t.Fatalf("nested blend: %v", err)
	}
	if nested.LineageCode != "GNOAK-21082025-SKM" {
		t.Errorf("nested lineage = %s", nested.LineageCode)
	}
}

func TestBlendDuplicateIsAConflictNotACollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kernel, whole := blendInputs(t, f)
	req := service.SubmitBlendRequest{
		ComponentCodes: []string{whole, kernel},
		Percentages:    []float64{50.005, 49.995},
		BlendDate:      "2025-08-20",
	}
	if _, err := f.svc.Blend.Submit(ctx, req, user); err != nil {
		t.Fatalf("first blend: %v", err)
	}
	_, err := f.svc.Blend.Submit(ctx, req, user)
	var dup *apperr.DuplicateError
	if !errors.As(err, &dup) || dup.Entity != "blend" {
		t.Fatalf("expected blend DuplicateError, got %v", err)
	}
	if apperr.IsCollision(err) {
		t.Errorf("duplicate blend reported as a lineage collision")
	}
	if got := promtest.ToFloat64(f.metrics.LineageCollisions); got != 0 {
		t.Errorf("lineage collisions = %v, want 0", got)
	}
	if got := promtest.ToFloat64(f.metrics.Submissions.WithLabelValues(metrics.KindBlend, "duplicate")); got != 1 {
		t.Errorf("blend duplicate submissions = %v, want 1", got)
	}
	if n := f.count(t, &entity.Blend{}); n != 1 {
		t.Errorf("%d blends written", n)
	}
	if n := f.count(t, &entity.BlendComponent{}); n != 2 {
		t.Errorf("%d blend components written", n)
	}
}

func TestBlendRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kernel, whole := blendInputs(t, f)

	cases := []struct {
		name  string
		req   service.SubmitBlendRequest
		check func(error) bool
	}{
		{"no components", service.SubmitBlendRequest{BlendDate: "2025-08-20"}, apperr.IsValidation},
		{"length mismatch", service.SubmitBlendRequest{
			ComponentCodes: []string{kernel, whole}, Percentages: []float64{100}, BlendDate: "2025-08-20",
		}, apperr.IsValidation},
		{"sum below 100", service.SubmitBlendRequest{
			ComponentCodes: []string{kernel, whole}, Percentages: []float64{50, 40}, BlendDate: "2025-08-20",
		}, apperr.IsValidation},
		{"duplicate component", service.SubmitBlendRequest{
			ComponentCodes: []string{kernel, kernel}, Percentages: []float64{50, 50}, BlendDate: "2025-08-20",
		}, apperr.IsValidation},
		{"zero share", service.SubmitBlendRequest{
			ComponentCodes: []string{kernel, whole}, Percentages: []float64{100, 0}, BlendDate: "2025-08-20",
		}, apperr.IsValidation},
		{"unknown component", service.SubmitBlendRequest{
			ComponentCodes: []string{kernel, "GNO-K-7-05082025-SKM"}, Percentages: []float64{50, 50}, BlendDate: "2025-08-20",
		}, apperr.IsReferenceData},
		{"malformed component", service.SubmitBlendRequest{
			ComponentCodes: []string{kernel, "nope"}, Percentages: []float64{50, 50}, BlendDate: "2025-08-20",
		}, apperr.IsParse},
	}
	for _, tc := range cases {
		if _, err := f.svc.Blend.Submit(ctx, tc.req, user); !tc.check(err) {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
	}

	var qerr *apperr.InvalidQuantityError
	_, err := f.svc.Blend.Submit(ctx, cases[4].req, user)
	if !errors.As(err, &qerr) || qerr.Field != "percentages[1]" {
		t.Errorf("zero share: got %v", err)
	}
	if n := f.count(t, &entity.Blend{}); n != 0 {
		t.Errorf("%d blends written", n)
	}
}
