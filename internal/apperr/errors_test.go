package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestInvalidQuantityIsValidation(t *testing.T) {
	err := fmt.Errorf("landed cost: %w", &InvalidQuantityError{Field: "quantity", Value: 0})
	if !IsValidation(err) {
		t.Fatal("InvalidQuantityError should match ValidationError")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "quantity" {
		t.Fatalf("unexpected validation error: %+v", verr)
	}
}

func TestInvalidConfigurationIsReferenceData(t *testing.T) {
	err := fmt.Errorf("submit batch: %w", &InvalidConfigurationError{ReferenceDataError{
		Entity: "material", ID: "m-1", Field: "target_oil_type", Message: "is not configured",
	}})
	if !IsReferenceData(err) {
		t.Fatal("InvalidConfigurationError should match ReferenceDataError")
	}
	var rerr *ReferenceDataError
	if !errors.As(err, &rerr) || rerr.ID != "m-1" {
		t.Fatalf("unexpected reference error: %+v", rerr)
	}
	if IsValidation(err) {
		t.Error("configuration errors are not validation errors")
	}
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"stock", &InsufficientStockError{ItemType: "MATERIAL", ItemKey: "m", Available: 1, Requested: 2}, IsInsufficientStock},
		{"parse", &ParseError{Code: "x", Reason: "bad"}, IsParse},
		{"collision", &CollisionError{Code: "GNO-K-1-05082025-SKM", Entity: "batch"}, IsCollision},
		{"duplicate", &DuplicateError{Code: "GNOK-20082025-SKM", Entity: "blend"}, IsDuplicate},
		{"validation", Validation("date", "is required"), IsValidation},
	}
	for _, tc := range cases {
		if !tc.is(fmt.Errorf("wrapped: %w", tc.err)) {
			t.Errorf("%s: predicate did not match wrapped error", tc.name)
		}
		if tc.is(errors.New("plain")) {
			t.Errorf("%s: predicate matched a plain error", tc.name)
		}
	}
}

func TestMessages(t *testing.T) {
	err := &InsufficientStockError{ItemType: "MATERIAL", ItemKey: "m-1", Available: 5, Requested: 7.5}
	want := "insufficient stock for MATERIAL m-1: requested 7.5000, available 5.0000"
	if err.Error() != want {
		t.Errorf("got %q", err.Error())
	}
	ref := &ReferenceDataError{Entity: "supplier", Field: "short_code", Message: "is not set"}
	if ref.Error() != "reference data supplier.short_code: is not set" {
		t.Errorf("got %q", ref.Error())
	}
}
