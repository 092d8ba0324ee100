package lineage

import (
	"reflect"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
)

func TestEncodeBlendOrdersByShareAndDedupes(t *testing.T) {
	components := []BlendComponent{
		{Code: "GNO-K-1-05082025-SKM", Percentage: 30},
		{Code: "GNO-A-2-06082025-SKM", Percentage: 50},
		{Code: "GNO-K-3-07082025-SKM", Percentage: 20},
	}
	code, err := EncodeBlend(components, date(2025, time.August, 10), "SKM")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if code != "GNOAK-10082025-SKM" {
		t.Fatalf("unexpected blend code %s", code)
	}

	decoded, err := DecodeBlend(code)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := BlendCode{OilPrefix: "GNO", Suppliers: []string{"A", "K"}, DateStr: "10082025", UnitCode: "SKM"}
	if !reflect.DeepEqual(decoded, want) {
		t.Fatalf("decoded %+v, want %+v", decoded, want)
	}
	if decoded.String() != code {
		t.Errorf("String() = %s", decoded.String())
	}
}

func TestEncodeBlendCapsSuppliers(t *testing.T) {
	components := []BlendComponent{
		{Code: "GNO-A-1-05082025-SKM", Percentage: 25},
		{Code: "GNO-B-1-05082025-SKM", Percentage: 20},
		{Code: "GNO-C-1-05082025-SKM", Percentage: 20},
		{Code: "GNO-D-1-05082025-SKM", Percentage: 20},
		{Code: "GNO-E-1-05082025-SKM", Percentage: 15},
	}
	code, err := EncodeBlend(components, date(2025, time.August, 10), "SKM")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if code != "GNOABCD-10082025-SKM" {
		t.Fatalf("unexpected blend code %s", code)
	}
}

func TestEncodeBlendAcceptsBlendComponents(t *testing.T) {
	components := []BlendComponent{
		{Code: "GNO-B-1-05082025-SKM", Percentage: 40},
		{Code: "GNOAK-10082025-SKM", Percentage: 60},
	}
	code, err := EncodeBlend(components, date(2025, time.August, 12), "PVM")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if code != "GNOAKB-12082025-PVM" {
		t.Fatalf("unexpected blend code %s", code)
	}
}

func TestEncodeBlendErrors(t *testing.T) {
	if _, err := EncodeBlend(nil, date(2025, 1, 1), "SKM"); !apperr.IsValidation(err) {
		t.Errorf("empty components: expected ValidationError, got %v", err)
	}
	if _, err := EncodeBlend([]BlendComponent{{Code: "GNO-A-1-05082025-SKM", Percentage: 100}}, date(2025, 1, 1), ""); !apperr.IsReferenceData(err) {
		t.Errorf("missing unit: expected ReferenceDataError, got %v", err)
	}
	if _, err := EncodeBlend([]BlendComponent{{Code: "GNO-A-1-05082025-SKM", Percentage: 100}}, date(2025, 1, 1), "S-KM"); !apperr.IsReferenceData(err) {
		t.Errorf("dashed unit: expected ReferenceDataError, got %v", err)
	}
	if _, err := EncodeBlend([]BlendComponent{{Code: "garbage", Percentage: 100}}, date(2025, 1, 1), "SKM"); !apperr.IsParse(err) {
		t.Errorf("bad component: expected ParseError, got %v", err)
	}
}

func TestDecodeBlendRejectsMalformed(t *testing.T) {
	for _, code := range []string{
		"GNOA-10082025",
		"GNO-10082025-SKM",
		"GNOABCDE-10082025-SKM",
		"GNOA-1008202X-SKM",
		"GNOA-10082025-",
	} {
		if _, err := DecodeBlend(code); !apperr.IsParse(err) {
			t.Errorf("DecodeBlend(%q): expected ParseError, got %v", code, err)
		}
	}
}

func TestComponentIdentityOfLegacyCode(t *testing.T) {
	prefix, ids, err := ComponentIdentity("GNO-k-05082025-SKM")
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	if prefix != "GNO" || !reflect.DeepEqual(ids, []string{"K"}) {
		t.Fatalf("got %s %v", prefix, ids)
	}
}

func TestComponentIdentityKeepsMultiByteInitials(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"GNO-é-1-05082025-SKM", "É"},
		{"GNO-ñA-1-05082025-SKM", "Ñ"},
		{"GNO-K-1-05082025-SKM", "K"},
	}
	for _, tc := range cases {
		_, ids, err := ComponentIdentity(tc.code)
		if err != nil {
			t.Fatalf("%s: %v", tc.code, err)
		}
		if !reflect.DeepEqual(ids, []string{tc.want}) {
			t.Errorf("%s: got %q, want %q", tc.code, ids, tc.want)
		}
	}

	code, err := EncodeBlend([]BlendComponent{
		{Code: "GNO-é-1-05082025-SKM", Percentage: 60},
		{Code: "GNO-Ñ-2-05082025-SKM", Percentage: 40},
	}, date(2025, time.August, 6), "SKM")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if code != "GNOÉÑ-06082025-SKM" {
		t.Fatalf("unexpected code %s", code)
	}
	decoded, err := DecodeBlend(code)
	if err != nil {
		t.Fatalf("decode %s: %v", code, err)
	}
	if !reflect.DeepEqual(decoded.Suppliers, []string{"É", "Ñ"}) {
		t.Fatalf("round trip suppliers %q", decoded.Suppliers)
	}
}
