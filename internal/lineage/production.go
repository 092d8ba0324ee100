package lineage

import (
	"strings"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
)

// Default category markers in the third character of a material short code.
const (
	DefaultSeedMarker byte = 'S'
	DefaultOilMarker  byte = 'O'

	categoryMarkerPos = 2
)

// Markers configures the seed→oil category swap.
type Markers struct {
	Seed byte
	Oil  byte
}

// DefaultMarkers swaps 'S' for 'O' ("GNS-K" → "GNO-K").
var DefaultMarkers = Markers{Seed: DefaultSeedMarker, Oil: DefaultOilMarker}

// OilMaterialCode derives the oil material code from a seed material code.
// Codes without the seed marker are returned unchanged.
func (m Markers) OilMaterialCode(seedCode string) string {
	if len(seedCode) <= categoryMarkerPos || seedCode[categoryMarkerPos] != m.Seed {
		return seedCode
	}
	b := []byte(seedCode)
	b[categoryMarkerPos] = m.Oil
	return string(b)
}

// OilMaterialCode applies DefaultMarkers.
func OilMaterialCode(seedCode string) string {
	return DefaultMarkers.OilMaterialCode(seedCode)
}

// BatchFields are the inputs of a production lineage code.
type BatchFields struct {
	OilMaterialCode string
	Serial          int64
	// SeedDateStr is the DDMMYYYY date of the originating seed purchase.
	SeedDateStr string
	UnitCode    string
}

// EncodeBatch builds "OOO-S-SERIAL-DDMMYYYY-UNIT".
func EncodeBatch(f BatchFields) (string, error) {
	if strings.TrimSpace(f.OilMaterialCode) == "" {
		return "", &apperr.ReferenceDataError{Entity: "material", Field: "short_code", Message: "is not set"}
	}
	if strings.TrimSpace(f.UnitCode) == "" {
		return "", &apperr.ReferenceDataError{Entity: "production_unit", Field: "short_code", Message: "is not set"}
	}
	if err := checkMaterialCode("material", "", f.OilMaterialCode); err != nil {
		return "", err
	}
	if err := checkSuffix("production_unit", "", f.UnitCode); err != nil {
		return "", err
	}
	return encode(f.OilMaterialCode, f.Serial, f.SeedDateStr, f.UnitCode)
}

// DecodeProduction is Decode with the suffix read as a production unit code.
func DecodeProduction(code string) (Code, error) {
	return Decode(code)
}

// BatchScanPrefix is the prefix shared by every production code for the given
// oil material code. Serial reconciliation scans codes with this prefix.
func BatchScanPrefix(oilMaterialCode string) string {
	return oilMaterialCode + Separator
}
