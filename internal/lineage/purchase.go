package lineage

import (
	"strings"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
)

// PurchaseFields are the inputs of a material lineage code.
type PurchaseFields struct {
	MaterialID   string
	MaterialCode string
	SupplierID   string
	SupplierCode string
	Serial       int64
	Date         time.Time
}

// EncodePurchase builds "MMM-S-SERIAL-DDMMYYYY-SUP".
func EncodePurchase(f PurchaseFields) (string, error) {
	if strings.TrimSpace(f.MaterialCode) == "" {
		return "", &apperr.ReferenceDataError{Entity: "material", ID: f.MaterialID, Field: "short_code", Message: "is not set"}
	}
	if strings.TrimSpace(f.SupplierCode) == "" {
		return "", &apperr.ReferenceDataError{Entity: "supplier", ID: f.SupplierID, Field: "short_code", Message: "is not set"}
	}
	if err := checkMaterialCode("material", f.MaterialID, f.MaterialCode); err != nil {
		return "", err
	}
	if err := checkSuffix("supplier", f.SupplierID, f.SupplierCode); err != nil {
		return "", err
	}
	return encode(f.MaterialCode, f.Serial, FormatDate(f.Date), f.SupplierCode)
}

// DecodePurchase is Decode with the suffix read as a supplier short code.
func DecodePurchase(code string) (Code, error) {
	return Decode(code)
}
