package lineage

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
)

// Blend codes:
//
//	blend := prefix initials "-" DDMMYYYY "-" unit
//
// prefix is the 3-character oil type of the largest component and initials are
// one to MaxBlendSuppliers single-character supplier identifiers, ordered by
// descending blend share.

const (
	// OilPrefixLen is the length of the oil-type prefix.
	OilPrefixLen = 3
	// MaxBlendSuppliers caps the supplier initials in a blend code.
	MaxBlendSuppliers = 4

	blendSegments = 3
)

// BlendComponent is one input of a blend. Code may be a purchase, batch or
// blend lineage code.
type BlendComponent struct {
	Code       string
	Percentage float64
}

// BlendCode is the decoded form of a blend lineage code.
type BlendCode struct {
	OilPrefix string
	Suppliers []string
	DateStr   string
	UnitCode  string
}

func (b BlendCode) String() string {
	return b.OilPrefix + strings.Join(b.Suppliers, "") + Separator + b.DateStr + Separator + b.UnitCode
}

// IsBlendCode reports whether code has the blend shape.
func IsBlendCode(code string) bool {
	segments := strings.Split(strings.TrimSpace(code), Separator)
	return len(segments) == blendSegments &&
		len(segments[0]) > OilPrefixLen &&
		datePattern.MatchString(segments[1])
}

// ComponentIdentity returns the oil prefix and supplier identifiers of a
// component code.
func ComponentIdentity(code string) (string, []string, error) {
	if IsBlendCode(code) {
		b, err := DecodeBlend(code)
		if err != nil {
			return "", nil, err
		}
		return b.OilPrefix, b.Suppliers, nil
	}
	c, err := Decode(code)
	if err != nil {
		return "", nil, err
	}
	if len(c.MaterialCode) < OilPrefixLen {
		return "", nil, &apperr.ParseError{Code: code, Reason: "material code shorter than oil prefix"}
	}
	prefix := c.MaterialCode[:OilPrefixLen]

	// "GNO-K": the supplier initial follows the category segment.
	idx := strings.Index(c.MaterialCode, Separator)
	if idx < 0 || idx+1 >= len(c.MaterialCode) {
		return "", nil, &apperr.ParseError{Code: code, Reason: "material code has no supplier segment"}
	}
	initial, _ := utf8.DecodeRuneInString(c.MaterialCode[idx+1:])
	return prefix, []string{strings.ToUpper(string(initial))}, nil
}

// EncodeBlend builds a blend lineage code from its components.
func EncodeBlend(components []BlendComponent, date time.Time, unitCode string) (string, error) {
	if len(components) == 0 {
		return "", apperr.Validation("components", "at least one component is required")
	}
	if strings.TrimSpace(unitCode) == "" {
		return "", &apperr.ReferenceDataError{Entity: "production_unit", Field: "short_code", Message: "is not set"}
	}
	if err := checkSuffix("production_unit", "", unitCode); err != nil {
		return "", err
	}

	sorted := make([]BlendComponent, len(components))
	copy(sorted, components)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Percentage > sorted[j].Percentage
	})

	var prefix string
	seen := make(map[string]bool)
	suppliers := make([]string, 0, MaxBlendSuppliers)
	for i, comp := range sorted {
		p, ids, err := ComponentIdentity(comp.Code)
		if err != nil {
			return "", fmt.Errorf("component %d: %w", i, err)
		}
		if i == 0 {
			prefix = p
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			suppliers = append(suppliers, id)
		}
	}
	if len(suppliers) > MaxBlendSuppliers {
		suppliers = suppliers[:MaxBlendSuppliers]
	}

	return BlendCode{
		OilPrefix: prefix,
		Suppliers: suppliers,
		DateStr:   FormatDate(date),
		UnitCode:  unitCode,
	}.String(), nil
}

// DecodeBlend parses a blend lineage code.
func DecodeBlend(code string) (BlendCode, error) {
	segments := strings.Split(strings.TrimSpace(code), Separator)
	if len(segments) != blendSegments {
		return BlendCode{}, &apperr.ParseError{
			Code:   code,
			Reason: fmt.Sprintf("expected %d segments, got %d", blendSegments, len(segments)),
		}
	}
	head := segments[0]
	if len(head) <= OilPrefixLen || utf8.RuneCountInString(head[OilPrefixLen:]) > MaxBlendSuppliers {
		return BlendCode{}, &apperr.ParseError{Code: code, Reason: "blend head must hold a prefix and 1-4 supplier initials"}
	}
	if _, err := ParseDate(segments[1]); err != nil {
		return BlendCode{}, &apperr.ParseError{Code: code, Reason: "date segment is not numeric"}
	}
	if segments[2] == "" {
		return BlendCode{}, &apperr.ParseError{Code: code, Reason: "empty unit segment"}
	}

	out := BlendCode{
		OilPrefix: head[:OilPrefixLen],
		DateStr:   segments[1],
		UnitCode:  segments[2],
	}
	for _, r := range head[OilPrefixLen:] {
		out.Suppliers = append(out.Suppliers, string(r))
	}
	return out, nil
}
