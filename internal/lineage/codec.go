// Package lineage encodes and decodes the human-readable lineage codes that
// identify purchase lines, production batches and blends.
//
// Segments are separated by "-". Purchase and production codes share one
// grammar:
//
//	code   := material "-" serial "-" DDMMYYYY "-" suffix
//	legacy := material "-" DDMMYYYY "-" suffix
//
// where material is a short code such as "GNS-K", serial is a positive integer
// and suffix is the supplier short code (purchases) or the production unit code
// (batches). Blend codes are described in blend.go.
//
// The codec is pure. It never checks uniqueness; callers verify generated codes
// against the store.
package lineage

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
)

// DateLayout is the DDMMYYYY date segment layout.
const DateLayout = "02012006"

// Separator joins code segments.
const Separator = "-"

const (
	segmentsWithSerial = 5
	segmentsLegacy     = 4
)

var datePattern = regexp.MustCompile(`^[0-9]{8}$`)

// Code is the decoded form of a purchase or production lineage code.
type Code struct {
	MaterialCode string
	// Serial is zero for legacy codes that carry no serial segment.
	Serial  int64
	DateStr string
	// Suffix is the supplier short code on purchases and the production unit
	// code on batches.
	Suffix string
}

// HasSerial reports whether the code carried an explicit serial segment.
func (c Code) HasSerial() bool {
	return c.Serial > 0
}

// Date parses DateStr.
func (c Code) Date() (time.Time, error) {
	return ParseDate(c.DateStr)
}

// String re-encodes the code in its own form (legacy codes stay legacy).
func (c Code) String() string {
	if c.HasSerial() {
		return strings.Join([]string{c.MaterialCode, strconv.FormatInt(c.Serial, 10), c.DateStr, c.Suffix}, Separator)
	}
	return strings.Join([]string{c.MaterialCode, c.DateStr, c.Suffix}, Separator)
}

// FormatDate renders t as a DDMMYYYY segment.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DDMMYYYY segment.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, &apperr.ParseError{Code: s, Reason: "date segment is not 8 digits"}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &apperr.ParseError{Code: s, Reason: "date segment is not a calendar date"}
	}
	return t, nil
}

// Decode parses a purchase or production lineage code. Both the 5-segment form
// and the legacy 4-segment form without a serial are accepted.
func Decode(code string) (Code, error) {
	trimmed := strings.TrimSpace(code)
	segments := strings.Split(trimmed, Separator)
	if len(segments) != segmentsWithSerial && len(segments) != segmentsLegacy {
		return Code{}, &apperr.ParseError{
			Code:   code,
			Reason: fmt.Sprintf("expected %d or %d segments, got %d", segmentsLegacy, segmentsWithSerial, len(segments)),
		}
	}
	for _, seg := range segments {
		if seg == "" {
			return Code{}, &apperr.ParseError{Code: code, Reason: "empty segment"}
		}
	}

	dateIdx := -1
	for i := len(segments) - 2; i >= 1; i-- {
		if datePattern.MatchString(segments[i]) {
			dateIdx = i
			break
		}
	}
	if dateIdx != len(segments)-2 {
		return Code{}, &apperr.ParseError{Code: code, Reason: "date segment is not numeric"}
	}
	if _, err := ParseDate(segments[dateIdx]); err != nil {
		return Code{}, &apperr.ParseError{Code: code, Reason: "date segment is not a calendar date"}
	}

	out := Code{
		DateStr: segments[dateIdx],
		Suffix:  segments[dateIdx+1],
	}
	if len(segments) == segmentsLegacy {
		out.MaterialCode = strings.Join(segments[:dateIdx], Separator)
		return out, nil
	}

	serial, err := strconv.ParseInt(segments[dateIdx-1], 10, 64)
	if err != nil || serial < 1 {
		return Code{}, &apperr.ParseError{Code: code, Reason: "serial segment is not a positive integer"}
	}
	out.Serial = serial
	out.MaterialCode = strings.Join(segments[:dateIdx-1], Separator)
	return out, nil
}

// checkMaterialCode enforces the "MMM-S" short code shape: exactly one
// separator with both halves present.
func checkMaterialCode(entity, id, code string) error {
	parts := strings.Split(code, Separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.ContainsAny(code, " \t\n") {
		return &apperr.ReferenceDataError{Entity: entity, ID: id, Field: "short_code",
			Message: fmt.Sprintf("%q must be a prefix and a category joined by %q", code, Separator)}
	}
	return nil
}

// checkSuffix enforces a single-segment supplier or unit short code that
// cannot be mistaken for a date segment.
func checkSuffix(entity, id, code string) error {
	if strings.Contains(code, Separator) || strings.ContainsAny(code, " \t\n") || datePattern.MatchString(code) {
		return &apperr.ReferenceDataError{Entity: entity, ID: id, Field: "short_code",
			Message: fmt.Sprintf("%q must be a single segment that is not a date", code)}
	}
	return nil
}

func encode(materialCode string, serial int64, dateStr, suffix string) (string, error) {
	if serial < 1 {
		return "", apperr.Validation("serial", "must be >= 1, got %d", serial)
	}
	if _, err := ParseDate(dateStr); err != nil {
		return "", err
	}
	out := Code{MaterialCode: materialCode, Serial: serial, DateStr: dateStr, Suffix: suffix}
	code := out.String()
	if back, err := Decode(code); err != nil || back != out {
		return "", &apperr.ParseError{Code: code, Reason: "encoded code does not decode to its own fields"}
	}
	return code, nil
}
