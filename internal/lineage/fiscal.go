package lineage

import (
	"fmt"
	"time"
)

// FiscalYearStartMonth is the first month of a financial year.
const FiscalYearStartMonth = time.April

// DayEpoch is day zero for integer day counts.
var DayEpoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// FinancialYear returns the "YYYY-YY" financial year containing t. January to
// March belong to the year that began in the previous calendar year.
func FinancialYear(t time.Time) string {
	start := t.Year()
	if t.Month() < FiscalYearStartMonth {
		start--
	}
	return fmt.Sprintf("%04d-%02d", start, (start+1)%100)
}

// FinancialYearOfDay is FinancialYear for a day count since DayEpoch.
func FinancialYearOfDay(day int) string {
	return FinancialYear(DayEpoch.AddDate(0, 0, day))
}
