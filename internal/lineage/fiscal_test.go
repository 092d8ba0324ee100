package lineage

import (
	"testing"
	"time"
)

func TestFinancialYear(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{date(2025, time.April, 1), "2025-26"},
		{date(2025, time.March, 31), "2024-25"},
		{date(2025, time.December, 31), "2025-26"},
		{date(2026, time.January, 1), "2025-26"},
		{date(2000, time.January, 15), "1999-00"},
		{date(1999, time.June, 15), "1999-00"},
	}
	for _, tc := range cases {
		if got := FinancialYear(tc.in); got != tc.want {
			t.Errorf("FinancialYear(%s) = %s, want %s", tc.in.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestFinancialYearOfDay(t *testing.T) {
	// 2025-01-01 is day 20089.
	if got := FinancialYearOfDay(20089); got != "2024-25" {
		t.Errorf("day 20089: got %s", got)
	}
	// 2025-04-01 is day 20179.
	if got := FinancialYearOfDay(20179); got != "2025-26" {
		t.Errorf("day 20179: got %s", got)
	}
	if got := FinancialYearOfDay(0); got != "1969-70" {
		t.Errorf("day 0: got %s", got)
	}
}
