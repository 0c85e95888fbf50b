package models

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month as a "YYYY-MM" string.
// It is the unit of reconciliation: transactions, snapshots and settlements
// are all keyed by it.
type MonthKey string

const monthKeyLayout = "2006-01"

// ParseMonthKey validates s and returns it as a MonthKey.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse(monthKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid month key %q: %w", s, err)
	}
	return MonthKey(t.Format(monthKeyLayout)), nil
}

// MonthKeyFor returns the MonthKey of the month containing t.
func MonthKeyFor(t time.Time) MonthKey {
	return MonthKey(t.Format(monthKeyLayout))
}

// Valid reports whether the key is a well-formed "YYYY-MM" string.
func (m MonthKey) Valid() bool {
	_, err := time.Parse(monthKeyLayout, string(m))
	return err == nil
}

// IsJanuary reports whether the key falls in January.
// Budget carryover resets at this boundary.
func (m MonthKey) IsJanuary() bool {
	t, err := time.Parse(monthKeyLayout, string(m))
	return err == nil && t.Month() == time.January
}

// Prev returns the key of the previous month, wrapping the year boundary
// (Prev of "2026-01" is "2025-12"). The zero value is returned for an
// invalid key.
func (m MonthKey) Prev() MonthKey {
	t, err := time.Parse(monthKeyLayout, string(m))
	if err != nil {
		return ""
	}
	return MonthKey(t.AddDate(0, -1, 0).Format(monthKeyLayout))
}

func (m MonthKey) String() string {
	return string(m)
}
