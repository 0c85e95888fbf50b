package models

import "github.com/shopspring/decimal"

// BudgetSnapshot is the computed budget status of one rule for one month.
// There is at most one snapshot per (BudgetRuleID, MonthKey).
//
// A finalized snapshot is the authoritative carryover source for the
// following month and is never recomputed. Only the settlement lifecycle
// flips IsFinalized, in both directions.
type BudgetSnapshot struct {
	ID                    string
	BudgetRuleID          string
	MonthKey              MonthKey
	BudgetAmount          decimal.Decimal
	SpentAmount           decimal.Decimal
	GiverReimbursement    decimal.Decimal
	CarryoverFromPrevious decimal.Decimal
	NetBalance            decimal.Decimal
	IsFinalized           bool
	UpdatedAt             int64
}
