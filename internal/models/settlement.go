package models

import "github.com/shopspring/decimal"

// Settlement records the final reconciliation of one household month.
// There is at most one settlement per (HouseholdID, MonthKey), and its
// existence is the lock flag for the month: once present, transactions of
// that month are read-only.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// HouseholdID is the household this settlement belongs to.
	HouseholdID string

	// MonthKey is the month being settled.
	MonthKey MonthKey

	// FromUserID is the member who owes (debtor settling up).
	FromUserID string

	// ToUserID is the member who is owed (creditor being paid).
	ToUserID string

	// Amount is the settlement amount; zero when the month balances out.
	Amount decimal.Decimal

	// Message is the human-readable settlement sentence.
	Message string

	// SettledAt is the Unix timestamp when the month was settled.
	SettledAt int64
}
