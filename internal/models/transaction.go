package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies how a transaction's cost is divided between the two
// household members. The string values are a closed enumeration and are
// stored as-is.
type Category string

const (
	// CategoryShared is split between both members, 50/50 unless a split
	// rule for the transaction's expense type says otherwise.
	CategoryShared Category = "SHARED"

	// CategoryOwnerForPartner: the owner pays, the partner bears the cost.
	CategoryOwnerForPartner Category = "I_PAY_FOR_WIFE"

	// CategoryPartnerForOwner: the partner pays, the owner bears the cost.
	CategoryPartnerForOwner Category = "WIFE_PAYS_FOR_ME"

	// CategoryPersonalOwner is the owner's own expense.
	CategoryPersonalOwner Category = "PERSONAL_ME"

	// CategoryPersonalPartner is the partner's own expense.
	CategoryPersonalPartner Category = "PERSONAL_WIFE"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryShared, CategoryOwnerForPartner, CategoryPartnerForOwner,
		CategoryPersonalOwner, CategoryPersonalPartner:
		return true
	}
	return false
}

// Transaction is a single household expense. Amounts are already converted
// to the household's base currency with two-decimal precision; currency
// conversion happens upstream.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// HouseholdID is the household this transaction belongs to.
	HouseholdID string

	// Date is the day the expense occurred.
	Date time.Time

	// Merchant is where the money was spent.
	Merchant string

	// Amount is the expense amount in the base currency.
	Amount decimal.Decimal

	// PaidByUserID is the member who fronted the money.
	PaidByUserID string

	// Category determines the base split semantics.
	Category Category

	// ExpenseTypeID optionally links the transaction to an expense type,
	// which split rules and budget rules key on. Empty means untyped.
	ExpenseTypeID string

	// MonthKey is derived from Date and must match the month being
	// reconciled.
	MonthKey MonthKey

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64
}
