package models

import "github.com/shopspring/decimal"

// SplitRule overrides the default 50/50 split for shared transactions of
// specific expense types. Member1Percent + Member2Percent must equal 100;
// member one is the household owner.
//
// At most one rule per household may be the default (IsDefault true with an
// empty ExpenseTypeIDs set). Expense-type-specific rules take precedence
// over the default; the implicit fallback when no rule applies is 50/50.
type SplitRule struct {
	ID             string
	HouseholdID    string
	Member1Percent decimal.Decimal
	Member2Percent decimal.Decimal
	IsDefault      bool
	ExpenseTypeIDs []string
	CreatedAt      int64
}

// AppliesTo reports whether the rule covers the given expense type.
func (r SplitRule) AppliesTo(expenseTypeID string) bool {
	if expenseTypeID == "" {
		return false
	}
	for _, id := range r.ExpenseTypeIDs {
		if id == expenseTypeID {
			return true
		}
	}
	return false
}

// BudgetRule is a monthly allowance the giver provides to the receiver for
// spending within the linked expense types. Giver and receiver must differ;
// that invariant is enforced at creation time, not during recomputation.
type BudgetRule struct {
	ID             string
	HouseholdID    string
	GiverUserID    string
	ReceiverUserID string
	MonthlyAmount  decimal.Decimal
	ExpenseTypeIDs []string
	IsActive       bool
	CreatedAt      int64
}

// Covers reports whether the rule tracks the given expense type.
func (r BudgetRule) Covers(expenseTypeID string) bool {
	if expenseTypeID == "" {
		return false
	}
	for _, id := range r.ExpenseTypeIDs {
		if id == expenseTypeID {
			return true
		}
	}
	return false
}
