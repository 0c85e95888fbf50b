// Package calculator holds the pure computation core: split resolution,
// month reconciliation and budget status. Nothing here touches the network
// or filesystem; storage access for carryover lookups goes through small
// interfaces supplied by the caller.
package calculator

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/anagh/homeledger/internal/models"
)

// Allocation is the fractional split of a transaction between the two
// household members. Member1 is the owner. Member1 + Member2 == 1.
type Allocation struct {
	Member1 decimal.Decimal
	Member2 decimal.Decimal
}

var (
	fracZero = decimal.Zero
	fracHalf = decimal.NewFromFloat(0.5)
	fracOne  = decimal.NewFromInt(1)
	hundred  = decimal.NewFromInt(100)
)

// baseAllocation returns the category's built-in split. The share belongs
// to whoever bears the cost, independent of who paid: an expense the owner
// covers for the partner is entirely the partner's share.
func baseAllocation(category models.Category) Allocation {
	switch category {
	case models.CategoryShared:
		return Allocation{Member1: fracHalf, Member2: fracHalf}
	case models.CategoryOwnerForPartner, models.CategoryPersonalPartner:
		return Allocation{Member1: fracZero, Member2: fracOne}
	case models.CategoryPartnerForOwner, models.CategoryPersonalOwner:
		return Allocation{Member1: fracOne, Member2: fracZero}
	default:
		// Unknown categories fall back to an even split rather than
		// dropping the amount from the shares.
		return Allocation{Member1: fracHalf, Member2: fracHalf}
	}
}

// ResolveSplit returns the fractional allocation for one transaction.
//
// Split rules only ever affect SHARED transactions; the other categories
// have fixed semantics. For a shared transaction, a rule keyed to the
// transaction's expense type wins over the household default rule, which in
// turn wins over the implicit 50/50. If more than one specific rule matches
// the same expense type the first by input order is used and the ambiguous
// configuration is logged.
func ResolveSplit(tx models.Transaction, rules []models.SplitRule) Allocation {
	if tx.Category != models.CategoryShared {
		return baseAllocation(tx.Category)
	}

	var specific, fallback *models.SplitRule
	for i := range rules {
		r := &rules[i]
		if r.AppliesTo(tx.ExpenseTypeID) && !r.IsDefault {
			if specific != nil {
				slog.Warn("multiple split rules match expense type",
					"expense_type_id", tx.ExpenseTypeID,
					"using_rule_id", specific.ID,
					"ignored_rule_id", r.ID,
				)
				continue
			}
			specific = r
		}
		if r.IsDefault && len(r.ExpenseTypeIDs) == 0 && fallback == nil {
			fallback = r
		}
	}

	rule := specific
	if rule == nil {
		rule = fallback
	}
	if rule == nil {
		return baseAllocation(tx.Category)
	}
	return Allocation{
		Member1: rule.Member1Percent.Div(hundred),
		Member2: rule.Member2Percent.Div(hundred),
	}
}
