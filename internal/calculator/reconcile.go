package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/anagh/homeledger/internal/models"
)

// settledThreshold is the balance magnitude below which a month counts as
// even. Avoids floating-point-era noise from percentage splits.
var settledThreshold = decimal.NewFromFloat(0.01)

const (
	settledMessage     = "All settled up!"
	unsupportedMessage = "Settlement is only supported for two-member households."
)

// CategoryTotal is one row of the per-category breakdown.
type CategoryTotal struct {
	Category models.Category
	Count    int
	Total    decimal.Decimal
}

// Result is the outcome of reconciling one household month.
// Maps are keyed by member ID.
type Result struct {
	// Payments is what each member actually paid out.
	Payments map[string]decimal.Decimal

	// Shares is what each member should have borne after split resolution.
	Shares map[string]decimal.Decimal

	// Balances is Payments - Shares. Positive means the member is owed
	// money; negative means they owe.
	Balances map[string]decimal.Decimal

	// SettlementMessage is the human-readable sentence, e.g.
	// "Bob owes Alice $50.00".
	SettlementMessage string

	// Breakdown groups the month's transactions by category, sorted by
	// total descending.
	Breakdown []CategoryTotal

	// MemberNames maps member IDs to display names.
	MemberNames map[string]string
}

// Reconcile aggregates a month's transactions into per-member payments,
// shares and balances, plus the settlement sentence and category breakdown.
//
// members must be ordered owner first; split fractions are assigned
// positionally to the first two members. The function is pure and
// deterministic: identical inputs yield identical results.
//
// Any member count produces well-defined payments and balances, but the
// settlement sentence is only meaningful for exactly two members; other
// sizes get a fixed unsupported message. This is a documented limitation of
// the two-member household model, not an error.
func Reconcile(txs []models.Transaction, members []models.Member, rules []models.SplitRule) Result {
	res := Result{
		Payments:    make(map[string]decimal.Decimal, len(members)),
		Shares:      make(map[string]decimal.Decimal, len(members)),
		Balances:    make(map[string]decimal.Decimal, len(members)),
		MemberNames: make(map[string]string, len(members)),
	}
	for _, m := range members {
		res.Payments[m.ID] = decimal.Zero
		res.Shares[m.ID] = decimal.Zero
		res.MemberNames[m.ID] = m.DisplayName
	}

	byCategory := make(map[models.Category]*CategoryTotal)
	for _, tx := range txs {
		if _, ok := res.Payments[tx.PaidByUserID]; !ok {
			// Payments by someone outside the member list still count
			// toward their own balance.
			res.Payments[tx.PaidByUserID] = decimal.Zero
			res.Shares[tx.PaidByUserID] = decimal.Zero
		}
		res.Payments[tx.PaidByUserID] = res.Payments[tx.PaidByUserID].Add(tx.Amount)

		if len(members) >= 2 {
			alloc := ResolveSplit(tx, rules)
			m1, m2 := members[0].ID, members[1].ID
			res.Shares[m1] = res.Shares[m1].Add(tx.Amount.Mul(alloc.Member1))
			res.Shares[m2] = res.Shares[m2].Add(tx.Amount.Mul(alloc.Member2))
		}

		ct, ok := byCategory[tx.Category]
		if !ok {
			ct = &CategoryTotal{Category: tx.Category, Total: decimal.Zero}
			byCategory[tx.Category] = ct
		}
		ct.Count++
		ct.Total = ct.Total.Add(tx.Amount)
	}

	for id, paid := range res.Payments {
		res.Balances[id] = paid.Sub(res.Shares[id])
	}

	res.Breakdown = sortedBreakdown(byCategory)
	res.SettlementMessage = settlementMessage(res.Balances, res.MemberNames, members)
	return res
}

func sortedBreakdown(byCategory map[models.Category]*CategoryTotal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// settlementMessage renders who owes whom. Balances within the settled
// threshold read as even.
func settlementMessage(balances map[string]decimal.Decimal, names map[string]string, members []models.Member) string {
	if len(members) != 2 {
		return unsupportedMessage
	}
	first, second := members[0], members[1]
	balance := balances[first.ID]
	if balance.Abs().LessThanOrEqual(settledThreshold) {
		return settledMessage
	}

	creditor, debtor := first, second
	if balance.IsNegative() {
		creditor, debtor = second, first
	}
	return fmt.Sprintf("%s owes %s $%s",
		displayName(names, debtor),
		displayName(names, creditor),
		balance.Abs().StringFixed(2),
	)
}

func displayName(names map[string]string, m models.Member) string {
	if name := names[m.ID]; name != "" {
		return name
	}
	return m.ID
}
