package calculator

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/anagh/homeledger/internal/models"
)

// maxCarryoverDepth bounds the fallback recursion through unfinalized
// months. The primary path is an O(1) lookup of the previous month's
// finalized snapshot; the recursion only runs for back-filled history that
// was never settled in order.
const maxCarryoverDepth = 60

// SnapshotSource looks up finalized budget snapshots. Implementations
// return models.ErrNotFound when no finalized snapshot exists for the key.
type SnapshotSource interface {
	FinalizedSnapshot(ctx context.Context, budgetRuleID string, month models.MonthKey) (*models.BudgetSnapshot, error)
}

// TransactionSource loads a household's transactions for one month.
type TransactionSource interface {
	TransactionsForMonth(ctx context.Context, householdID string, month models.MonthKey) ([]models.Transaction, error)
}

// BudgetStatus is the computed state of one budget rule for one month.
type BudgetStatus struct {
	BudgetAmount       decimal.Decimal
	SpentAmount        decimal.Decimal
	GiverReimbursement decimal.Decimal
	Remaining          decimal.Decimal

	// PercentUsed is spent/budget*100, capped at 100. Zero when the
	// budget amount is zero.
	PercentUsed decimal.Decimal

	IsOverBudget bool

	// CarryoverFromPrevious is last month's net balance, zero in January.
	CarryoverFromPrevious decimal.Decimal

	// NetBalance is budget - spent + carryover: the cumulative surplus
	// (positive) or deficit (negative).
	NetBalance decimal.Decimal
}

// BudgetCalculator computes budget statuses and resolves cross-month
// carryover. It is read-only; snapshot writes belong to the service layer.
type BudgetCalculator struct {
	snapshots    SnapshotSource
	transactions TransactionSource
}

// NewBudgetCalculator returns a calculator backed by the given sources.
func NewBudgetCalculator(snapshots SnapshotSource, transactions TransactionSource) *BudgetCalculator {
	return &BudgetCalculator{snapshots: snapshots, transactions: transactions}
}

// Status computes the budget status of rule for month, loading the month's
// transactions from the transaction source.
func (c *BudgetCalculator) Status(ctx context.Context, rule models.BudgetRule, month models.MonthKey) (BudgetStatus, error) {
	return c.status(ctx, rule, month, nil, newCarryoverPass())
}

// StatusWithTransactions is Status with the month's transactions already in
// hand, so callers reconciling the same month avoid a second load. txs must
// be the complete transaction set of rule's household for month.
func (c *BudgetCalculator) StatusWithTransactions(ctx context.Context, rule models.BudgetRule, month models.MonthKey, txs []models.Transaction) (BudgetStatus, error) {
	return c.status(ctx, rule, month, txs, newCarryoverPass())
}

// Carryover resolves the net balance carried into month from the month
// before. January always resolves to zero: carryover resets each calendar
// year unconditionally, even when a finalized December snapshot exists.
func (c *BudgetCalculator) Carryover(ctx context.Context, rule models.BudgetRule, month models.MonthKey) (decimal.Decimal, error) {
	return c.carryover(ctx, rule, month, newCarryoverPass())
}

// carryoverPass memoizes net balances within a single calculation so a
// chain of unfinalized months is computed once each.
type carryoverPass struct {
	netBalances map[models.MonthKey]decimal.Decimal
	depth       int
}

func newCarryoverPass() *carryoverPass {
	return &carryoverPass{netBalances: make(map[models.MonthKey]decimal.Decimal)}
}

func (c *BudgetCalculator) status(ctx context.Context, rule models.BudgetRule, month models.MonthKey, txs []models.Transaction, pass *carryoverPass) (BudgetStatus, error) {
	st := BudgetStatus{
		BudgetAmount:          rule.MonthlyAmount,
		SpentAmount:           decimal.Zero,
		GiverReimbursement:    decimal.Zero,
		Remaining:             rule.MonthlyAmount,
		PercentUsed:           decimal.Zero,
		CarryoverFromPrevious: decimal.Zero,
		NetBalance:            rule.MonthlyAmount,
	}

	// A rule with no linked expense types tracks nothing.
	if len(rule.ExpenseTypeIDs) == 0 {
		return st, nil
	}

	if txs == nil {
		var err error
		txs, err = c.transactions.TransactionsForMonth(ctx, rule.HouseholdID, month)
		if err != nil {
			return BudgetStatus{}, fmt.Errorf("load transactions for %s: %w", month, err)
		}
	}

	for _, tx := range txs {
		if !rule.Covers(tx.ExpenseTypeID) {
			continue
		}
		st.SpentAmount = st.SpentAmount.Add(tx.Amount)
		if tx.PaidByUserID == rule.GiverUserID {
			// Money the giver fronted that should flow back to them.
			st.GiverReimbursement = st.GiverReimbursement.Add(tx.Amount)
		}
	}

	st.Remaining = st.BudgetAmount.Sub(st.SpentAmount)
	st.IsOverBudget = st.SpentAmount.GreaterThan(st.BudgetAmount)
	if st.BudgetAmount.IsPositive() {
		pct := st.SpentAmount.Div(st.BudgetAmount).Mul(hundred)
		if pct.GreaterThan(hundred) {
			pct = hundred
		}
		st.PercentUsed = pct
	}

	carryover, err := c.carryover(ctx, rule, month, pass)
	if err != nil {
		return BudgetStatus{}, err
	}
	st.CarryoverFromPrevious = carryover
	st.NetBalance = st.BudgetAmount.Sub(st.SpentAmount).Add(carryover)
	return st, nil
}

func (c *BudgetCalculator) carryover(ctx context.Context, rule models.BudgetRule, month models.MonthKey, pass *carryoverPass) (decimal.Decimal, error) {
	if month.IsJanuary() {
		return decimal.Zero, nil
	}
	prev := month.Prev()
	if prev == "" {
		return decimal.Zero, fmt.Errorf("invalid month key %q", month)
	}

	if net, ok := pass.netBalances[prev]; ok {
		return net, nil
	}

	snap, err := c.snapshots.FinalizedSnapshot(ctx, rule.ID, prev)
	switch {
	case err == nil:
		// Finalized snapshots are authoritative; never recompute them.
		pass.netBalances[prev] = snap.NetBalance
		return snap.NetBalance, nil
	case !errors.Is(err, models.ErrNotFound):
		return decimal.Zero, fmt.Errorf("load snapshot for %s: %w", prev, err)
	}

	if pass.depth >= maxCarryoverDepth {
		return decimal.Zero, fmt.Errorf("resolving carryover for %s: %w", month, models.ErrCarryoverDepthExceeded)
	}
	pass.depth++
	st, err := c.status(ctx, rule, prev, nil, pass)
	if err != nil {
		return decimal.Zero, err
	}
	pass.netBalances[prev] = st.NetBalance
	return st.NetBalance, nil
}
