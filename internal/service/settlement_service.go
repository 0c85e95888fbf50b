package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/anagh/homeledger/internal/calculator"
	"github.com/anagh/homeledger/internal/metrics"
	"github.com/anagh/homeledger/internal/models"
	"github.com/anagh/homeledger/internal/storage"
)

// SettlementService drives the month lifecycle:
//
//	Open -> Settled   via CreateSettlement (settlement row written, all
//	                  active budget snapshots finalized, atomically)
//	Settled -> Open   via RemoveSettlement (row deleted, snapshots
//	                  unfinalized, values kept, atomically)
//
// Mutual exclusion between concurrent settles of the same month is the
// store's unique (household, month) index; a loser of that race gets
// models.ErrAlreadySettled like any late caller.
type SettlementService struct {
	store   storage.Store
	budgets *BudgetService
}

// NewSettlementService creates a SettlementService with the given storage
// backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store, budgets: NewBudgetService(store)}
}

// CreateSettlement reconciles the month and locks it. members must be the
// household's members, owner first.
//
// Fails with models.ErrAlreadySettled when the month is locked,
// models.ErrNoTransactions when there is nothing to settle, and
// models.ErrUnsupportedHouseholdSize unless exactly two members are given.
func (s *SettlementService) CreateSettlement(ctx context.Context, householdID string, members []models.Member, month models.MonthKey) (*models.Settlement, error) {
	if _, err := s.store.GetSettlement(ctx, householdID, month); err == nil {
		return nil, fmt.Errorf("settle %s: %w", month, models.ErrAlreadySettled)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("check settlement: %w", err)
	}

	txs, err := s.store.TransactionsForMonth(ctx, householdID, month)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("settle %s: %w", month, models.ErrNoTransactions)
	}
	if len(members) != 2 {
		return nil, fmt.Errorf("settle %s with %d members: %w", month, len(members), models.ErrUnsupportedHouseholdSize)
	}

	splitRules, err := s.store.ListSplitRules(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("list split rules: %w", err)
	}
	result := calculator.Reconcile(txs, members, splitRules)
	from, to, amount := settlementParties(result, members)

	budgetRules, err := s.store.ListActiveBudgetRules(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("list budget rules: %w", err)
	}
	snaps := make([]*models.BudgetSnapshot, 0, len(budgetRules))
	for _, rule := range budgetRules {
		snap, err := s.budgets.buildSnapshot(ctx, rule, month, true, txs)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	settlement := &models.Settlement{
		HouseholdID: householdID,
		MonthKey:    month,
		FromUserID:  from,
		ToUserID:    to,
		Amount:      amount,
		Message:     result.SettlementMessage,
	}
	if err := s.store.CreateSettlementWithSnapshots(ctx, settlement, snaps); err != nil {
		return nil, err
	}

	metrics.SettlementsCreated.Inc()
	slog.Info("month settled",
		"household_id", householdID,
		"month", month,
		"from", from,
		"to", to,
		"amount", amount,
		"finalized_snapshots", len(snaps),
	)
	return settlement, nil
}

// RemoveSettlement reopens a settled month. The settlement row is deleted
// and the month's snapshots lose their finalized flag; their numeric fields
// stay as last computed.
//
// Fails with models.ErrNotSettled when the month is not locked.
func (s *SettlementService) RemoveSettlement(ctx context.Context, householdID string, month models.MonthKey) error {
	if _, err := s.store.GetSettlement(ctx, householdID, month); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("unsettle %s: %w", month, models.ErrNotSettled)
		}
		return fmt.Errorf("check settlement: %w", err)
	}

	budgetRules, err := s.store.ListActiveBudgetRules(ctx, householdID)
	if err != nil {
		return fmt.Errorf("list budget rules: %w", err)
	}
	ruleIDs := make([]string, len(budgetRules))
	for i, rule := range budgetRules {
		ruleIDs[i] = rule.ID
	}

	if err := s.store.RemoveSettlementWithUnfinalize(ctx, householdID, month, ruleIDs); err != nil {
		return err
	}

	metrics.SettlementsRemoved.Inc()
	slog.Info("month unsettled", "household_id", householdID, "month", month)
	return nil
}

// settlementParties derives (from, to, amount) from the balance signs: the
// member with the positive balance is owed. When the month is even within
// the settled threshold, members are taken in list order with a zero amount
// (an arbitrary tie-break; the pairing carries no meaning).
func settlementParties(result calculator.Result, members []models.Member) (from, to string, amount decimal.Decimal) {
	first, second := members[0], members[1]
	balance := result.Balances[first.ID]
	switch {
	case balance.GreaterThan(settledEpsilon):
		return second.ID, first.ID, balance.Abs()
	case balance.LessThan(settledEpsilon.Neg()):
		return first.ID, second.ID, balance.Abs()
	default:
		return first.ID, second.ID, decimal.Zero
	}
}

var settledEpsilon = decimal.NewFromFloat(0.01)
