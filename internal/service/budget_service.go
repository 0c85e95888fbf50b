package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/anagh/homeledger/internal/calculator"
	"github.com/anagh/homeledger/internal/metrics"
	"github.com/anagh/homeledger/internal/models"
	"github.com/anagh/homeledger/internal/storage"
)

var hundredPercent = decimal.NewFromInt(100)

// BudgetService computes budget rule statuses and writes snapshots.
type BudgetService struct {
	store storage.Store
	calc  *calculator.BudgetCalculator
}

// NewBudgetService creates a BudgetService with the given storage backend.
func NewBudgetService(store storage.Store) *BudgetService {
	return &BudgetService{
		store: store,
		calc:  calculator.NewBudgetCalculator(store, store),
	}
}

// AddRule registers a budget rule.
func (s *BudgetService) AddRule(ctx context.Context, rule *models.BudgetRule) error {
	return s.store.AddBudgetRule(ctx, rule)
}

// Status computes the status of a budget rule for a month. Read-only; no
// snapshot is written.
func (s *BudgetService) Status(ctx context.Context, ruleID string, month models.MonthKey) (calculator.BudgetStatus, error) {
	rule, err := s.store.GetBudgetRule(ctx, ruleID)
	if err != nil {
		return calculator.BudgetStatus{}, err
	}
	st, err := s.calc.Status(ctx, *rule, month)
	if err != nil {
		return calculator.BudgetStatus{}, err
	}
	metrics.BudgetStatusesComputed.Inc()
	return st, nil
}

// SyncSnapshot computes the rule's status for the month and upserts the
// snapshot row. The finalized flag is raised only when finalize is true and
// is never lowered here; lowering happens only when a settlement is
// removed.
func (s *BudgetService) SyncSnapshot(ctx context.Context, rule models.BudgetRule, month models.MonthKey, finalize bool) (*models.BudgetSnapshot, error) {
	snap, err := s.buildSnapshot(ctx, rule, month, finalize, nil)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpsertSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// buildSnapshot computes the snapshot row for a rule and month without
// writing it. txs, when non-nil, is the month's full transaction set.
func (s *BudgetService) buildSnapshot(ctx context.Context, rule models.BudgetRule, month models.MonthKey, finalize bool, txs []models.Transaction) (*models.BudgetSnapshot, error) {
	var st calculator.BudgetStatus
	var err error
	if txs != nil {
		st, err = s.calc.StatusWithTransactions(ctx, rule, month, txs)
	} else {
		st, err = s.calc.Status(ctx, rule, month)
	}
	if err != nil {
		return nil, fmt.Errorf("budget status for rule %s: %w", rule.ID, err)
	}

	return &models.BudgetSnapshot{
		BudgetRuleID:          rule.ID,
		MonthKey:              month,
		BudgetAmount:          st.BudgetAmount,
		SpentAmount:           st.SpentAmount,
		GiverReimbursement:    st.GiverReimbursement,
		CarryoverFromPrevious: st.CarryoverFromPrevious,
		NetBalance:            st.NetBalance,
		IsFinalized:           finalize,
	}, nil
}
