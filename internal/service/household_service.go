// Package service orchestrates the calculation core against storage:
// household reads/writes, budget status with snapshot upserts, and the
// settlement lifecycle that locks and unlocks months.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anagh/homeledger/internal/calculator"
	"github.com/anagh/homeledger/internal/metrics"
	"github.com/anagh/homeledger/internal/models"
	"github.com/anagh/homeledger/internal/storage"
)

// HouseholdService handles members, transactions and reconciliation reads.
type HouseholdService struct {
	store storage.Store
}

// NewHouseholdService creates a HouseholdService with the given storage
// backend.
func NewHouseholdService(store storage.Store) *HouseholdService {
	return &HouseholdService{store: store}
}

// AddMember registers a household member. At most two members may exist and
// the first must be the owner.
func (s *HouseholdService) AddMember(ctx context.Context, member *models.Member) error {
	existing, err := s.store.ListMembers(ctx, member.HouseholdID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	if len(existing) >= 2 {
		return fmt.Errorf("household %s: %w", member.HouseholdID, models.ErrUnsupportedHouseholdSize)
	}
	if err := s.store.AddMember(ctx, member); err != nil {
		return err
	}
	slog.Info("member added", "household_id", member.HouseholdID, "member_id", member.ID, "role", member.Role)
	return nil
}

// Members returns the household's members, owner first.
func (s *HouseholdService) Members(ctx context.Context, householdID string) ([]models.Member, error) {
	return s.store.ListMembers(ctx, householdID)
}

// AddTransaction records an expense. A settled month is read-only: the
// settlement's existence locks it until the month is explicitly unsettled.
func (s *HouseholdService) AddTransaction(ctx context.Context, tx *models.Transaction) error {
	if !tx.Category.Valid() {
		return fmt.Errorf("unknown category %q", tx.Category)
	}

	month := models.MonthKeyFor(tx.Date)
	_, err := s.store.GetSettlement(ctx, tx.HouseholdID, month)
	if err == nil {
		return fmt.Errorf("transaction for %s: %w", month, models.ErrAlreadySettled)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("check settlement: %w", err)
	}

	if err := s.store.AddTransaction(ctx, tx); err != nil {
		return err
	}
	slog.Debug("transaction added",
		"household_id", tx.HouseholdID,
		"transaction_id", tx.ID,
		"month", tx.MonthKey,
		"amount", tx.Amount,
		"category", tx.Category,
	)
	return nil
}

// Transactions returns the household's transactions for one month.
func (s *HouseholdService) Transactions(ctx context.Context, householdID string, month models.MonthKey) ([]models.Transaction, error) {
	return s.store.TransactionsForMonth(ctx, householdID, month)
}

// AddSplitRule registers a split rule. The percents must sum to 100 and a
// household may have at most one default rule.
func (s *HouseholdService) AddSplitRule(ctx context.Context, rule *models.SplitRule) error {
	if !rule.Member1Percent.Add(rule.Member2Percent).Equal(hundredPercent) {
		return fmt.Errorf("split rule percents must sum to 100, got %s + %s",
			rule.Member1Percent, rule.Member2Percent)
	}
	if rule.IsDefault {
		existing, err := s.store.ListSplitRules(ctx, rule.HouseholdID)
		if err != nil {
			return fmt.Errorf("list split rules: %w", err)
		}
		for _, r := range existing {
			if r.IsDefault {
				return fmt.Errorf("household %s already has a default split rule", rule.HouseholdID)
			}
		}
	}
	return s.store.AddSplitRule(ctx, rule)
}

// Reconcile computes the reconciliation report for a household month.
func (s *HouseholdService) Reconcile(ctx context.Context, householdID string, month models.MonthKey) (calculator.Result, error) {
	members, err := s.store.ListMembers(ctx, householdID)
	if err != nil {
		return calculator.Result{}, fmt.Errorf("list members: %w", err)
	}
	txs, err := s.store.TransactionsForMonth(ctx, householdID, month)
	if err != nil {
		return calculator.Result{}, fmt.Errorf("list transactions: %w", err)
	}
	rules, err := s.store.ListSplitRules(ctx, householdID)
	if err != nil {
		return calculator.Result{}, fmt.Errorf("list split rules: %w", err)
	}

	metrics.ReconciliationsComputed.Inc()
	return calculator.Reconcile(txs, members, rules), nil
}
