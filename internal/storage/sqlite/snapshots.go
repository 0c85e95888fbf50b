package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anagh/homeledger/internal/models"
)

const upsertSnapshotSQL = `
INSERT INTO budget_snapshots (id, budget_rule_id, month_key, budget_amount, spent_amount, giver_reimbursement, carryover_from_previous, net_balance, is_finalized, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (budget_rule_id, month_key) DO UPDATE SET
    budget_amount = excluded.budget_amount,
    spent_amount = excluded.spent_amount,
    giver_reimbursement = excluded.giver_reimbursement,
    carryover_from_previous = excluded.carryover_from_previous,
    net_balance = excluded.net_balance,
    is_finalized = budget_snapshots.is_finalized OR excluded.is_finalized,
    updated_at = excluded.updated_at`

// UpsertSnapshot writes the snapshot for its (rule, month) key. A snapshot
// that is already finalized stays finalized regardless of snap.IsFinalized;
// only RemoveSettlementWithUnfinalize clears the flag.
func (s *SQLiteStore) UpsertSnapshot(ctx context.Context, snap *models.BudgetSnapshot) error {
	prepareSnapshot(snap)
	if _, err := s.db.ExecContext(ctx, upsertSnapshotSQL, snapshotArgs(snap)...); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func prepareSnapshot(snap *models.BudgetSnapshot) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	snap.UpdatedAt = time.Now().Unix()
}

func snapshotArgs(snap *models.BudgetSnapshot) []any {
	return []any{
		snap.ID, snap.BudgetRuleID, string(snap.MonthKey),
		snap.BudgetAmount.String(), snap.SpentAmount.String(),
		snap.GiverReimbursement.String(), snap.CarryoverFromPrevious.String(),
		snap.NetBalance.String(), snap.IsFinalized, snap.UpdatedAt,
	}
}

// GetSnapshot retrieves the snapshot for a rule and month.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, budgetRuleID string, month models.MonthKey) (*models.BudgetSnapshot, error) {
	return s.getSnapshot(ctx, budgetRuleID, month, false)
}

// FinalizedSnapshot retrieves the snapshot for a rule and month only if it
// is finalized. This is the authoritative carryover source.
func (s *SQLiteStore) FinalizedSnapshot(ctx context.Context, budgetRuleID string, month models.MonthKey) (*models.BudgetSnapshot, error) {
	return s.getSnapshot(ctx, budgetRuleID, month, true)
}

func (s *SQLiteStore) getSnapshot(ctx context.Context, budgetRuleID string, month models.MonthKey, finalizedOnly bool) (*models.BudgetSnapshot, error) {
	query := `SELECT id, budget_rule_id, month_key, budget_amount, spent_amount, giver_reimbursement, carryover_from_previous, net_balance, is_finalized, updated_at
	 FROM budget_snapshots WHERE budget_rule_id = ? AND month_key = ?`
	if finalizedOnly {
		query += " AND is_finalized = 1"
	}

	snap := &models.BudgetSnapshot{}
	var monthKey string
	err := s.db.QueryRowContext(ctx, query, budgetRuleID, string(month)).Scan(
		&snap.ID, &snap.BudgetRuleID, &monthKey,
		&snap.BudgetAmount, &snap.SpentAmount, &snap.GiverReimbursement,
		&snap.CarryoverFromPrevious, &snap.NetBalance, &snap.IsFinalized, &snap.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot %s/%s: %w", budgetRuleID, month, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	snap.MonthKey = models.MonthKey(monthKey)
	return snap, nil
}
