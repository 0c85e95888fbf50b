package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anagh/homeledger/internal/models"
)

// GetSettlement retrieves the settlement for a household month.
func (s *SQLiteStore) GetSettlement(ctx context.Context, householdID string, month models.MonthKey) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var monthKey string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, household_id, month_key, from_user_id, to_user_id, amount, message, settled_at
		 FROM settlements WHERE household_id = ? AND month_key = ?`,
		householdID, string(month),
	).Scan(&settlement.ID, &settlement.HouseholdID, &monthKey,
		&settlement.FromUserID, &settlement.ToUserID, &settlement.Amount,
		&settlement.Message, &settlement.SettledAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s/%s: %w", householdID, month, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	settlement.MonthKey = models.MonthKey(monthKey)
	return settlement, nil
}

// CreateSettlementWithSnapshots inserts the settlement row and upserts the
// finalized snapshots in one transaction. The unique index on
// (household_id, month_key) turns a concurrent duplicate into
// models.ErrAlreadySettled.
func (s *SQLiteStore) CreateSettlementWithSnapshots(ctx context.Context, settlement *models.Settlement, snaps []*models.BudgetSnapshot) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.SettledAt == 0 {
		settlement.SettledAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (id, household_id, month_key, from_user_id, to_user_id, amount, message, settled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.HouseholdID, string(settlement.MonthKey),
		settlement.FromUserID, settlement.ToUserID, settlement.Amount.String(),
		settlement.Message, settlement.SettledAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("settlement %s/%s: %w", settlement.HouseholdID, settlement.MonthKey, models.ErrAlreadySettled)
	}
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for _, snap := range snaps {
		prepareSnapshot(snap)
		if _, err := tx.ExecContext(ctx, upsertSnapshotSQL, snapshotArgs(snap)...); err != nil {
			return fmt.Errorf("failed to finalize snapshot for rule %s: %w", snap.BudgetRuleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement: %w", err)
	}
	return nil
}

// RemoveSettlementWithUnfinalize deletes the settlement row and clears the
// finalized flag on the month's snapshots for the given rules, in one
// transaction. Snapshot numeric fields are left untouched; they are
// recomputed on demand, not deleted.
func (s *SQLiteStore) RemoveSettlementWithUnfinalize(ctx context.Context, householdID string, month models.MonthKey, budgetRuleIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM settlements WHERE household_id = ? AND month_key = ?",
		householdID, string(month),
	)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("settlement %s/%s: %w", householdID, month, models.ErrNotSettled)
	}

	for _, ruleID := range budgetRuleIDs {
		_, err := tx.ExecContext(ctx,
			"UPDATE budget_snapshots SET is_finalized = 0, updated_at = ? WHERE budget_rule_id = ? AND month_key = ?",
			time.Now().Unix(), ruleID, string(month),
		)
		if err != nil {
			return fmt.Errorf("failed to unfinalize snapshot for rule %s: %w", ruleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit unsettle: %w", err)
	}
	return nil
}
