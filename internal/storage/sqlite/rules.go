package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anagh/homeledger/internal/models"
)

// AddSplitRule persists a split rule.
func (s *SQLiteStore) AddSplitRule(ctx context.Context, rule *models.SplitRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if rule.CreatedAt == 0 {
		rule.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO split_rules (id, household_id, member1_percent, member2_percent, is_default, expense_type_ids, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.HouseholdID, rule.Member1Percent.String(), rule.Member2Percent.String(),
		rule.IsDefault, joinIDs(rule.ExpenseTypeIDs), rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split rule: %w", err)
	}
	return nil
}

// ListSplitRules returns a household's split rules with expense-type-
// specific rules before the default, matching resolver precedence.
func (s *SQLiteStore) ListSplitRules(ctx context.Context, householdID string) ([]models.SplitRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, household_id, member1_percent, member2_percent, is_default, expense_type_ids, created_at
		 FROM split_rules WHERE household_id = ?
		 ORDER BY is_default, created_at`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list split rules: %w", err)
	}
	defer rows.Close()

	var rules []models.SplitRule
	for rows.Next() {
		var r models.SplitRule
		var ids string
		if err := rows.Scan(&r.ID, &r.HouseholdID, &r.Member1Percent, &r.Member2Percent,
			&r.IsDefault, &ids, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan split rule: %w", err)
		}
		r.ExpenseTypeIDs = splitIDs(ids)
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate split rules: %w", err)
	}
	return rules, nil
}

// AddBudgetRule persists a budget rule. Giver and receiver must differ.
func (s *SQLiteStore) AddBudgetRule(ctx context.Context, rule *models.BudgetRule) error {
	if rule.GiverUserID == rule.ReceiverUserID {
		return fmt.Errorf("budget rule giver and receiver must differ")
	}
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if rule.CreatedAt == 0 {
		rule.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budget_rules (id, household_id, giver_user_id, receiver_user_id, monthly_amount, expense_type_ids, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.HouseholdID, rule.GiverUserID, rule.ReceiverUserID,
		rule.MonthlyAmount.String(), joinIDs(rule.ExpenseTypeIDs), rule.IsActive, rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget rule: %w", err)
	}
	return nil
}

// GetBudgetRule retrieves one budget rule by ID.
func (s *SQLiteStore) GetBudgetRule(ctx context.Context, ruleID string) (*models.BudgetRule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, household_id, giver_user_id, receiver_user_id, monthly_amount, expense_type_ids, is_active, created_at
		 FROM budget_rules WHERE id = ?`,
		ruleID,
	)
	rule, err := scanBudgetRule(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("budget rule %s: %w", ruleID, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// ListActiveBudgetRules returns a household's active budget rules.
func (s *SQLiteStore) ListActiveBudgetRules(ctx context.Context, householdID string) ([]models.BudgetRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, household_id, giver_user_id, receiver_user_id, monthly_amount, expense_type_ids, is_active, created_at
		 FROM budget_rules WHERE household_id = ? AND is_active = 1
		 ORDER BY created_at`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget rules: %w", err)
	}
	defer rows.Close()

	var rules []models.BudgetRule
	for rows.Next() {
		rule, err := scanBudgetRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budget rules: %w", err)
	}
	return rules, nil
}

func scanBudgetRule(row rowScanner) (*models.BudgetRule, error) {
	var r models.BudgetRule
	var ids string
	err := row.Scan(&r.ID, &r.HouseholdID, &r.GiverUserID, &r.ReceiverUserID,
		&r.MonthlyAmount, &ids, &r.IsActive, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan budget rule: %w", err)
	}
	r.ExpenseTypeIDs = splitIDs(ids)
	return &r, nil
}
