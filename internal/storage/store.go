// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/anagh/homeledger/internal/models"
)

// Store defines the persistence operations the services need.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// Lookups return models.ErrNotFound for missing records. The two settlement
// mutations are transactional: either the settlement row and every snapshot
// change land together, or none do.
type Store interface {
	// AddMember persists a household member, populating ID and CreatedAt.
	AddMember(ctx context.Context, member *models.Member) error

	// ListMembers returns a household's members, owner first.
	ListMembers(ctx context.Context, householdID string) ([]models.Member, error)

	// AddTransaction persists a transaction, populating ID, MonthKey and
	// CreatedAt.
	AddTransaction(ctx context.Context, tx *models.Transaction) error

	// TransactionsForMonth returns a household's transactions for one
	// month, ordered by date.
	TransactionsForMonth(ctx context.Context, householdID string, month models.MonthKey) ([]models.Transaction, error)

	// AddSplitRule persists a split rule.
	AddSplitRule(ctx context.Context, rule *models.SplitRule) error

	// ListSplitRules returns a household's split rules, specific rules
	// before the default.
	ListSplitRules(ctx context.Context, householdID string) ([]models.SplitRule, error)

	// AddBudgetRule persists a budget rule.
	AddBudgetRule(ctx context.Context, rule *models.BudgetRule) error

	// GetBudgetRule retrieves one budget rule by ID.
	GetBudgetRule(ctx context.Context, ruleID string) (*models.BudgetRule, error)

	// ListActiveBudgetRules returns a household's active budget rules.
	ListActiveBudgetRules(ctx context.Context, householdID string) ([]models.BudgetRule, error)

	// UpsertSnapshot writes a snapshot's computed fields for its
	// (rule, month) key. The finalized flag is only ever raised here,
	// never cleared: clearing is the settlement lifecycle's job.
	UpsertSnapshot(ctx context.Context, snap *models.BudgetSnapshot) error

	// GetSnapshot retrieves the snapshot for a rule and month.
	GetSnapshot(ctx context.Context, budgetRuleID string, month models.MonthKey) (*models.BudgetSnapshot, error)

	// FinalizedSnapshot retrieves the snapshot for a rule and month only
	// if it is finalized.
	FinalizedSnapshot(ctx context.Context, budgetRuleID string, month models.MonthKey) (*models.BudgetSnapshot, error)

	// GetSettlement retrieves the settlement for a household month.
	GetSettlement(ctx context.Context, householdID string, month models.MonthKey) (*models.Settlement, error)

	// CreateSettlementWithSnapshots inserts the settlement row and
	// upserts the finalized snapshots in one transaction. A settlement
	// already present for the key (including one raced in by a
	// concurrent caller hitting the unique index) yields
	// models.ErrAlreadySettled.
	CreateSettlementWithSnapshots(ctx context.Context, settlement *models.Settlement, snaps []*models.BudgetSnapshot) error

	// RemoveSettlementWithUnfinalize deletes the settlement row and
	// clears the finalized flag on the month's snapshots for the given
	// rules, in one transaction. Snapshot numeric fields are left as
	// last computed. Yields models.ErrNotSettled when no settlement
	// exists.
	RemoveSettlementWithUnfinalize(ctx context.Context, householdID string, month models.MonthKey, budgetRuleIDs []string) error

	// Close releases any resources held by the store.
	Close() error
}
