package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anagh/homeledger/internal/models"
)

const txDateLayout = "2006-01-02"

// AddTransaction persists a transaction. The month key is derived from the
// transaction date.
func (s *SQLiteStore) AddTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt == 0 {
		tx.CreatedAt = time.Now().Unix()
	}
	tx.MonthKey = models.MonthKeyFor(tx.Date)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, household_id, date, merchant, amount, paid_by_user_id, category, expense_type_id, month_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.HouseholdID, tx.Date.Format(txDateLayout), tx.Merchant, tx.Amount.String(),
		tx.PaidByUserID, string(tx.Category), tx.ExpenseTypeID, string(tx.MonthKey), tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// TransactionsForMonth returns a household's transactions for one month,
// ordered by date then creation time.
func (s *SQLiteStore) TransactionsForMonth(ctx context.Context, householdID string, month models.MonthKey) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, household_id, date, merchant, amount, paid_by_user_id, category, expense_type_id, month_key, created_at
		 FROM transactions WHERE household_id = ? AND month_key = ?
		 ORDER BY date, created_at, id`,
		householdID, string(month),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var tx models.Transaction
	var date, category, monthKey string
	if err := row.Scan(&tx.ID, &tx.HouseholdID, &date, &tx.Merchant, &tx.Amount,
		&tx.PaidByUserID, &category, &tx.ExpenseTypeID, &monthKey, &tx.CreatedAt); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}
	parsed, err := time.Parse(txDateLayout, date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to parse transaction date %q: %w", date, err)
	}
	tx.Date = parsed
	tx.Category = models.Category(category)
	tx.MonthKey = models.MonthKey(monthKey)
	return tx, nil
}
