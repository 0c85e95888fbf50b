package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// The unique index on settlements(household_id, month_key) is the
// concurrency guard for the settlement lifecycle: two concurrent settle
// attempts for the same month cannot both commit.
const schema = `
CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    household_id TEXT NOT NULL,
    display_name TEXT NOT NULL,
    role TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    household_id TEXT NOT NULL,
    date TEXT NOT NULL,
    merchant TEXT NOT NULL,
    amount TEXT NOT NULL,
    paid_by_user_id TEXT NOT NULL,
    category TEXT NOT NULL,
    expense_type_id TEXT NOT NULL DEFAULT '',
    month_key TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS split_rules (
    id TEXT PRIMARY KEY,
    household_id TEXT NOT NULL,
    member1_percent TEXT NOT NULL,
    member2_percent TEXT NOT NULL,
    is_default INTEGER NOT NULL DEFAULT 0,
    expense_type_ids TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS budget_rules (
    id TEXT PRIMARY KEY,
    household_id TEXT NOT NULL,
    giver_user_id TEXT NOT NULL,
    receiver_user_id TEXT NOT NULL,
    monthly_amount TEXT NOT NULL,
    expense_type_ids TEXT NOT NULL DEFAULT '',
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS budget_snapshots (
    id TEXT PRIMARY KEY,
    budget_rule_id TEXT NOT NULL,
    month_key TEXT NOT NULL,
    budget_amount TEXT NOT NULL,
    spent_amount TEXT NOT NULL,
    giver_reimbursement TEXT NOT NULL,
    carryover_from_previous TEXT NOT NULL,
    net_balance TEXT NOT NULL,
    is_finalized INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL,
    UNIQUE (budget_rule_id, month_key),
    FOREIGN KEY (budget_rule_id) REFERENCES budget_rules(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    household_id TEXT NOT NULL,
    month_key TEXT NOT NULL,
    from_user_id TEXT NOT NULL,
    to_user_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    message TEXT NOT NULL,
    settled_at INTEGER NOT NULL,
    UNIQUE (household_id, month_key)
);

CREATE INDEX IF NOT EXISTS idx_members_household ON members(household_id);
CREATE INDEX IF NOT EXISTS idx_transactions_household_month ON transactions(household_id, month_key);
CREATE INDEX IF NOT EXISTS idx_split_rules_household ON split_rules(household_id);
CREATE INDEX IF NOT EXISTS idx_budget_rules_household ON budget_rules(household_id);
CREATE INDEX IF NOT EXISTS idx_budget_snapshots_rule_month ON budget_snapshots(budget_rule_id, month_key);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
