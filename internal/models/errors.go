package models

import "errors"

// Typed failures surfaced by the core. Callers match with errors.Is; none
// of these are retried internally and no operation partially succeeds.
var (
	// ErrAlreadySettled: a settlement already exists for the month.
	ErrAlreadySettled = errors.New("month is already settled")

	// ErrNotSettled: unsettle requested for a month with no settlement.
	ErrNotSettled = errors.New("month is not settled")

	// ErrNoTransactions: the month has nothing to settle.
	ErrNoTransactions = errors.New("month has no transactions")

	// ErrUnsupportedHouseholdSize: settlement math requires exactly two
	// members.
	ErrUnsupportedHouseholdSize = errors.New("settlement requires exactly two household members")

	// ErrCarryoverDepthExceeded: the carryover chain walked too many
	// unfinalized months back. Settle months in order, or back-fill
	// snapshots, to keep lookups O(1).
	ErrCarryoverDepthExceeded = errors.New("carryover recursion depth exceeded")

	// ErrNotFound is returned by stores for missing records.
	ErrNotFound = errors.New("not found")
)
