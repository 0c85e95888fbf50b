// Package models defines the core domain models for Homeledger.
//
// # Domain
//
// A household has exactly two members who share expenses. Each month the
// transactions of that household are reconciled into a settlement: who owes
// whom and how much, after applying per-category and per-expense-type split
// rules. In parallel, budget rules track a monthly allowance one member gives
// the other, with surplus/deficit carried over month to month and reset every
// January.
//
// # Models
//
//   - Member: one of the two people in a household
//   - Transaction: a single expense, already converted to the base currency
//   - SplitRule: overrides the 50/50 split for shared expenses of a given type
//   - BudgetRule: a monthly allowance from a giver to a receiver
//   - BudgetSnapshot: the computed budget status for one rule and month
//   - Settlement: the record that closes a month; its existence locks the month
//
// # Design Principles
//
//  1. Money is decimal everywhere (shopspring/decimal); amounts arrive with
//     two-decimal precision in the base currency and stay exact.
//  2. Models carry no behavior that needs storage; calculation lives in
//     internal/calculator and persistence in internal/storage.
//  3. Relationships use ID strings rather than pointers.
package models
