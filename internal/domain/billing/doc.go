// Package billing provides domain models for recurring balance debits.
//
// This package implements the prepaid billing bounded context, which is
// responsible for:
//   - Deciding whether a customer's balance covers its hourly debit
//   - Recording every debit attempt as an immutable log entry
//   - Exposing the repository contracts the debit run depends on
//
// Key Aggregates:
//   - Customer: A billed account with a balance and an hourly debit amount
//   - DebitLogEntry: Immutable record of a single debit attempt
//
// The decision engine (Decide) is a pure function over customer state; all
// persistence goes through the repository interfaces so the application
// layer controls transaction boundaries.
package billing
