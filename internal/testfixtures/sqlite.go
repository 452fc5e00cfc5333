// Package testfixtures provides shared helpers for integration-style tests:
// a migrated temporary database, seed data and a controllable clock.
package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"recurring/internal/core"
	"recurring/internal/storage"
)

// NewSQLiteRepository returns a migrated repository backed by a temporary
// file. It is closed automatically when the test finishes.
func NewSQLiteRepository(tb testing.TB) *storage.Repository {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "recurring.db")
	repo, err := storage.NewSQLiteRepository(context.Background(), path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	tb.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

// SeedRecurringExpense inserts rule as-is. An empty Note is stored as
// NULL, matching rows created without a note.
func SeedRecurringExpense(tb testing.TB, repo *storage.Repository, rule core.RecurringExpense) {
	tb.Helper()

	query := `INSERT INTO recurring_expenses (id, user_id, title, amount, category, frequency, start_date, next_date, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if repo.Dialect() == storage.Postgres {
		query = `INSERT INTO recurring_expenses (id, user_id, title, amount, category, frequency, start_date, next_date, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	}

	var note any
	if rule.Note != "" {
		note = rule.Note
	}

	_, err := repo.DB().ExecContext(context.Background(), query,
		rule.ID, rule.UserID, rule.Title, rule.Amount.String(), rule.Category,
		string(rule.Frequency), rule.NextDate.String(), rule.NextDate.String(), note)
	if err != nil {
		tb.Fatalf("failed to seed recurring expense %s: %v", rule.ID, err)
	}
}

// MustGetRecurringExpense loads a rule or fails the test.
func MustGetRecurringExpense(tb testing.TB, repo *storage.Repository, id string) core.RecurringExpense {
	tb.Helper()

	re, err := repo.GetRecurringExpense(context.Background(), id)
	if err != nil {
		tb.Fatalf("failed to load recurring expense %s: %v", id, err)
	}
	return re
}

// MustListExpenses returns the ledger or fails the test.
func MustListExpenses(tb testing.TB, repo *storage.Repository) []core.Expense {
	tb.Helper()

	expenses, err := repo.ListExpenses(context.Background())
	if err != nil {
		tb.Fatalf("failed to list expenses: %v", err)
	}
	return expenses
}
