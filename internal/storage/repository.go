package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"recurring/internal/core"
)

var ErrNotFound = errors.New("not found")

// Options selects and configures the backing database.
type Options struct {
	Dialect    Dialect
	URL        string // postgres connection string
	SSLMode    string // postgres sslmode applied when URL has none
	SQLitePath string
}

// Repository reads recurring expenses and writes the ledger.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	queries queries
}

// DueFilter narrows the due-item selection. An empty UserID selects every user.
type DueFilter struct {
	Today  core.Date
	UserID string
}

// Writer is the set of writes available inside a run transaction.
type Writer interface {
	InsertExpense(ctx context.Context, e core.Expense) error
	UpdateNextDate(ctx context.Context, id string, next core.Date) error
	MarkAutomationRun(ctx context.Context, userID string, day core.Date) error
}

// Open connects to the configured backend and applies migrations.
func Open(ctx context.Context, opts Options) (*Repository, error) {
	switch opts.Dialect {
	case Postgres:
		return NewPostgresRepository(ctx, opts.URL, opts.SSLMode)
	case SQLite:
		return NewSQLiteRepository(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported dialect: %q", opts.Dialect)
	}
}

func newRepository(ctx context.Context, d Dialect, open func() (*sql.DB, error)) (*Repository, error) {
	db, err := open()
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if d == SQLite {
		// one writer at a time; avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}

	// Migrations get their own handle: the migrator closes it when done.
	migrateDB, err := open()
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := RunMigrations(migrateDB, d); err != nil {
		db.Close()
		return nil, err
	}

	return &Repository{
		db:      db,
		dialect: d,
		queries: queriesFor(d),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Dialect reports the backend in use.
func (r *Repository) Dialect() Dialect {
	return r.dialect
}

// DB exposes the underlying handle for fixtures and maintenance commands.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// DueRecurringExpenses returns every recurring expense whose next occurrence
// is on or before filter.Today. It never writes.
func (r *Repository) DueRecurringExpenses(ctx context.Context, filter DueFilter) ([]core.RecurringExpense, error) {
	query, args := r.queries.selectDue, []any{filter.Today.String()}
	if filter.UserID != "" {
		query, args = r.queries.selectDueForUser, []any{filter.Today.String(), filter.UserID}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query due recurring expenses: %w", err)
	}
	defer rows.Close()

	var due []core.RecurringExpense
	for rows.Next() {
		re, err := scanRecurringExpense(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, re)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due recurring expenses: %w", err)
	}

	return due, nil
}

// GetRecurringExpense retrieves a single recurring expense by ID
func (r *Repository) GetRecurringExpense(ctx context.Context, id string) (core.RecurringExpense, error) {
	re, err := scanRecurringExpense(r.db.QueryRowContext(ctx, r.queries.selectRecurring, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringExpense{}, fmt.Errorf("recurring expense %s: %w", id, ErrNotFound)
	}
	return re, err
}

// ListExpenses returns the whole ledger ordered by date.
func (r *Repository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, r.queries.listExpenses)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e      core.Expense
			userID sql.NullString
			note   sql.NullString
		)
		if err := rows.Scan(&e.ID, &userID, &e.Title, &e.Amount, &e.Date, &e.Category, &note); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.UserID = userID.String
		e.Note = note.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// CountExpenses returns the number of rows in the ledger.
func (r *Repository) CountExpenses(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, r.queries.countExpenses).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

// LastAutomationRun returns the day automation last ran for userID, or the
// zero Date when it never did.
func (r *Repository) LastAutomationRun(ctx context.Context, userID string) (core.Date, error) {
	var last core.Date
	err := r.db.QueryRowContext(ctx, r.queries.selectAutomationRun, userID).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Date{}, nil
	}
	if err != nil {
		return core.Date{}, fmt.Errorf("get last automation run: %w", err)
	}
	return last, nil
}

// InTx runs fn inside one transaction. The transaction commits only when fn
// returns nil; any error or panic rolls back every write fn made.
func (r *Repository) InTx(ctx context.Context, fn func(Writer) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{tx: tx, queries: r.queries}); err != nil {
		// a cancelled context has already rolled the transaction back
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Tx implements Writer on an open transaction.
type Tx struct {
	tx      *sql.Tx
	queries queries
}

// InsertExpense appends one expense to the ledger.
func (t *Tx) InsertExpense(ctx context.Context, e core.Expense) error {
	_, err := t.tx.ExecContext(ctx, t.queries.insertExpense,
		e.ID, e.UserID, e.Title, e.Amount.String(), e.Date.String(), e.Category, e.Note)
	if err != nil {
		return fmt.Errorf("insert expense %q: %w", e.Title, err)
	}

	slog.DebugContext(ctx, "Expense inserted",
		"id", e.ID,
		"title", e.Title,
		"amount", core.FormatAmount(e.Amount),
		"date", e.Date.String())

	return nil
}

// UpdateNextDate moves a recurring expense to its next occurrence.
func (t *Tx) UpdateNextDate(ctx context.Context, id string, next core.Date) error {
	res, err := t.tx.ExecContext(ctx, t.queries.updateNextDate, next.String(), id)
	if err != nil {
		return fmt.Errorf("update next date of %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update next date of %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update next date of %s: %w", id, ErrNotFound)
	}

	slog.DebugContext(ctx, "Recurring expense advanced", "id", id, "next_date", next.String())
	return nil
}

// MarkAutomationRun records day as the user's last automation run.
func (t *Tx) MarkAutomationRun(ctx context.Context, userID string, day core.Date) error {
	if _, err := t.tx.ExecContext(ctx, t.queries.upsertAutomationRun, userID, day.String()); err != nil {
		return fmt.Errorf("mark automation run for %s: %w", userID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecurringExpense(row rowScanner) (core.RecurringExpense, error) {
	var (
		re        core.RecurringExpense
		frequency string
		note      sql.NullString
	)
	err := row.Scan(&re.ID, &re.UserID, &re.Title, &re.Amount, &re.Category, &frequency, &re.NextDate, &note)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringExpense{}, err
	}
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("scan recurring expense: %w", err)
	}
	re.Frequency = core.Frequency(frequency)
	re.Note = note.String
	return re, nil
}
