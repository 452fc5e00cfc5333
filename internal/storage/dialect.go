package storage

import (
	"fmt"
	"regexp"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a configuration value to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case Postgres, SQLite:
		return Dialect(s), nil
	}
	return "", fmt.Errorf("unsupported database driver %q", s)
}

// Statements are written once with postgres placeholders and rebound for
// sqlite. Every $n appears exactly once and in ascending order.
const (
	recurringColumns = `id, user_id, title, amount, category, frequency, next_date, note`

	sqlSelectDue = `SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE next_date <= $1
		ORDER BY next_date, id`

	sqlSelectDueForUser = `SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE next_date <= $1 AND user_id = $2
		ORDER BY next_date, id`

	sqlSelectRecurring = `SELECT ` + recurringColumns + `
		FROM recurring_expenses
		WHERE id = $1`

	sqlInsertExpense = `INSERT INTO expenses (id, user_id, title, amount, date, category, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	sqlUpdateNextDate = `UPDATE recurring_expenses SET next_date = $1 WHERE id = $2`

	sqlUpsertAutomationRun = `INSERT INTO user_settings (user_id, last_automation_run)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET last_automation_run = excluded.last_automation_run`

	sqlSelectAutomationRun = `SELECT last_automation_run FROM user_settings WHERE user_id = $1`

	sqlListExpenses = `SELECT id, user_id, title, amount, date, category, note
		FROM expenses
		ORDER BY date, title, id`

	sqlCountExpenses = `SELECT COUNT(*) FROM expenses`
)

var placeholderRe = regexp.MustCompile(`\$\d+`)

type queries struct {
	selectDue           string
	selectDueForUser    string
	selectRecurring     string
	insertExpense       string
	updateNextDate      string
	upsertAutomationRun string
	selectAutomationRun string
	listExpenses        string
	countExpenses       string
}

func queriesFor(d Dialect) queries {
	bind := func(q string) string { return q }
	if d == SQLite {
		bind = func(q string) string { return placeholderRe.ReplaceAllString(q, "?") }
	}
	return queries{
		selectDue:           bind(sqlSelectDue),
		selectDueForUser:    bind(sqlSelectDueForUser),
		selectRecurring:     bind(sqlSelectRecurring),
		insertExpense:       bind(sqlInsertExpense),
		updateNextDate:      bind(sqlUpdateNextDate),
		upsertAutomationRun: bind(sqlUpsertAutomationRun),
		selectAutomationRun: bind(sqlSelectAutomationRun),
		listExpenses:        bind(sqlListExpenses),
		countExpenses:       bind(sqlCountExpenses),
	}
}
