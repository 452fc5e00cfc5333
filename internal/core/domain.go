package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	// Frequency is the repetition period of a recurring expense. Values
	// outside the known set are kept as-is; they never advance.
	Frequency string

	// RecurringExpense is the template of a periodically repeating expense.
	// NextDate is the next occurrence that has not been materialized yet.
	RecurringExpense struct {
		ID        string
		UserID    string
		Title     string
		Amount    decimal.Decimal
		Category  string
		Frequency Frequency
		NextDate  Date
		Note      string // empty when NULL in storage
	}

	// Expense is one concrete, dated ledger entry.
	Expense struct {
		ID       string
		UserID   string
		Title    string
		Amount   decimal.Decimal
		Date     Date
		Category string
		Note     string
	}
)

var (
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyCategory = errors.New("empty category")
	ErrMissingDate   = errors.New("missing date")
)

// Known reports whether f is one of the supported frequencies.
func (f Frequency) Known() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// DefaultNote is the note given to materialized expenses whose template has none.
func DefaultNote(f Frequency) string {
	return fmt.Sprintf("Recurring %s bill", f)
}

// Materialize builds the expense for the occurrence currently due. The expense
// is dated on the scheduled occurrence, not on the day the job runs.
func (re RecurringExpense) Materialize(id string) Expense {
	note := re.Note
	if note == "" {
		note = DefaultNote(re.Frequency)
	}
	return Expense{
		ID:       id,
		UserID:   re.UserID,
		Title:    re.Title,
		Amount:   re.Amount,
		Date:     re.NextDate,
		Category: re.Category,
		Note:     note,
	}
}

// IsDue reports whether the next occurrence falls on or before today.
func (re RecurringExpense) IsDue(today Date) bool {
	return !re.NextDate.After(today)
}

// Validate checks what the ledger columns require. The amount sign is not
// checked.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if e.Date.IsEmpty() {
		return ErrMissingDate
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
