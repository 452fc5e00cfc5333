package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recurring/internal/amqp"
	"recurring/internal/core"
	"recurring/internal/log"
	"recurring/internal/storage"
)

// ErrNotInitialized is returned when the processor has no store.
var ErrNotInitialized = errors.New("processor not properly initialized")

// RecurringStore is the storage the processor reads due rules from and
// writes the ledger to.
type RecurringStore interface {
	DueRecurringExpenses(ctx context.Context, filter storage.DueFilter) ([]core.RecurringExpense, error)
	LastAutomationRun(ctx context.Context, userID string) (core.Date, error)
	InTx(ctx context.Context, fn func(storage.Writer) error) error
}

// Publisher is told about every committed run.
type Publisher interface {
	PublishRunCompleted(ctx context.Context, msg *amqp.RunCompletedMessage) error
}

// RunResult summarizes one call to ProcessDueExpenses.
type RunResult struct {
	RunDate    core.Date
	UserID     string
	Skipped    bool // user-scoped run already happened today
	Processed  int
	ExpenseIDs []string
}

// RecurringProcessor materializes due recurring expenses into the ledger
type RecurringProcessor struct {
	store     RecurringStore
	publisher Publisher
	userID    string
	newID     func() string
}

// NewRecurringProcessor creates a processor. An empty userID processes every
// user; otherwise only that user's rules are processed, at most once per day.
// publisher may be nil.
func NewRecurringProcessor(store RecurringStore, publisher Publisher, userID string) *RecurringProcessor {
	return &RecurringProcessor{
		store:     store,
		publisher: publisher,
		userID:    userID,
		newID:     uuid.NewString,
	}
}

// ProcessDueExpenses materializes every rule due on or before today. All
// inserts and date updates commit together or not at all. Each rule fires at
// most once per call, even if it is still due after advancing.
func (p *RecurringProcessor) ProcessDueExpenses(ctx context.Context, today core.Date) (RunResult, error) {
	result := RunResult{RunDate: today, UserID: p.userID}
	if p.store == nil {
		return result, ErrNotInitialized
	}

	logger := log.FromContext(ctx).WithComponent(log.ComponentRecurring).
		With(log.NewFields().WithRun(today.String(), p.userID).ToSlice()...)
	start := time.Now()

	if p.userID != "" {
		last, err := p.store.LastAutomationRun(ctx, p.userID)
		if err != nil {
			return result, fmt.Errorf("check last automation run: %w", err)
		}
		if last.Equal(today) {
			logger.InfoContext(ctx, "Automation already ran today, skipping")
			result.Skipped = true
			return result, nil
		}
	}

	due, err := p.store.DueRecurringExpenses(ctx, storage.DueFilter{Today: today, UserID: p.userID})
	if err != nil {
		return result, fmt.Errorf("select due recurring expenses: %w", err)
	}

	logger.InfoContext(ctx, "Processing recurring expenses",
		log.FieldOperation, log.OpSelectDue,
		log.FieldDue, len(due))

	if len(due) == 0 {
		logger.InfoContext(ctx, "No recurring expenses due")
		return result, nil
	}

	var ids []string
	err = p.store.InTx(ctx, func(w storage.Writer) error {
		ids = ids[:0]
		for _, rule := range due {
			id, err := p.materialize(ctx, logger, w, rule, today)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		if p.userID != "" {
			if err := w.MarkAutomationRun(ctx, p.userID, today); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "Recurring expense run rolled back", log.FieldError, err)
		return result, fmt.Errorf("process recurring expenses: %w", err)
	}

	result.Processed = len(ids)
	result.ExpenseIDs = ids

	logger.InfoContext(ctx, "Recurring expense processing complete",
		log.FieldProcessed, result.Processed,
		log.FieldDuration, time.Since(start).Milliseconds())

	p.publish(ctx, logger, result)
	return result, nil
}

// materialize writes the expense for rule's current occurrence and moves the
// rule to its next one.
func (p *RecurringProcessor) materialize(ctx context.Context, logger *log.Logger, w storage.Writer, rule core.RecurringExpense, today core.Date) (string, error) {
	next, err := Advance(rule.NextDate, rule.Frequency)
	if err != nil {
		return "", fmt.Errorf("recurring expense %s: %w", rule.ID, err)
	}

	expense := rule.Materialize(p.newID())
	if err := expense.Validate(); err != nil {
		return "", fmt.Errorf("recurring expense %s: %w", rule.ID, err)
	}

	if err := w.InsertExpense(ctx, expense); err != nil {
		return "", err
	}

	fields := log.NewFields().WithRecurring(rule.ID, rule.Title, core.FormatAmount(rule.Amount),
		string(rule.Frequency), next.String())
	fields[log.FieldExpenseID] = expense.ID

	if next.Equal(rule.NextDate) {
		// no advancer for this frequency; the rule fires again on every run
		logger.WarnContext(ctx, "No advancer for frequency, next date left unchanged",
			fields.WithOperation(log.OpAdvance).ToSlice()...)
		return expense.ID, nil
	}

	if err := w.UpdateNextDate(ctx, rule.ID, next); err != nil {
		return "", err
	}

	advanced := rule
	advanced.NextDate = next
	if advanced.IsDue(today) {
		logger.WarnContext(ctx, "Recurring expense still due after advancing, next run will catch up",
			fields.WithOperation(log.OpAdvance).ToSlice()...)
	} else {
		logger.InfoContext(ctx, "Created expense from recurring template",
			fields.WithOperation(log.OpMaterialize).ToSlice()...)
	}

	return expense.ID, nil
}

// publish notifies the observer. The run is already committed, so a failure
// here is only logged.
func (p *RecurringProcessor) publish(ctx context.Context, logger *log.Logger, result RunResult) {
	if p.publisher == nil {
		return
	}

	msg := amqp.NewRunCompletedMessage(result.RunDate.String(), result.UserID, result.ExpenseIDs)
	if err := p.publisher.PublishRunCompleted(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to publish run completed message",
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
	}
}
