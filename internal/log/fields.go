package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldRunDate     = "run_date"
	FieldUserID      = "user_id"
	FieldRecurringID = "recurring_id"
	FieldExpenseID   = "expense_id"
	FieldTitle       = "title"
	FieldAmount      = "amount"
	FieldFrequency   = "frequency"
	FieldNextDate    = "next_date"
	FieldDue         = "due"
	FieldProcessed   = "processed"
	FieldDuration    = "duration_ms"
	FieldDriver      = "driver"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentRecurring = "recurring"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentMigrate   = "migrate"
)

// Operations defines standard operation names
const (
	OpSelectDue   = "select_due"
	OpMaterialize = "materialize"
	OpAdvance     = "advance"
	OpPublish     = "publish"
	OpMigrate     = "migrate"
	OpStartup     = "startup"
	OpShutdown    = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRun adds the fields identifying one batch run. userID is omitted for
// all-user runs.
func (f LogFields) WithRun(runDate, userID string) LogFields {
	f[FieldRunDate] = runDate
	if userID != "" {
		f[FieldUserID] = userID
	}
	return f
}

// WithRecurring adds the fields of one recurring expense.
func (f LogFields) WithRecurring(id, title, amount, frequency, nextDate string) LogFields {
	f[FieldRecurringID] = id
	f[FieldTitle] = title
	f[FieldAmount] = amount
	f[FieldFrequency] = frequency
	f[FieldNextDate] = nextDate
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
