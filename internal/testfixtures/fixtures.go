package testfixtures

import (
	"github.com/shopspring/decimal"

	"recurring/internal/core"
)

// ReferenceDate anchors scenarios that do not care about a specific day.
func ReferenceDate() core.Date {
	return core.NewDate(2024, 3, 5)
}

// RecurringExpense returns a valid weekly rule due on ReferenceDate. Callers
// override the fields they care about.
func RecurringExpense(id string) core.RecurringExpense {
	return core.RecurringExpense{
		ID:        id,
		UserID:    "user-1",
		Title:     "Streaming " + id,
		Amount:    decimal.RequireFromString("12.99"),
		Category:  "Subscriptions",
		Frequency: core.Weekly,
		NextDate:  ReferenceDate(),
	}
}
