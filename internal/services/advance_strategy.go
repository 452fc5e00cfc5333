// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for advancing a recurring expense
// to its next occurrence. Each frequency type (daily, weekly, monthly, yearly)
// has its own strategy that encapsulates the calendar arithmetic.

package services

import (
	"errors"
	"fmt"

	"recurring/internal/core"
)

// ErrNonexistentDate is returned when monthly or yearly advancement lands on
// a day the target month does not have (Jan 31 -> Feb 31, Feb 29 -> 2025).
// The date is never clamped or shifted; the whole run fails instead.
var ErrNonexistentDate = errors.New("next occurrence does not exist in target month")

// Advancer is the strategy interface for computing the next occurrence.
// Each implementation encapsulates the algorithm for a specific frequency type.
type Advancer interface {
	// Next returns the occurrence following current.
	Next(current core.Date) (core.Date, error)
}

// DailyAdvancer implements Advancer for daily recurring expenses.
type DailyAdvancer struct{}

// Next returns the following day.
func (DailyAdvancer) Next(current core.Date) (core.Date, error) {
	return current.AddDays(1), nil
}

// WeeklyAdvancer implements Advancer for weekly recurring expenses.
type WeeklyAdvancer struct{}

// Next returns the same weekday one week later.
func (WeeklyAdvancer) Next(current core.Date) (core.Date, error) {
	return current.AddDays(7), nil
}

// MonthlyAdvancer implements Advancer for monthly recurring expenses.
type MonthlyAdvancer struct{}

// Next keeps the day of month and moves to the following month, rolling the
// year over after December.
func (MonthlyAdvancer) Next(current core.Date) (core.Date, error) {
	year, month := current.Year(), current.Month()+1
	if month > 12 {
		month = 1
		year++
	}
	return sameDay(current, year, month)
}

// YearlyAdvancer implements Advancer for yearly recurring expenses.
type YearlyAdvancer struct{}

// Next keeps month and day and moves to the following year.
func (YearlyAdvancer) Next(current core.Date) (core.Date, error) {
	return sameDay(current, current.Year()+1, current.Month())
}

// noopAdvancer leaves the date untouched. Rules with an unrecognized
// frequency therefore stay due on every run until they are corrected.
type noopAdvancer struct{}

func (noopAdvancer) Next(current core.Date) (core.Date, error) {
	return current, nil
}

func sameDay(current core.Date, year, month int) (core.Date, error) {
	day := current.Day()
	if day > daysIn(year, month) {
		return core.Date{}, fmt.Errorf("%w: %s has no day %d in %04d-%02d",
			ErrNonexistentDate, current, day, year, month)
	}
	return core.NewDate(year, month, day), nil
}

func daysIn(year, month int) int {
	// day 0 of the next month is the last day of this one
	return core.NewDate(year, month+1, 0).Day()
}

// advanceStrategies maps frequencies to their corresponding advancers.
var advanceStrategies = map[core.Frequency]Advancer{
	core.Daily:   DailyAdvancer{},
	core.Weekly:  WeeklyAdvancer{},
	core.Monthly: MonthlyAdvancer{},
	core.Yearly:  YearlyAdvancer{},
}

// GetAdvancer returns the advancer for a frequency. Unknown frequencies get a
// no-op advancer rather than an error.
func GetAdvancer(frequency core.Frequency) Advancer {
	advancer, ok := advanceStrategies[frequency]
	if !ok {
		return noopAdvancer{}
	}
	return advancer
}

// RegisterAdvancer allows registering custom advancers for new frequency types.
func RegisterAdvancer(frequency core.Frequency, advancer Advancer) {
	advanceStrategies[frequency] = advancer
}

// Advance computes the occurrence after date for the given frequency.
func Advance(date core.Date, frequency core.Frequency) (core.Date, error) {
	return GetAdvancer(frequency).Next(date)
}
