package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceDate(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceDate().Time) {
		t.Fatalf("expected ReferenceDate, got %v", clock.Now())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(48 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(48 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(48*time.Hour), got)
	}
}
