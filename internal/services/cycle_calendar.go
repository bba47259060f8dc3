package services

import (
	"time"

	"github.com/terraincognita07/careline/internal/models"
)

// CycleDay maps date to its 1-based day within cycle. ok is false when the
// date precedes the cycle start. Days past LengthDays are returned as is.
func CycleDay(cycle models.Cycle, date time.Time) (int, bool) {
	day := DaysBetween(cycle.StartDate, date) + 1
	if day < 1 {
		return 0, false
	}
	return day, true
}

// CycleDayWithinSpan is CycleDay limited to the cycle's declared length.
func CycleDayWithinSpan(cycle models.Cycle, date time.Time) (int, bool) {
	day, ok := CycleDay(cycle, date)
	if !ok || day > cycle.LengthDays {
		return 0, false
	}
	return day, true
}

// CycleOverrun returns how many days day runs past the cycle length.
func CycleOverrun(cycle models.Cycle, day int) int {
	if day <= cycle.LengthDays {
		return 0
	}
	return day - cycle.LengthDays
}

func CycleIsOverdue(cycle models.Cycle, day int) bool {
	return CycleOverrun(cycle, day) > 0
}

// LiveCyclePosition recomputes a day number against the cycle as it is
// stored now. Stored record snapshots are never rewritten with it.
func LiveCyclePosition(cycle *models.Cycle, date time.Time) *int {
	if cycle == nil {
		return nil
	}
	day, ok := CycleDay(*cycle, date)
	if !ok {
		return nil
	}
	return &day
}
