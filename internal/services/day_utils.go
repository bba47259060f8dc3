package services

import (
	"fmt"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// DaysBetween counts calendar days from from to to, both read in to's zone.
func DaysBetween(from time.Time, to time.Time) int {
	location := to.Location()
	fromYear, fromMonth, fromDay := from.In(location).Date()
	toYear, toMonth, toDay := to.Date()
	start := time.Date(fromYear, fromMonth, fromDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(toYear, toMonth, toDay, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func ParseDay(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	parsed, err := time.ParseInLocation(dayLayout, strings.TrimSpace(raw), location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", raw, err)
	}
	return parsed, nil
}

func FormatDay(value time.Time) string {
	return value.Format(dayLayout)
}

func sameDay(a time.Time, b time.Time) bool {
	return DaysBetween(a, b) == 0
}
