package services

import (
	"time"

	"github.com/terraincognita07/careline/internal/models"
)

const (
	DayStatusGood  = "good"
	DayStatusOkay  = "okay"
	DayStatusTough = "tough"
	DayStatusRest  = "rest"
	DayStatusNone  = "none"
)

var dayStatusEmoji = map[string]string{
	DayStatusGood:  "😊",
	DayStatusOkay:  "😐",
	DayStatusTough: "💪",
}

type CalendarDay struct {
	Date     string `json:"date"`
	CycleDay *int   `json:"cycle_day"`
	Status   string `json:"status"`
	Emoji    string `json:"emoji"`
	Recorded bool   `json:"recorded"`
}

type CalendarResponse struct {
	Year          int           `json:"year"`
	Month         int           `json:"month"`
	Days          []CalendarDay `json:"days"`
	TotalRecorded int           `json:"total_recorded"`
	GoodDays      int           `json:"good_days"`
	Streak        int           `json:"streak"`
}

// ClassifyDay grades a record by energy + nausea. A tough-day flag always
// grades as tough.
func ClassifyDay(record models.DailyRecord) string {
	if record.IsToughDay {
		return DayStatusTough
	}
	score := 0
	if record.Energy != nil {
		score += *record.Energy
	}
	if record.Nausea != nil {
		score += *record.Nausea
	}
	switch {
	case score <= 2:
		return DayStatusGood
	case score <= 4:
		return DayStatusOkay
	default:
		return DayStatusTough
	}
}

// BuildMonthCalendar grades every day of the month. Unrecorded past days are
// "rest" outside the active cycle's span and "none" inside it; future days
// are always "none".
func BuildMonthCalendar(year int, month time.Month, records []models.DailyRecord, activeCycle *models.Cycle, today time.Time) CalendarResponse {
	location := today.Location()
	byDay := make(map[string]models.DailyRecord, len(records))
	for _, record := range records {
		byDay[FormatDay(DateAtLocation(record.Date, location))] = record
	}

	daysInMonth := DaysInMonth(year, month)
	response := CalendarResponse{
		Year:  year,
		Month: int(month),
		Days:  make([]CalendarDay, 0, daysInMonth),
	}

	for dayOfMonth := 1; dayOfMonth <= daysInMonth; dayOfMonth++ {
		date := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, location)
		key := FormatDay(date)
		entry := CalendarDay{Date: key, Status: DayStatusNone}

		if activeCycle != nil {
			if cycleDay, ok := CycleDayWithinSpan(*activeCycle, date); ok {
				entry.CycleDay = &cycleDay
			}
		}

		record, recorded := byDay[key]
		switch {
		case recorded:
			entry.Recorded = true
			entry.Status = ClassifyDay(record)
			entry.Emoji = dayStatusEmoji[entry.Status]
			response.TotalRecorded++
		case !date.After(today) && entry.CycleDay == nil:
			entry.Status = DayStatusRest
		}
		if entry.Status == DayStatusGood {
			response.GoodDays++
		}
		response.Days = append(response.Days, entry)
	}

	response.Streak = recordedStreak(year, month, byDay, today)
	return response
}

// recordedStreak walks back from today, or the month's last day when today
// is later, and counts recorded days up to the first gap.
func recordedStreak(year int, month time.Month, byDay map[string]models.DailyRecord, today time.Time) int {
	streak := 0
	for dayOfMonth := DaysInMonth(year, month); dayOfMonth >= 1; dayOfMonth-- {
		date := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, today.Location())
		if date.After(today) {
			continue
		}
		if _, ok := byDay[FormatDay(date)]; !ok {
			break
		}
		streak++
	}
	return streak
}
