package api

import (
	"github.com/terraincognita07/careline/internal/models"
	"github.com/terraincognita07/careline/internal/services"
)

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type cycleView struct {
	models.Cycle
	StartDate  string `json:"start_date"`
	CurrentDay *int   `json:"current_day,omitempty"`
}

type dailyRecordView struct {
	models.DailyRecord
	Date         string `json:"date"`
	LiveCycleDay *int   `json:"live_cycle_day"`
}

type stoolEventView struct {
	models.StoolEvent
	Date string `json:"date"`
}

type stoolSummaryView struct {
	Date   string           `json:"date"`
	Events []stoolEventView `json:"events"`
	models.StoolRollup
}

func (handler *Handler) newCycleView(cycle models.Cycle, withCurrentDay bool) cycleView {
	cycle.StartDate = services.DateAtLocation(cycle.StartDate, handler.location)
	view := cycleView{Cycle: cycle, StartDate: services.FormatDay(cycle.StartDate)}
	if withCurrentDay {
		view.CurrentDay = handler.cycleService.CurrentDay(cycle)
	}
	return view
}

// newDailyRecordViews attaches the live cycle position of the active cycle,
// which may differ from the stored snapshot after the cycle was edited.
func (handler *Handler) newDailyRecordViews(records []models.DailyRecord, activeCycle *models.Cycle) []dailyRecordView {
	views := make([]dailyRecordView, 0, len(records))
	for _, record := range records {
		views = append(views, handler.newDailyRecordView(record, activeCycle))
	}
	return views
}

func (handler *Handler) newDailyRecordView(record models.DailyRecord, activeCycle *models.Cycle) dailyRecordView {
	date := services.DateAtLocation(record.Date, handler.location)
	return dailyRecordView{
		DailyRecord:  record,
		Date:         services.FormatDay(date),
		LiveCycleDay: services.LiveCyclePosition(activeCycle, date),
	}
}

func (handler *Handler) newStoolEventView(event models.StoolEvent) stoolEventView {
	return stoolEventView{StoolEvent: event, Date: services.FormatDay(services.DateAtLocation(event.Date, handler.location))}
}

func (handler *Handler) newStoolSummaryView(summary services.StoolDailySummary) stoolSummaryView {
	events := make([]stoolEventView, 0, len(summary.Events))
	for _, event := range summary.Events {
		events = append(events, handler.newStoolEventView(event))
	}
	return stoolSummaryView{Date: summary.Day, Events: events, StoolRollup: summary.StoolRollup}
}
