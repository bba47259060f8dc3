package services

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/terraincognita07/careline/internal/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidStoolTime    = errors.New("invalid stool time")
	ErrInvalidBristolScore = errors.New("invalid bristol score")
)

var stoolTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type StoolEventRepository interface {
	ListByFamilyRange(familyID uint, fromStart time.Time, toEnd time.Time) ([]models.StoolEvent, error)
	CreateWithRollup(event *models.StoolEvent, rollup func([]models.StoolEvent) models.StoolRollup) error
	DeleteWithRollup(familyID uint, eventID uint, rollup func([]models.StoolEvent) models.StoolRollup) (models.StoolEvent, error)
}

type StoolEventInput struct {
	Date     *time.Time
	Time     *string
	Bristol  *int
	Blood    bool
	Mucus    bool
	Tenesmus bool
}

// StoolDailySummary is one calendar day of stool events and their rollup.
type StoolDailySummary struct {
	Date   time.Time           `json:"-"`
	Day    string              `json:"date"`
	Events []models.StoolEvent `json:"events"`
	models.StoolRollup
}

// RollupStoolEvents counts the events and each flag among them.
func RollupStoolEvents(events []models.StoolEvent) models.StoolRollup {
	rollup := models.StoolRollup{Count: len(events)}
	for _, event := range events {
		if event.Blood {
			rollup.BloodCount++
		}
		if event.Mucus {
			rollup.MucusCount++
		}
		if event.Tenesmus {
			rollup.TenesmusCount++
		}
	}
	return rollup
}

type StoolService struct {
	events StoolEventRepository
	clock  Clock
}

func NewStoolService(events StoolEventRepository, clock Clock) *StoolService {
	return &StoolService{events: events, clock: clock}
}

// Record stores one event and refreshes the day's record counters.
func (service *StoolService) Record(familyID uint, input StoolEventInput) (models.StoolEvent, error) {
	now := service.clock.Now()
	location := clockLocation(service.clock)

	day := service.clock.Today()
	if input.Date != nil {
		day = DateAtLocation(*input.Date, location)
	}
	clockTime := now.Format("15:04")
	if input.Time != nil {
		if !stoolTimePattern.MatchString(*input.Time) {
			return models.StoolEvent{}, ErrInvalidStoolTime
		}
		clockTime = *input.Time
	}
	if input.Bristol != nil && (*input.Bristol < 1 || *input.Bristol > 7) {
		return models.StoolEvent{}, ErrInvalidBristolScore
	}

	event := models.StoolEvent{
		FamilyID:   familyID,
		Date:       day,
		Time:       &clockTime,
		Bristol:    input.Bristol,
		Blood:      input.Blood,
		Mucus:      input.Mucus,
		Tenesmus:   input.Tenesmus,
		RecordedAt: now,
	}
	if err := service.events.CreateWithRollup(&event, RollupStoolEvents); err != nil {
		return models.StoolEvent{}, fmt.Errorf("create stool event: %w", err)
	}
	return event, nil
}

func (service *StoolService) Delete(familyID uint, eventID uint) error {
	_, err := service.events.DeleteWithRollup(familyID, eventID, RollupStoolEvents)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete stool event %d: %w", eventID, err)
	}
	return nil
}

func (service *StoolService) Today(familyID uint) (StoolDailySummary, error) {
	today := service.clock.Today()
	summaries, err := service.Range(familyID, today, today)
	if err != nil {
		return StoolDailySummary{}, err
	}
	return summaries[0], nil
}

// Range returns one summary per calendar day from from to to inclusive,
// empty days included.
func (service *StoolService) Range(familyID uint, from time.Time, to time.Time) ([]StoolDailySummary, error) {
	location := clockLocation(service.clock)
	fromStart := DateAtLocation(from, location)
	_, toEnd := DayRange(to, location)

	events, err := service.events.ListByFamilyRange(familyID, fromStart, toEnd)
	if err != nil {
		return nil, fmt.Errorf("list stool events: %w", err)
	}

	grouped := make(map[string][]models.StoolEvent)
	for _, event := range events {
		event.Date = DateAtLocation(event.Date, location)
		key := FormatDay(event.Date)
		grouped[key] = append(grouped[key], event)
	}

	summaries := make([]StoolDailySummary, 0)
	for day := fromStart; day.Before(toEnd); day = day.AddDate(0, 0, 1) {
		dayEvents := grouped[FormatDay(day)]
		if dayEvents == nil {
			dayEvents = []models.StoolEvent{}
		}
		summaries = append(summaries, StoolDailySummary{
			Date:        day,
			Day:         FormatDay(day),
			Events:      dayEvents,
			StoolRollup: RollupStoolEvents(dayEvents),
		})
	}
	return summaries, nil
}
