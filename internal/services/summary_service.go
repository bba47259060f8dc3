package services

import (
	"errors"
	"time"

	"github.com/terraincognita07/careline/internal/models"
)

type SummaryMode string

const (
	SummaryModeCaregiver SummaryMode = "caregiver"
	SummaryModePatient   SummaryMode = "patient"
)

var ErrInvalidSummaryMode = errors.New("invalid summary mode")

func ParseSummaryMode(raw string) (SummaryMode, error) {
	switch SummaryMode(raw) {
	case "", SummaryModeCaregiver:
		return SummaryModeCaregiver, nil
	case SummaryModePatient:
		return SummaryModePatient, nil
	default:
		return "", ErrInvalidSummaryMode
	}
}

type TrendPoint struct {
	Date         string   `json:"date"`
	CycleDay     *int     `json:"cycle_day"`
	Energy       *int     `json:"energy"`
	Nausea       *int     `json:"nausea"`
	Appetite     *int     `json:"appetite"`
	SleepQuality *int     `json:"sleep_quality"`
	StoolCount   *int     `json:"stool_count"`
	Diarrhea     *int     `json:"diarrhea"`
	Fever        bool     `json:"fever"`
	TempC        *float64 `json:"temp_c"`
	IsToughDay   bool     `json:"is_tough_day"`
}

type SummaryResponse struct {
	CycleNo     int          `json:"cycle_no"`
	CycleDay    int          `json:"cycle_day"`
	StartDate   string       `json:"start_date"`
	LengthDays  int          `json:"length_days"`
	Mode        SummaryMode  `json:"mode"`
	Trends      []TrendPoint `json:"trends"`
	KeyStats    KeyStats     `json:"key_stats"`
	SummaryText string       `json:"summary_text"`
}

type SummaryCycleReader interface {
	Resolve(familyID uint, cycleNo *int) (models.Cycle, error)
	Current(familyID uint) (models.Cycle, error)
}

type SummaryRecordReader interface {
	ForCycle(familyID uint, cycleNo int) ([]models.DailyRecord, error)
	Range(familyID uint, from time.Time, to time.Time) ([]models.DailyRecord, error)
}

type SummaryService struct {
	cycles  SummaryCycleReader
	records SummaryRecordReader
	clock   Clock
}

func NewSummaryService(cycles SummaryCycleReader, records SummaryRecordReader, clock Clock) *SummaryService {
	return &SummaryService{cycles: cycles, records: records, clock: clock}
}

// Summary builds trends, key stats and report text for cycleNo, or for the
// active cycle when cycleNo is nil.
func (service *SummaryService) Summary(familyID uint, cycleNo *int, days int, mode SummaryMode, translate Translator) (SummaryResponse, error) {
	cycle, err := service.cycles.Resolve(familyID, cycleNo)
	if err != nil {
		return SummaryResponse{}, err
	}
	records, err := service.records.ForCycle(familyID, cycle.CycleNo)
	if err != nil {
		return SummaryResponse{}, err
	}

	today := service.clock.Today()
	currentDay := DaysBetween(cycle.StartDate, today) + 1
	stats := BuildKeyStats(records, RecentWindow(days), translate)

	var text string
	if mode == SummaryModePatient {
		text = PatientReport(cycle, currentDay, stats, translate)
	} else {
		mode = SummaryModeCaregiver
		text = CaregiverReport(cycle, currentDay, stats, today, translate)
	}

	return SummaryResponse{
		CycleNo:     cycle.CycleNo,
		CycleDay:    currentDay,
		StartDate:   FormatDay(DateAtLocation(cycle.StartDate, today.Location())),
		LengthDays:  cycle.LengthDays,
		Mode:        mode,
		Trends:      BuildTrendPoints(records),
		KeyStats:    stats,
		SummaryText: text,
	}, nil
}

// Calendar grades the given month. A zero year or month means the current one.
func (service *SummaryService) Calendar(familyID uint, year int, month time.Month) (CalendarResponse, error) {
	today := service.clock.Today()
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = today.Month()
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, today.Location())
	last := time.Date(year, month, DaysInMonth(year, month), 0, 0, 0, 0, today.Location())
	records, err := service.records.Range(familyID, first, last)
	if err != nil {
		return CalendarResponse{}, err
	}

	var activeCycle *models.Cycle
	cycle, err := service.cycles.Current(familyID)
	switch {
	case err == nil:
		activeCycle = &cycle
	case !errors.Is(err, ErrNotFound):
		return CalendarResponse{}, err
	}

	return BuildMonthCalendar(year, month, records, activeCycle, today), nil
}

func BuildTrendPoints(records []models.DailyRecord) []TrendPoint {
	points := make([]TrendPoint, 0, len(records))
	for _, record := range records {
		points = append(points, TrendPoint{
			Date:         FormatDay(record.Date),
			CycleDay:     record.CycleDay,
			Energy:       record.Energy,
			Nausea:       record.Nausea,
			Appetite:     record.Appetite,
			SleepQuality: record.SleepQuality,
			StoolCount:   record.StoolCount,
			Diarrhea:     record.Diarrhea,
			Fever:        record.Fever,
			TempC:        record.TempC,
			IsToughDay:   record.IsToughDay,
		})
	}
	return points
}
