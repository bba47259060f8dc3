package services

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/careline/internal/models"
)

const MaxNoteLength = 2000

var (
	ErrInvalidDailyRecordInput = errors.New("invalid daily record input")
	ErrDailyRecordSaveFailed   = errors.New("save daily record failed")
)

type DailyRecordRepository interface {
	ListByFamilyRange(familyID uint, fromStart time.Time, toEnd time.Time) ([]models.DailyRecord, error)
	ListByCycle(familyID uint, cycleNo int) ([]models.DailyRecord, error)
	FindByFamilyAndDayRange(familyID uint, dayStart time.Time, dayEnd time.Time) (models.DailyRecord, bool, error)
	Upsert(
		familyID uint,
		dayStart time.Time,
		merge func(existing *models.DailyRecord, previous *models.DailyRecord, events []models.StoolEvent) models.DailyRecord,
	) (models.DailyRecord, error)
}

type CycleLocator interface {
	FindCycleForDate(familyID uint, date time.Time) (*int, *int, error)
}

// DailyRecordInput is a day's manual entry. Nil fields were left unset by the
// caller.
type DailyRecordInput struct {
	Energy       *int
	Nausea       *int
	Appetite     *int
	SleepQuality *int
	Fever        bool
	TempC        *float64
	StoolCount   *int
	Diarrhea     *int
	Numbness     *bool
	MouthSore    *bool
	IsToughDay   bool
	Note         *string
}

func (input DailyRecordInput) Validate() error {
	checks := []struct {
		value    *int
		min, max int
	}{
		{input.Energy, 0, 4},
		{input.Nausea, 0, 3},
		{input.Appetite, 0, 5},
		{input.SleepQuality, 0, 3},
		{input.StoolCount, 0, 30},
		{input.Diarrhea, 0, 3},
	}
	for _, check := range checks {
		if check.value != nil && (*check.value < check.min || *check.value > check.max) {
			return ErrInvalidDailyRecordInput
		}
	}
	if input.TempC != nil && (*input.TempC < 35 || *input.TempC > 42) {
		return ErrInvalidDailyRecordInput
	}
	if input.Note != nil && utf8.RuneCountInString(*input.Note) > MaxNoteLength {
		return ErrInvalidDailyRecordInput
	}
	return nil
}

// DailyMerge is everything a merge needs besides the caller's input.
type DailyMerge struct {
	Day        time.Time
	Existing   *models.DailyRecord
	Previous   *models.DailyRecord
	Events     []models.StoolEvent
	CycleNo    *int
	CycleDay   *int
	RecordedBy uint
	Now        time.Time
}

// MergeDailyRecord builds the record to persist for merge.Day.
//
// On a tough day, fields the caller left nil are copied from the previous
// day's record. An existing record keeps every field the input leaves nil,
// except note and temperature which are always written. The stool rollup is
// attached only when the day has events.
func MergeDailyRecord(merge DailyMerge, input DailyRecordInput) models.DailyRecord {
	if input.IsToughDay && merge.Previous != nil {
		input = fillFromPrevious(input, *merge.Previous)
	}

	var record models.DailyRecord
	if merge.Existing != nil {
		record = *merge.Existing
		assignInt(&record.Energy, input.Energy)
		assignInt(&record.Nausea, input.Nausea)
		assignInt(&record.Appetite, input.Appetite)
		assignInt(&record.SleepQuality, input.SleepQuality)
		assignInt(&record.StoolCount, input.StoolCount)
		assignInt(&record.Diarrhea, input.Diarrhea)
		if input.Numbness != nil {
			record.Numbness = *input.Numbness
		}
		if input.MouthSore != nil {
			record.MouthSore = *input.MouthSore
		}
	} else {
		record = models.DailyRecord{
			Energy:       cloneInt(input.Energy),
			Nausea:       cloneInt(input.Nausea),
			Appetite:     cloneInt(input.Appetite),
			SleepQuality: cloneInt(input.SleepQuality),
			StoolCount:   cloneInt(input.StoolCount),
			Diarrhea:     cloneInt(input.Diarrhea),
			Numbness:     input.Numbness != nil && *input.Numbness,
			MouthSore:    input.MouthSore != nil && *input.MouthSore,
			CreatedAt:    merge.Now,
		}
	}

	record.Date = merge.Day
	record.Fever = input.Fever
	record.IsToughDay = input.IsToughDay
	record.TempC = cloneFloat(input.TempC)
	record.Note = cloneString(input.Note)
	record.CycleNo = cloneInt(merge.CycleNo)
	record.CycleDay = cloneInt(merge.CycleDay)

	if len(merge.Events) > 0 {
		rollup := RollupStoolEvents(merge.Events)
		count := rollup.Count
		record.StoolCount = &count
		record.StoolBloodCount = rollup.BloodCount
		record.StoolMucusCount = rollup.MucusCount
		record.StoolTenesmusCount = rollup.TenesmusCount
	}

	recordedBy := merge.RecordedBy
	record.RecordedBy = &recordedBy
	record.UpdatedAt = merge.Now
	return record
}

func fillFromPrevious(input DailyRecordInput, previous models.DailyRecord) DailyRecordInput {
	fillInt(&input.Energy, previous.Energy)
	fillInt(&input.Nausea, previous.Nausea)
	fillInt(&input.Appetite, previous.Appetite)
	fillInt(&input.SleepQuality, previous.SleepQuality)
	fillInt(&input.Diarrhea, previous.Diarrhea)
	fillInt(&input.StoolCount, previous.StoolCount)
	if input.Numbness == nil {
		numbness := previous.Numbness
		input.Numbness = &numbness
	}
	if input.MouthSore == nil {
		mouthSore := previous.MouthSore
		input.MouthSore = &mouthSore
	}
	return input
}

type DailyRecordService struct {
	records DailyRecordRepository
	cycles  CycleLocator
	clock   Clock
}

func NewDailyRecordService(records DailyRecordRepository, cycles CycleLocator, clock Clock) *DailyRecordService {
	return &DailyRecordService{records: records, cycles: cycles, clock: clock}
}

// Upsert merges input into the family's record for day.
func (service *DailyRecordService) Upsert(familyID uint, userID uint, day time.Time, input DailyRecordInput) (models.DailyRecord, error) {
	if err := input.Validate(); err != nil {
		return models.DailyRecord{}, err
	}

	location := clockLocation(service.clock)
	dayStart := DateAtLocation(day, location)
	cycleNo, cycleDay, err := service.cycles.FindCycleForDate(familyID, dayStart)
	if err != nil {
		return models.DailyRecord{}, err
	}

	now := service.clock.Now()
	saved, err := service.records.Upsert(familyID, dayStart, func(existing *models.DailyRecord, previous *models.DailyRecord, events []models.StoolEvent) models.DailyRecord {
		return MergeDailyRecord(DailyMerge{
			Day:        dayStart,
			Existing:   existing,
			Previous:   previous,
			Events:     events,
			CycleNo:    cycleNo,
			CycleDay:   cycleDay,
			RecordedBy: userID,
			Now:        now,
		}, input)
	})
	if err != nil {
		return models.DailyRecord{}, fmt.Errorf("%w: %w", ErrDailyRecordSaveFailed, err)
	}
	saved.Date = DateAtLocation(saved.Date, location)
	return saved, nil
}

func (service *DailyRecordService) Range(familyID uint, from time.Time, to time.Time) ([]models.DailyRecord, error) {
	location := clockLocation(service.clock)
	fromStart := DateAtLocation(from, location)
	_, toEnd := DayRange(to, location)
	records, err := service.records.ListByFamilyRange(familyID, fromStart, toEnd)
	if err != nil {
		return nil, err
	}
	return localizeRecordDates(records, location), nil
}

func (service *DailyRecordService) ForCycle(familyID uint, cycleNo int) ([]models.DailyRecord, error) {
	records, err := service.records.ListByCycle(familyID, cycleNo)
	if err != nil {
		return nil, err
	}
	return localizeRecordDates(records, clockLocation(service.clock)), nil
}

// Today returns today's record, or nil when nothing was recorded yet.
func (service *DailyRecordService) Today(familyID uint) (*models.DailyRecord, error) {
	location := clockLocation(service.clock)
	dayStart, dayEnd := DayRange(service.clock.Today(), location)
	record, found, err := service.records.FindByFamilyAndDayRange(familyID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	record.Date = DateAtLocation(record.Date, location)
	return &record, nil
}

func localizeRecordDates(records []models.DailyRecord, location *time.Location) []models.DailyRecord {
	for index := range records {
		records[index].Date = DateAtLocation(records[index].Date, location)
	}
	return records
}

func assignInt(target **int, value *int) {
	if value != nil {
		*target = cloneInt(value)
	}
}

func fillInt(target **int, fallback *int) {
	if *target == nil {
		*target = cloneInt(fallback)
	}
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
