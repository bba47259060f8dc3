package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/careline/internal/models"
)

var ErrInvalidCycleLength = errors.New("invalid cycle length")

type CycleRepository interface {
	FindActive(familyID uint) (models.Cycle, bool, error)
	FindByNumber(familyID uint, cycleNo int) (models.Cycle, bool, error)
	ListByFamily(familyID uint) ([]models.Cycle, error)
	ActiveVersion(familyID uint) (int, error)
	Activate(target *models.Cycle, expectedVersion int) error
	Deactivate(familyID uint, cycleNo int, expectedVersion int) error
	UpdateFields(familyID uint, cycleNo int, updates map[string]any) error
}

type CycleInput struct {
	CycleNo    int
	StartDate  time.Time
	LengthDays int
	Regimen    *string
}

// CycleUpdate holds the fields of a partial cycle edit; nil means unchanged.
type CycleUpdate struct {
	StartDate  *time.Time
	LengthDays *int
	Regimen    *string
	IsActive   *bool
}

type CycleService struct {
	cycles CycleRepository
	clock  Clock
}

func NewCycleService(cycles CycleRepository, clock Clock) *CycleService {
	return &CycleService{cycles: cycles, clock: clock}
}

// Start creates cycle input.CycleNo, or rewrites it when it already exists,
// and makes it the family's only active cycle.
func (service *CycleService) Start(familyID uint, input CycleInput) (models.Cycle, error) {
	if input.LengthDays == 0 {
		input.LengthDays = models.DefaultCycleLength
	}
	if !models.IsValidCycleLength(input.LengthDays) {
		return models.Cycle{}, ErrInvalidCycleLength
	}

	version, err := service.cycles.ActiveVersion(familyID)
	if err != nil {
		return models.Cycle{}, fmt.Errorf("load active cycle version: %w", err)
	}

	cycle := models.Cycle{
		FamilyID:   familyID,
		CycleNo:    input.CycleNo,
		StartDate:  DateAtLocation(input.StartDate, clockLocation(service.clock)),
		LengthDays: input.LengthDays,
		Regimen:    input.Regimen,
	}
	if err := service.cycles.Activate(&cycle, version); err != nil {
		return models.Cycle{}, fmt.Errorf("activate cycle %d: %w", input.CycleNo, err)
	}
	return cycle, nil
}

func (service *CycleService) Current(familyID uint) (models.Cycle, error) {
	cycle, found, err := service.cycles.FindActive(familyID)
	if err != nil {
		return models.Cycle{}, fmt.Errorf("load active cycle: %w", err)
	}
	if !found {
		return models.Cycle{}, ErrNotFound
	}
	return cycle, nil
}

// Resolve returns cycle cycleNo, or the active cycle when cycleNo is nil.
func (service *CycleService) Resolve(familyID uint, cycleNo *int) (models.Cycle, error) {
	if cycleNo == nil {
		return service.Current(familyID)
	}
	cycle, found, err := service.cycles.FindByNumber(familyID, *cycleNo)
	if err != nil {
		return models.Cycle{}, fmt.Errorf("load cycle %d: %w", *cycleNo, err)
	}
	if !found {
		return models.Cycle{}, ErrNotFound
	}
	return cycle, nil
}

func (service *CycleService) List(familyID uint) ([]models.Cycle, error) {
	return service.cycles.ListByFamily(familyID)
}

func (service *CycleService) Update(familyID uint, cycleNo int, update CycleUpdate) (models.Cycle, error) {
	cycle, err := service.Resolve(familyID, &cycleNo)
	if err != nil {
		return models.Cycle{}, err
	}

	updates := map[string]any{}
	if update.StartDate != nil {
		cycle.StartDate = DateAtLocation(*update.StartDate, clockLocation(service.clock))
		updates["start_date"] = cycle.StartDate
	}
	if update.LengthDays != nil {
		if !models.IsValidCycleLength(*update.LengthDays) {
			return models.Cycle{}, ErrInvalidCycleLength
		}
		cycle.LengthDays = *update.LengthDays
		updates["length_days"] = cycle.LengthDays
	}
	if update.Regimen != nil {
		cycle.Regimen = update.Regimen
		updates["regimen"] = *update.Regimen
	}
	if err := service.cycles.UpdateFields(familyID, cycleNo, updates); err != nil {
		return models.Cycle{}, fmt.Errorf("update cycle %d: %w", cycleNo, err)
	}

	if update.IsActive == nil || *update.IsActive == cycle.IsActive {
		return cycle, nil
	}

	version, err := service.cycles.ActiveVersion(familyID)
	if err != nil {
		return models.Cycle{}, fmt.Errorf("load active cycle version: %w", err)
	}
	if *update.IsActive {
		if err := service.cycles.Activate(&cycle, version); err != nil {
			return models.Cycle{}, fmt.Errorf("activate cycle %d: %w", cycleNo, err)
		}
		return cycle, nil
	}
	if err := service.cycles.Deactivate(familyID, cycleNo, version); err != nil {
		return models.Cycle{}, fmt.Errorf("deactivate cycle %d: %w", cycleNo, err)
	}
	cycle.IsActive = false
	return cycle, nil
}

// FindCycleForDate maps date onto the family's active cycle, whatever the
// cycle's span. Both results are nil without an active cycle; the day is nil
// when date precedes the cycle start.
func (service *CycleService) FindCycleForDate(familyID uint, date time.Time) (*int, *int, error) {
	cycle, found, err := service.cycles.FindActive(familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("load active cycle: %w", err)
	}
	if !found {
		return nil, nil, nil
	}

	cycleNo := cycle.CycleNo
	day, ok := CycleDay(cycle, DateAtLocation(date, clockLocation(service.clock)))
	if !ok {
		return &cycleNo, nil, nil
	}
	return &cycleNo, &day, nil
}

// CurrentDay is today's day number of an active cycle, nil otherwise.
func (service *CycleService) CurrentDay(cycle models.Cycle) *int {
	if !cycle.IsActive {
		return nil
	}
	return LiveCyclePosition(&cycle, service.clock.Today())
}
