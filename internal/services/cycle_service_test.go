package services

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/terraincognita07/careline/internal/models"
)

type cycleRepositoryStub struct {
	cycles   map[int]models.Cycle
	version  int
	nextID   uint
	findErr  error
	activate func()
}

func newCycleRepositoryStub(cycles ...models.Cycle) *cycleRepositoryStub {
	stub := &cycleRepositoryStub{cycles: map[int]models.Cycle{}, nextID: 1}
	for _, cycle := range cycles {
		cycle.ID = stub.nextID
		stub.nextID++
		stub.cycles[cycle.CycleNo] = cycle
	}
	return stub
}

func (stub *cycleRepositoryStub) FindActive(familyID uint) (models.Cycle, bool, error) {
	if stub.findErr != nil {
		return models.Cycle{}, false, stub.findErr
	}
	for _, cycle := range stub.cycles {
		if cycle.FamilyID == familyID && cycle.IsActive {
			return cycle, true, nil
		}
	}
	return models.Cycle{}, false, nil
}

func (stub *cycleRepositoryStub) FindByNumber(familyID uint, cycleNo int) (models.Cycle, bool, error) {
	cycle, ok := stub.cycles[cycleNo]
	if !ok || cycle.FamilyID != familyID {
		return models.Cycle{}, false, nil
	}
	return cycle, true, nil
}

func (stub *cycleRepositoryStub) ListByFamily(familyID uint) ([]models.Cycle, error) {
	result := make([]models.Cycle, 0)
	for _, cycle := range stub.cycles {
		if cycle.FamilyID == familyID {
			result = append(result, cycle)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CycleNo < result[j].CycleNo })
	return result, nil
}

func (stub *cycleRepositoryStub) ActiveVersion(uint) (int, error) {
	return stub.version, nil
}

func (stub *cycleRepositoryStub) Activate(target *models.Cycle, expectedVersion int) error {
	if stub.activate != nil {
		stub.activate()
	}
	if expectedVersion != stub.version {
		return models.ErrActiveCycleVersionConflict
	}
	for number, cycle := range stub.cycles {
		if cycle.FamilyID == target.FamilyID {
			cycle.IsActive = false
			stub.cycles[number] = cycle
		}
	}
	if existing, ok := stub.cycles[target.CycleNo]; ok {
		target.ID = existing.ID
	} else {
		target.ID = stub.nextID
		stub.nextID++
	}
	target.IsActive = true
	stub.cycles[target.CycleNo] = *target
	stub.version++
	return nil
}

func (stub *cycleRepositoryStub) Deactivate(familyID uint, cycleNo int, expectedVersion int) error {
	if expectedVersion != stub.version {
		return models.ErrActiveCycleVersionConflict
	}
	cycle := stub.cycles[cycleNo]
	cycle.IsActive = false
	stub.cycles[cycleNo] = cycle
	stub.version++
	return nil
}

func (stub *cycleRepositoryStub) UpdateFields(familyID uint, cycleNo int, updates map[string]any) error {
	cycle := stub.cycles[cycleNo]
	for key, value := range updates {
		switch key {
		case "start_date":
			cycle.StartDate = value.(time.Time)
		case "length_days":
			cycle.LengthDays = value.(int)
		case "regimen":
			regimen := value.(string)
			cycle.Regimen = &regimen
		}
	}
	stub.cycles[cycleNo] = cycle
	return nil
}

func TestFindCycleForDateUsesActiveCycle(t *testing.T) {
	repo := newCycleRepositoryStub(
		models.Cycle{FamilyID: 1, CycleNo: 1, StartDate: day(2024, time.January, 1), LengthDays: 21},
		models.Cycle{FamilyID: 1, CycleNo: 2, StartDate: day(2024, time.February, 1), LengthDays: 21, IsActive: true},
	)
	service := NewCycleService(repo, clockAt(2024, time.February, 10))

	cycleNo, cycleDay, err := service.FindCycleForDate(1, day(2024, time.February, 3))
	if err != nil {
		t.Fatalf("FindCycleForDate() unexpected error: %v", err)
	}
	if cycleNo == nil || *cycleNo != 2 || cycleDay == nil || *cycleDay != 3 {
		t.Fatalf("FindCycleForDate() = (%v, %v), want (2, 3)", cycleNo, cycleDay)
	}

	// A date inside the older cycle still maps onto the active one.
	cycleNo, cycleDay, err = service.FindCycleForDate(1, day(2024, time.January, 10))
	if err != nil {
		t.Fatalf("FindCycleForDate() unexpected error: %v", err)
	}
	if cycleNo == nil || *cycleNo != 2 {
		t.Fatalf("expected active cycle number 2, got %v", cycleNo)
	}
	if cycleDay != nil {
		t.Fatalf("expected nil cycle day before active start, got %d", *cycleDay)
	}
}

func TestFindCycleForDateWithoutActiveCycle(t *testing.T) {
	service := NewCycleService(newCycleRepositoryStub(), clockAt(2024, time.February, 10))

	cycleNo, cycleDay, err := service.FindCycleForDate(1, day(2024, time.February, 3))
	if err != nil {
		t.Fatalf("FindCycleForDate() unexpected error: %v", err)
	}
	if cycleNo != nil || cycleDay != nil {
		t.Fatalf("FindCycleForDate() = (%v, %v), want (nil, nil)", cycleNo, cycleDay)
	}
}

func TestCycleServiceStartKeepsSingleActiveCycle(t *testing.T) {
	repo := newCycleRepositoryStub(
		models.Cycle{FamilyID: 1, CycleNo: 1, StartDate: day(2024, time.January, 1), LengthDays: 21, IsActive: true},
	)
	service := NewCycleService(repo, clockAt(2024, time.February, 10))

	cycle, err := service.Start(1, CycleInput{CycleNo: 2, StartDate: day(2024, time.January, 22)})
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	if !cycle.IsActive || cycle.LengthDays != models.DefaultCycleLength {
		t.Fatalf("unexpected started cycle: %#v", cycle)
	}

	cycles, _ := repo.ListByFamily(1)
	active := 0
	for _, item := range cycles {
		if item.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active cycle, got %d", active)
	}
	if repo.version != 1 {
		t.Fatalf("expected active cycle version 1, got %d", repo.version)
	}
}

func TestCycleServiceStartReportsVersionConflict(t *testing.T) {
	repo := newCycleRepositoryStub()
	repo.activate = func() { repo.version++ }
	service := NewCycleService(repo, clockAt(2024, time.February, 10))

	_, err := service.Start(1, CycleInput{CycleNo: 1, StartDate: day(2024, time.February, 1), LengthDays: 21})
	if !errors.Is(err, ErrCycleVersionConflict) {
		t.Fatalf("expected ErrCycleVersionConflict, got %v", err)
	}
}

func TestCycleServiceStartRejectsInvalidLength(t *testing.T) {
	service := NewCycleService(newCycleRepositoryStub(), clockAt(2024, time.February, 10))

	for _, length := range []int{6, 43} {
		_, err := service.Start(1, CycleInput{CycleNo: 1, StartDate: day(2024, time.February, 1), LengthDays: length})
		if !errors.Is(err, ErrInvalidCycleLength) {
			t.Fatalf("length %d: expected ErrInvalidCycleLength, got %v", length, err)
		}
	}
}

func TestCycleServiceUpdate(t *testing.T) {
	repo := newCycleRepositoryStub(
		models.Cycle{FamilyID: 1, CycleNo: 1, StartDate: day(2024, time.January, 1), LengthDays: 21, IsActive: true},
		models.Cycle{FamilyID: 1, CycleNo: 2, StartDate: day(2024, time.January, 22), LengthDays: 21},
	)
	service := NewCycleService(repo, clockAt(2024, time.February, 10))

	updated, err := service.Update(1, 2, CycleUpdate{LengthDays: intPtr(28), Regimen: stringPtr("FOLFOX"), IsActive: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if updated.LengthDays != 28 || updated.Regimen == nil || *updated.Regimen != "FOLFOX" || !updated.IsActive {
		t.Fatalf("unexpected updated cycle: %#v", updated)
	}
	if repo.cycles[1].IsActive {
		t.Fatal("expected cycle 1 to be deactivated")
	}

	if _, err := service.Update(1, 9, CycleUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown cycle, got %v", err)
	}
}

func TestCycleServiceCurrentDay(t *testing.T) {
	service := NewCycleService(newCycleRepositoryStub(), clockAt(2024, time.January, 22))
	cycle := models.Cycle{StartDate: day(2024, time.January, 1), LengthDays: 21, IsActive: true}

	if got := service.CurrentDay(cycle); got == nil || *got != 22 {
		t.Fatalf("CurrentDay() = %v, want 22", got)
	}
	cycle.IsActive = false
	if got := service.CurrentDay(cycle); got != nil {
		t.Fatalf("CurrentDay() for inactive cycle = %d, want nil", *got)
	}
}
