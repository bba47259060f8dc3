package db

import (
	"time"

	"github.com/terraincognita07/careline/internal/models"
	"gorm.io/gorm"
)

type StoolEventRepository struct {
	database *gorm.DB
}

func NewStoolEventRepository(database *gorm.DB) *StoolEventRepository {
	return &StoolEventRepository{database: database}
}

func (repo *StoolEventRepository) ListByFamilyRange(familyID uint, fromStart time.Time, toEnd time.Time) ([]models.StoolEvent, error) {
	return listStoolEvents(repo.database, familyID, fromStart, toEnd)
}

// CreateWithRollup inserts the event and rewrites the day's record counters
// in the same transaction.
func (repo *StoolEventRepository) CreateWithRollup(event *models.StoolEvent, rollup func([]models.StoolEvent) models.StoolRollup) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		return syncStoolRollup(tx, event.FamilyID, event.Date, rollup)
	})
}

// DeleteWithRollup removes one of the family's events. It returns
// gorm.ErrRecordNotFound when the event does not belong to the family.
func (repo *StoolEventRepository) DeleteWithRollup(familyID uint, eventID uint, rollup func([]models.StoolEvent) models.StoolRollup) (models.StoolEvent, error) {
	var event models.StoolEvent
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND family_id = ?", eventID, familyID).First(&event).Error; err != nil {
			return err
		}
		if err := tx.Delete(&event).Error; err != nil {
			return err
		}
		return syncStoolRollup(tx, familyID, event.Date, rollup)
	})
	if err != nil {
		return models.StoolEvent{}, err
	}
	return event, nil
}

func syncStoolRollup(tx *gorm.DB, familyID uint, day time.Time, rollup func([]models.StoolEvent) models.StoolRollup) error {
	dayStart := day
	dayEnd := dayStart.AddDate(0, 0, 1)

	record, found, err := findDailyRecord(lockForUpdate(tx), familyID, dayStart, dayEnd)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	events, err := listStoolEvents(tx, familyID, dayStart, dayEnd)
	if err != nil {
		return err
	}
	summary := rollup(events)
	return tx.Model(&record).Updates(map[string]any{
		"stool_count":          summary.Count,
		"stool_blood_count":    summary.BloodCount,
		"stool_mucus_count":    summary.MucusCount,
		"stool_tenesmus_count": summary.TenesmusCount,
	}).Error
}

func listStoolEvents(database *gorm.DB, familyID uint, fromStart time.Time, toEnd time.Time) ([]models.StoolEvent, error) {
	events := make([]models.StoolEvent, 0)
	if err := database.
		Where("family_id = ? AND date >= ? AND date < ?", familyID, fromStart, toEnd).
		Order("date ASC, recorded_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
