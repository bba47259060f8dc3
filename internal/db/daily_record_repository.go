package db

import (
	"time"

	"github.com/terraincognita07/careline/internal/models"
	"gorm.io/gorm"
)

type DailyRecordRepository struct {
	database *gorm.DB
}

func NewDailyRecordRepository(database *gorm.DB) *DailyRecordRepository {
	return &DailyRecordRepository{database: database}
}

func (repo *DailyRecordRepository) ListByFamilyRange(familyID uint, fromStart time.Time, toEnd time.Time) ([]models.DailyRecord, error) {
	records := make([]models.DailyRecord, 0)
	if err := repo.database.
		Where("family_id = ? AND date >= ? AND date < ?", familyID, fromStart, toEnd).
		Order("date ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *DailyRecordRepository) ListByCycle(familyID uint, cycleNo int) ([]models.DailyRecord, error) {
	records := make([]models.DailyRecord, 0)
	if err := repo.database.
		Where("family_id = ? AND cycle_no = ?", familyID, cycleNo).
		Order("date ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *DailyRecordRepository) FindByFamilyAndDayRange(familyID uint, dayStart time.Time, dayEnd time.Time) (models.DailyRecord, bool, error) {
	return findDailyRecord(repo.database, familyID, dayStart, dayEnd)
}

// Upsert loads the day's record, the previous day's record and the day's
// stool events inside one transaction, and persists what merge returns.
// existing and previous are nil when there is no record for that day.
func (repo *DailyRecordRepository) Upsert(
	familyID uint,
	dayStart time.Time,
	merge func(existing *models.DailyRecord, previous *models.DailyRecord, events []models.StoolEvent) models.DailyRecord,
) (models.DailyRecord, error) {
	dayEnd := dayStart.AddDate(0, 0, 1)
	previousStart := dayStart.AddDate(0, 0, -1)

	var saved models.DailyRecord
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		existing, found, err := findDailyRecord(lockForUpdate(tx), familyID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		previous, previousFound, err := findDailyRecord(tx, familyID, previousStart, dayStart)
		if err != nil {
			return err
		}
		events, err := listStoolEvents(tx, familyID, dayStart, dayEnd)
		if err != nil {
			return err
		}

		var existingRef, previousRef *models.DailyRecord
		if found {
			existingRef = &existing
		}
		if previousFound {
			previousRef = &previous
		}

		saved = merge(existingRef, previousRef, events)
		saved.FamilyID = familyID
		if found {
			saved.ID = existing.ID
			saved.CreatedAt = existing.CreatedAt
			return tx.Save(&saved).Error
		}
		saved.ID = 0
		return tx.Create(&saved).Error
	})
	if err != nil {
		return models.DailyRecord{}, err
	}
	return saved, nil
}

func findDailyRecord(database *gorm.DB, familyID uint, dayStart time.Time, dayEnd time.Time) (models.DailyRecord, bool, error) {
	entry := models.DailyRecord{}
	result := database.
		Where("family_id = ? AND date >= ? AND date < ?", familyID, dayStart, dayEnd).
		Order("date DESC, id DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.DailyRecord{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.DailyRecord{}, false, nil
	}
	return entry, true, nil
}
