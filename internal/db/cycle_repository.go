package db

import (
	"github.com/terraincognita07/careline/internal/models"
	"gorm.io/gorm"
)

type CycleRepository struct {
	database *gorm.DB
}

func NewCycleRepository(database *gorm.DB) *CycleRepository {
	return &CycleRepository{database: database}
}

func (repo *CycleRepository) FindActive(familyID uint) (models.Cycle, bool, error) {
	var cycle models.Cycle
	result := repo.database.
		Where("family_id = ? AND is_active = ?", familyID, true).
		Order("id DESC").
		Limit(1).
		Find(&cycle)
	if result.Error != nil {
		return models.Cycle{}, false, result.Error
	}
	return cycle, result.RowsAffected > 0, nil
}

func (repo *CycleRepository) FindByNumber(familyID uint, cycleNo int) (models.Cycle, bool, error) {
	var cycle models.Cycle
	result := repo.database.
		Where("family_id = ? AND cycle_no = ?", familyID, cycleNo).
		Limit(1).
		Find(&cycle)
	if result.Error != nil {
		return models.Cycle{}, false, result.Error
	}
	return cycle, result.RowsAffected > 0, nil
}

func (repo *CycleRepository) ListByFamily(familyID uint) ([]models.Cycle, error) {
	cycles := make([]models.Cycle, 0)
	if err := repo.database.Where("family_id = ?", familyID).Order("cycle_no ASC").Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

func (repo *CycleRepository) ActiveVersion(familyID uint) (int, error) {
	var family models.Family
	if err := repo.database.Select("id", "active_cycle_version").First(&family, familyID).Error; err != nil {
		return 0, err
	}
	return family.ActiveCycleVersion, nil
}

// Activate makes target the only active cycle of its family. An existing
// cycle with the same number is updated in place. The family's active cycle
// version must still equal expectedVersion; it is incremented on success.
func (repo *CycleRepository) Activate(target *models.Cycle, expectedVersion int) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Cycle{}).
			Where("family_id = ? AND is_active = ?", target.FamilyID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}

		var existing models.Cycle
		result := tx.Where("family_id = ? AND cycle_no = ?", target.FamilyID, target.CycleNo).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}

		target.IsActive = true
		if result.RowsAffected > 0 {
			target.ID = existing.ID
			target.CreatedAt = existing.CreatedAt
			if err := tx.Model(&existing).Updates(map[string]any{
				"start_date":  target.StartDate,
				"length_days": target.LengthDays,
				"regimen":     target.Regimen,
				"is_active":   true,
			}).Error; err != nil {
				return err
			}
		} else if err := tx.Create(target).Error; err != nil {
			return err
		}

		return bumpActiveCycleVersion(tx, target.FamilyID, expectedVersion)
	})
}

// Deactivate clears the active flag of one cycle and bumps the version.
func (repo *CycleRepository) Deactivate(familyID uint, cycleNo int, expectedVersion int) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Cycle{}).
			Where("family_id = ? AND cycle_no = ?", familyID, cycleNo).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return bumpActiveCycleVersion(tx, familyID, expectedVersion)
	})
}

func (repo *CycleRepository) UpdateFields(familyID uint, cycleNo int, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return repo.database.Model(&models.Cycle{}).
		Where("family_id = ? AND cycle_no = ?", familyID, cycleNo).
		Updates(updates).Error
}

func bumpActiveCycleVersion(tx *gorm.DB, familyID uint, expectedVersion int) error {
	result := tx.Model(&models.Family{}).
		Where("id = ? AND active_cycle_version = ?", familyID, expectedVersion).
		Update("active_cycle_version", expectedVersion+1)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrActiveCycleVersionConflict
	}
	return nil
}
