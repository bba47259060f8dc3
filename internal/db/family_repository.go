package db

import (
	"time"

	"github.com/terraincognita07/careline/internal/models"
	"gorm.io/gorm"
)

type FamilyRepository struct {
	database *gorm.DB
}

func NewFamilyRepository(database *gorm.DB) *FamilyRepository {
	return &FamilyRepository{database: database}
}

func (repo *FamilyRepository) FindByID(familyID uint) (models.Family, error) {
	var family models.Family
	if err := repo.database.First(&family, familyID).Error; err != nil {
		return models.Family{}, err
	}
	return family, nil
}

func (repo *FamilyRepository) FindByInviteCode(code string) (models.Family, bool, error) {
	var family models.Family
	result := repo.database.Where("invite_code = ?", code).Limit(1).Find(&family)
	if result.Error != nil {
		return models.Family{}, false, result.Error
	}
	return family, result.RowsAffected > 0, nil
}

func (repo *FamilyRepository) InviteCodeExists(code string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Family{}).Where("invite_code = ?", code).Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// FindMembershipByUser returns the user's first membership.
func (repo *FamilyRepository) FindMembershipByUser(userID uint) (models.FamilyMember, bool, error) {
	var member models.FamilyMember
	result := repo.database.Where("user_id = ?", userID).Order("id ASC").Limit(1).Find(&member)
	if result.Error != nil {
		return models.FamilyMember{}, false, result.Error
	}
	return member, result.RowsAffected > 0, nil
}

func (repo *FamilyRepository) CreateWithMember(family *models.Family, role string, joinedAt time.Time) (models.FamilyMember, error) {
	member := models.FamilyMember{}
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(family).Error; err != nil {
			return err
		}
		member = models.FamilyMember{
			UserID:   family.CreatedBy,
			FamilyID: family.ID,
			Role:     role,
			JoinedAt: joinedAt,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return models.FamilyMember{}, err
	}
	return member, nil
}

func (repo *FamilyRepository) AddMember(member *models.FamilyMember) error {
	return repo.database.Create(member).Error
}

func (repo *FamilyRepository) CountMembersWithRole(familyID uint, role string) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.FamilyMember{}).
		Where("family_id = ? AND role = ?", familyID, role).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *FamilyRepository) ListMembers(familyID uint) ([]models.FamilyMemberSummary, error) {
	members := make([]models.FamilyMemberSummary, 0)
	if err := repo.database.
		Table("family_members").
		Select("family_members.user_id, users.nickname, family_members.role, family_members.joined_at").
		Joins("LEFT JOIN users ON users.id = family_members.user_id").
		Where("family_members.family_id = ?", familyID).
		Order("family_members.id ASC").
		Scan(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListIDsWithActiveCycle returns families that currently have an active cycle.
func (repo *FamilyRepository) ListIDsWithActiveCycle() ([]uint, error) {
	ids := make([]uint, 0)
	if err := repo.database.Model(&models.Cycle{}).
		Distinct("family_id").
		Where("is_active = ?", true).
		Order("family_id ASC").
		Pluck("family_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
