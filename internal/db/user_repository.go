package db

import (
	"github.com/terraincognita07/careline/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByPhone(phone string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("phone = ?", phone).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByOpenID(openID string) (models.User, bool, error) {
	var user models.User
	result := repo.database.Where("openid = ?", openID).Limit(1).Find(&user)
	if result.Error != nil {
		return models.User{}, false, result.Error
	}
	return user, result.RowsAffected > 0, nil
}

func (repo *UserRepository) ExistsByPhone(phone string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).Where("phone = ?", phone).Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

func (repo *UserRepository) UpdatePassword(userID uint, passwordHash string) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error
}
