package db

import (
	"github.com/terraincognita07/careline/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	database *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{database: database}
}

// Send deactivates the sender's previous active messages and stores the new one.
func (repo *MessageRepository) Send(message *models.FamilyMessage) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FamilyMessage{}).
			Where("family_id = ? AND sender_id = ? AND is_active = ?", message.FamilyID, message.SenderID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		message.IsActive = true
		return tx.Create(message).Error
	})
}

func (repo *MessageRepository) ListActiveFromOthers(familyID uint, viewerID uint, limit int) ([]models.FamilyMessageSummary, error) {
	messages := make([]models.FamilyMessageSummary, 0)
	if err := repo.database.
		Table("family_messages").
		Select("family_messages.id, family_messages.sender_id, users.nickname AS sender_nickname, family_messages.content, family_messages.created_at").
		Joins("LEFT JOIN users ON users.id = family_messages.sender_id").
		Where("family_messages.family_id = ? AND family_messages.is_active = ? AND family_messages.sender_id <> ?", familyID, true, viewerID).
		Order("family_messages.created_at DESC, family_messages.id DESC").
		Limit(limit).
		Scan(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
