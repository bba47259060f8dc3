package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/terraincognita07/careline/internal/models"
)

type MessageRepository interface {
	Send(message *models.FamilyMessage) error
	ListActiveFromOthers(familyID uint, viewerID uint, limit int) ([]models.FamilyMessageSummary, error)
}

type MessageService struct {
	messages MessageRepository
	clock    Clock
}

func NewMessageService(messages MessageRepository, clock Clock) *MessageService {
	return &MessageService{messages: messages, clock: clock}
}

// Send posts content as the sender's only active message.
func (service *MessageService) Send(familyID uint, senderID uint, content string) (models.FamilyMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > MaxMessageLength {
		return models.FamilyMessage{}, ErrInvalidMessage
	}

	message := models.FamilyMessage{
		FamilyID:  familyID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: service.clock.Now(),
	}
	if err := service.messages.Send(&message); err != nil {
		return models.FamilyMessage{}, fmt.Errorf("send message: %w", err)
	}
	return message, nil
}

// Active lists the newest active messages written by other members.
func (service *MessageService) Active(familyID uint, viewerID uint) ([]models.FamilyMessageSummary, error) {
	return service.messages.ListActiveFromOthers(familyID, viewerID, activeMessagesToShow)
}
