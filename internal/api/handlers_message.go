package api

import "github.com/gofiber/fiber/v2"

type messageInput struct {
	Content string `json:"content"`
}

func (handler *Handler) SendMessage(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	member, _ := currentMembership(c)

	var input messageInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	message, err := handler.messageService.Send(member.FamilyID, user.ID, input.Content)
	if err != nil {
		return handler.serviceError(c, err, "failed to send message")
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// ActiveMessages lists the newest active messages from the other members.
func (handler *Handler) ActiveMessages(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	member, _ := currentMembership(c)

	messages, err := handler.messageService.Active(member.FamilyID, user.ID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load messages")
	}
	return c.JSON(messages)
}
