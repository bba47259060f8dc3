package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/careline/internal/models"
)

const (
	contextUserKey       = "current_user"
	contextMembershipKey = "current_membership"
	contextLanguageKey   = "current_language"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}

func currentMembership(c *fiber.Ctx) (*models.FamilyMember, bool) {
	member, ok := c.Locals(contextMembershipKey).(*models.FamilyMember)
	return member, ok
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return language
}
