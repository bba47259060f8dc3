package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/careline/internal/services"
	"go.uber.org/zap"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	c.Locals(contextUserKey, user)
	return c.Next()
}

// FamilyRequired loads the caller's membership. It must run after AuthRequired.
func (handler *Handler) FamilyRequired(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	member, err := handler.familyService.Membership(user.ID)
	if errors.Is(err, services.ErrNoFamily) {
		return apiError(c, fiber.StatusBadRequest, services.ErrNoFamily.Error())
	}
	if err != nil {
		handler.logger.Error("load membership failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load family")
	}

	c.Locals(contextMembershipKey, &member)
	return c.Next()
}
