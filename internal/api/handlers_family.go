package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/skip2/go-qrcode"
)

type createFamilyInput struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type joinFamilyInput struct {
	InviteCode string `json:"invite_code"`
	Role       string `json:"role"`
}

func (handler *Handler) CreateFamily(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input createFamilyInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid input")
		}
	}

	overview, err := handler.familyService.Create(user.ID, input.Name, input.Role)
	if err != nil {
		return handler.serviceError(c, err, "failed to create family")
	}
	return c.Status(fiber.StatusCreated).JSON(overview)
}

func (handler *Handler) JoinFamily(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input joinFamilyInput
	if err := c.BodyParser(&input); err != nil || input.InviteCode == "" {
		return apiError(c, fiber.StatusBadRequest, "invite_code is required")
	}

	overview, err := handler.familyService.Join(user.ID, input.InviteCode, input.Role)
	if err != nil {
		return handler.serviceError(c, err, "failed to join family")
	}
	return c.JSON(overview)
}

func (handler *Handler) MyFamily(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	overview, err := handler.familyService.Overview(user.ID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load family")
	}
	return c.JSON(overview)
}

// InviteQR renders the family's invite code as a PNG QR code.
func (handler *Handler) InviteQR(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	overview, err := handler.familyService.Overview(user.ID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load family")
	}

	png, err := qrcode.Encode(overview.InviteCode, qrcode.Medium, inviteQRSize)
	if err != nil {
		return handler.serviceError(c, err, "failed to render invite code")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(png)
}
