package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/careline/internal/models"
	"github.com/terraincognita07/careline/internal/services"
)

type registerInput struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type loginInput struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type wechatLoginInput struct {
	Code string `json:"code"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	var input registerInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.Register(input.Phone, input.Password, input.Nickname)
	if err != nil {
		return handler.serviceError(c, err, "failed to create account")
	}
	return handler.sendToken(c, fiber.StatusCreated, user)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var input loginInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	key := loginLimiterKey(c, input.Phone)
	now := handler.clock.Now()
	if handler.loginLimiter.blocked(key, now) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	user, err := handler.authService.Login(input.Phone, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			handler.loginLimiter.recordFailure(key, now)
		}
		return handler.serviceError(c, err, "failed to login")
	}
	handler.loginLimiter.clear(key)
	return handler.sendToken(c, fiber.StatusOK, user)
}

// WechatLogin signs in with a mini-program login code.
func (handler *Handler) WechatLogin(c *fiber.Ctx) error {
	var input wechatLoginInput
	if err := c.BodyParser(&input); err != nil || strings.TrimSpace(input.Code) == "" {
		return apiError(c, fiber.StatusBadRequest, "code is required")
	}

	user, err := handler.authService.WechatLogin(input.Code)
	if err != nil {
		return handler.serviceError(c, err, "failed to login")
	}
	return handler.sendToken(c, fiber.StatusOK, user)
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(user)
}

func (handler *Handler) sendToken(c *fiber.Ctx, status int, user models.User) error {
	token, err := handler.buildToken(user)
	if err != nil {
		return handler.serviceError(c, err, "failed to issue token")
	}
	return c.Status(status).JSON(authResponse{Token: token, User: user})
}
