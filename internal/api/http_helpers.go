package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/careline/internal/services"
	"go.uber.org/zap"
)

const maxRangeDays = 366

var errInvalidNumber = errors.New("invalid number")

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serviceErrorStatus maps a service error to a response status and message.
// Unknown errors map to 500 with fallback.
func serviceErrorStatus(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, "not found"
	case errors.Is(err, services.ErrNoFamily):
		return fiber.StatusBadRequest, services.ErrNoFamily.Error()
	case errors.Is(err, services.ErrAlreadyInFamily):
		return fiber.StatusConflict, "already in a family"
	case errors.Is(err, services.ErrInvalidInviteCode):
		return fiber.StatusNotFound, "invalid invite code"
	case errors.Is(err, services.ErrPatientExists):
		return fiber.StatusConflict, "family already has a patient"
	case errors.Is(err, services.ErrPhoneTaken):
		return fiber.StatusConflict, "phone already registered"
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, services.ErrCycleVersionConflict):
		return fiber.StatusConflict, "active cycle changed, retry"
	case errors.Is(err, services.ErrInvalidRole):
		return fiber.StatusBadRequest, "invalid role"
	case errors.Is(err, services.ErrWeakPassword):
		return fiber.StatusBadRequest, "password must be at least 6 characters"
	case errors.Is(err, services.ErrInvalidPhone):
		return fiber.StatusBadRequest, "invalid phone"
	case errors.Is(err, services.ErrInvalidFamilyName):
		return fiber.StatusBadRequest, "invalid family name"
	case errors.Is(err, services.ErrInvalidMessage):
		return fiber.StatusBadRequest, "message must be 1-500 characters"
	case errors.Is(err, services.ErrInvalidCycleLength):
		return fiber.StatusBadRequest, "length_days must be between 7 and 42"
	case errors.Is(err, services.ErrInvalidDailyRecordInput):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidStoolTime):
		return fiber.StatusBadRequest, "time must be HH:MM"
	case errors.Is(err, services.ErrInvalidBristolScore):
		return fiber.StatusBadRequest, "bristol must be between 1 and 7"
	default:
		return fiber.StatusInternalServerError, fallback
	}
}

func (handler *Handler) serviceError(c *fiber.Ctx, err error, fallback string) error {
	status, message := serviceErrorStatus(err, fallback)
	if status >= fiber.StatusInternalServerError {
		handler.logger.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
	}
	return apiError(c, status, message)
}

func (handler *Handler) parseDay(raw string) (time.Time, error) {
	return services.ParseDay(strings.TrimSpace(raw), handler.location)
}

// parseDayRange reads ?from&to. Both are required and span at most a year.
func (handler *Handler) parseDayRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := handler.parseDay(c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := handler.parseDay(c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("range end before start")
	}
	if services.DaysBetween(from, to) >= maxRangeDays {
		return time.Time{}, time.Time{}, errors.New("range too long")
	}
	return from, to, nil
}

func parseOptionalIntQuery(c *fiber.Ctx, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errInvalidNumber
	}
	return &value, nil
}

func parseCycleNo(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 1 {
		return 0, errInvalidNumber
	}
	return value, nil
}
