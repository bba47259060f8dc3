package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/careline/internal/services"
)

func (handler *Handler) Summary(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	cycleNo, err := parseOptionalIntQuery(c, "cycle_no")
	if err != nil || (cycleNo != nil && *cycleNo < 1) {
		return apiError(c, fiber.StatusBadRequest, "invalid cycle_no")
	}
	days := services.DefaultSummaryDays
	if value, err := parseOptionalIntQuery(c, "days"); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid days")
	} else if value != nil {
		days = *value
	}
	if days < services.MinSummaryDays || days > services.MaxSummaryDays {
		return apiError(c, fiber.StatusBadRequest, "days must be between 1 and 60")
	}
	mode, err := services.ParseSummaryMode(c.Query("mode"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "mode must be caregiver or patient")
	}

	summary, err := handler.summaryService.Summary(member.FamilyID, cycleNo, days, mode, handler.translator(c))
	if err != nil {
		return handler.serviceError(c, err, "failed to build summary")
	}
	return c.JSON(summary)
}

func (handler *Handler) Calendar(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	year, err := parseOptionalIntQuery(c, "year")
	if err != nil || (year != nil && (*year < 2000 || *year > 2100)) {
		return apiError(c, fiber.StatusBadRequest, "invalid year")
	}
	month, err := parseOptionalIntQuery(c, "month")
	if err != nil || (month != nil && (*month < 1 || *month > 12)) {
		return apiError(c, fiber.StatusBadRequest, "month must be between 1 and 12")
	}

	var selectedYear, selectedMonth int
	if year != nil {
		selectedYear = *year
	}
	if month != nil {
		selectedMonth = *month
	}

	calendar, err := handler.summaryService.Calendar(member.FamilyID, selectedYear, time.Month(selectedMonth))
	if err != nil {
		return handler.serviceError(c, err, "failed to build calendar")
	}
	return c.JSON(calendar)
}
