package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/careline/internal/services"
)

type stoolEventInput struct {
	Date     *string `json:"date"`
	Time     *string `json:"time"`
	Bristol  *int    `json:"bristol"`
	Blood    bool    `json:"blood"`
	Mucus    bool    `json:"mucus"`
	Tenesmus bool    `json:"tenesmus"`
}

func (handler *Handler) RecordStool(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	var input stoolEventInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	serviceInput := services.StoolEventInput{
		Time:     input.Time,
		Bristol:  input.Bristol,
		Blood:    input.Blood,
		Mucus:    input.Mucus,
		Tenesmus: input.Tenesmus,
	}
	if input.Date != nil && *input.Date != "" {
		day, err := handler.parseDay(*input.Date)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid date")
		}
		serviceInput.Date = &day
	}

	event, err := handler.stoolService.Record(member.FamilyID, serviceInput)
	if err != nil {
		return handler.serviceError(c, err, "failed to record stool event")
	}
	return c.Status(fiber.StatusCreated).JSON(handler.newStoolEventView(event))
}

func (handler *Handler) StoolToday(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	summary, err := handler.stoolService.Today(member.FamilyID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load stool events")
	}
	return c.JSON(handler.newStoolSummaryView(summary))
}

func (handler *Handler) StoolRange(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	from, to, err := handler.parseDayRange(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid range")
	}

	summaries, err := handler.stoolService.Range(member.FamilyID, from, to)
	if err != nil {
		return handler.serviceError(c, err, "failed to load stool events")
	}
	views := make([]stoolSummaryView, 0, len(summaries))
	for _, summary := range summaries {
		views = append(views, handler.newStoolSummaryView(summary))
	}
	return c.JSON(views)
}

func (handler *Handler) DeleteStool(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	eventID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || eventID == 0 {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	if err := handler.stoolService.Delete(member.FamilyID, uint(eventID)); err != nil {
		return handler.serviceError(c, err, "failed to delete stool event")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
