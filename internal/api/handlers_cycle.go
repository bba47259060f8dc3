package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/careline/internal/services"
)

type startCycleInput struct {
	CycleNo    int     `json:"cycle_no"`
	StartDate  string  `json:"start_date"`
	LengthDays int     `json:"length_days"`
	Regimen    *string `json:"regimen"`
}

type updateCycleInput struct {
	StartDate  *string `json:"start_date"`
	LengthDays *int    `json:"length_days"`
	Regimen    *string `json:"regimen"`
	IsActive   *bool   `json:"is_active"`
}

// StartCycle creates or re-activates a cycle. Any other active cycle of the
// family is deactivated in the same transaction.
func (handler *Handler) StartCycle(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	var input startCycleInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if input.CycleNo < 1 {
		return apiError(c, fiber.StatusBadRequest, "cycle_no must be at least 1")
	}

	startDate := handler.clock.Today()
	if strings.TrimSpace(input.StartDate) != "" {
		parsed, err := handler.parseDay(input.StartDate)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid start_date")
		}
		startDate = parsed
	}

	cycle, err := handler.cycleService.Start(member.FamilyID, services.CycleInput{
		CycleNo:    input.CycleNo,
		StartDate:  startDate,
		LengthDays: input.LengthDays,
		Regimen:    input.Regimen,
	})
	if err != nil {
		return handler.serviceError(c, err, "failed to start cycle")
	}
	return c.Status(fiber.StatusCreated).JSON(handler.newCycleView(cycle, true))
}

func (handler *Handler) CurrentCycle(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	cycle, err := handler.cycleService.Current(member.FamilyID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load cycle")
	}
	return c.JSON(handler.newCycleView(cycle, true))
}

func (handler *Handler) ListCycles(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	cycles, err := handler.cycleService.List(member.FamilyID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load cycles")
	}
	views := make([]cycleView, 0, len(cycles))
	for _, cycle := range cycles {
		views = append(views, handler.newCycleView(cycle, false))
	}
	return c.JSON(views)
}

func (handler *Handler) UpdateCycle(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	cycleNo, err := parseCycleNo(c.Params("cycle_no"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid cycle_no")
	}

	var input updateCycleInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	update := services.CycleUpdate{
		LengthDays: input.LengthDays,
		Regimen:    input.Regimen,
		IsActive:   input.IsActive,
	}
	if input.StartDate != nil {
		var startDate time.Time
		startDate, err = handler.parseDay(*input.StartDate)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid start_date")
		}
		update.StartDate = &startDate
	}

	cycle, err := handler.cycleService.Update(member.FamilyID, cycleNo, update)
	if err != nil {
		return handler.serviceError(c, err, "failed to update cycle")
	}
	return c.JSON(handler.newCycleView(cycle, true))
}
