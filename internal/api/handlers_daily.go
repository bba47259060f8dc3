package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/careline/internal/models"
	"github.com/terraincognita07/careline/internal/services"
)

type dailyRecordInput struct {
	Energy       *int     `json:"energy"`
	Nausea       *int     `json:"nausea"`
	Appetite     *int     `json:"appetite"`
	SleepQuality *int     `json:"sleep_quality"`
	Fever        bool     `json:"fever"`
	TempC        *float64 `json:"temp_c"`
	StoolCount   *int     `json:"stool_count"`
	Diarrhea     *int     `json:"diarrhea"`
	Numbness     *bool    `json:"numbness"`
	MouthSore    *bool    `json:"mouth_sore"`
	IsToughDay   bool     `json:"is_tough_day"`
	Note         *string  `json:"note"`
}

func (input dailyRecordInput) toService() services.DailyRecordInput {
	return services.DailyRecordInput{
		Energy:       input.Energy,
		Nausea:       input.Nausea,
		Appetite:     input.Appetite,
		SleepQuality: input.SleepQuality,
		Fever:        input.Fever,
		TempC:        input.TempC,
		StoolCount:   input.StoolCount,
		Diarrhea:     input.Diarrhea,
		Numbness:     input.Numbness,
		MouthSore:    input.MouthSore,
		IsToughDay:   input.IsToughDay,
		Note:         input.Note,
	}
}

func (handler *Handler) UpsertDaily(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	member, _ := currentMembership(c)

	day, err := handler.parseDay(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	var input dailyRecordInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	record, err := handler.dailyService.Upsert(member.FamilyID, user.ID, day, input.toService())
	if err != nil {
		return handler.serviceError(c, err, "failed to save daily record")
	}

	activeCycle, err := handler.activeCycle(member.FamilyID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load cycle")
	}
	return c.JSON(handler.newDailyRecordView(record, activeCycle))
}

func (handler *Handler) DailyRange(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	from, to, err := handler.parseDayRange(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid range")
	}

	records, err := handler.dailyService.Range(member.FamilyID, from, to)
	if err != nil {
		return handler.serviceError(c, err, "failed to load daily records")
	}
	activeCycle, err := handler.activeCycle(member.FamilyID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load cycle")
	}
	return c.JSON(handler.newDailyRecordViews(records, activeCycle))
}

func (handler *Handler) DailyForCycle(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	cycleNo, err := parseCycleNo(c.Params("cycle_no"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid cycle_no")
	}

	records, err := handler.dailyService.ForCycle(member.FamilyID, cycleNo)
	if err != nil {
		return handler.serviceError(c, err, "failed to load daily records")
	}
	activeCycle, err := handler.activeCycle(member.FamilyID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load cycle")
	}
	return c.JSON(handler.newDailyRecordViews(records, activeCycle))
}

// DailyToday returns today's record, or null when nothing was recorded.
func (handler *Handler) DailyToday(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	record, err := handler.dailyService.Today(member.FamilyID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load daily record")
	}
	if record == nil {
		return c.JSON(nil)
	}
	activeCycle, err := handler.activeCycle(member.FamilyID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load cycle")
	}
	return c.JSON(handler.newDailyRecordView(*record, activeCycle))
}

// activeCycle returns the family's active cycle, or nil when there is none.
func (handler *Handler) activeCycle(familyID uint) (*models.Cycle, error) {
	cycle, err := handler.cycleService.Current(familyID)
	if errors.Is(err, services.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}
