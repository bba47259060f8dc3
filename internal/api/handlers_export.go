package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportXLSX downloads the records, key stats and report of one cycle.
func (handler *Handler) ExportXLSX(c *fiber.Ctx) error {
	member, _ := currentMembership(c)

	cycleNo, err := parseOptionalIntQuery(c, "cycle_no")
	if err != nil || (cycleNo != nil && *cycleNo < 1) {
		return apiError(c, fiber.StatusBadRequest, "invalid cycle_no")
	}

	content, filename, err := handler.exportService.CycleWorkbook(member.FamilyID, cycleNo, handler.translator(c))
	if err != nil {
		return handler.serviceError(c, err, "failed to export workbook")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(content)
}
