package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api", handler.LanguageMiddleware)

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/wechat", handler.WechatLogin)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	family := api.Group("/family", handler.AuthRequired)
	family.Post("/create", handler.CreateFamily)
	family.Post("/join", handler.JoinFamily)
	family.Get("/me", handler.MyFamily)
	family.Get("/invite-qr", handler.InviteQR)

	cycle := api.Group("/cycle", handler.AuthRequired, handler.FamilyRequired)
	cycle.Post("", handler.StartCycle)
	cycle.Get("/current", handler.CurrentCycle)
	cycle.Get("/list", handler.ListCycles)
	cycle.Patch("/:cycle_no", handler.UpdateCycle)

	daily := api.Group("/daily", handler.AuthRequired, handler.FamilyRequired)
	daily.Get("/range", handler.DailyRange)
	daily.Get("/today", handler.DailyToday)
	daily.Get("/cycle/:cycle_no", handler.DailyForCycle)
	daily.Put("/:date", handler.UpsertDaily)

	stool := api.Group("/stool", handler.AuthRequired, handler.FamilyRequired)
	stool.Post("", handler.RecordStool)
	stool.Get("/today", handler.StoolToday)
	stool.Get("/range", handler.StoolRange)
	stool.Delete("/:id", handler.DeleteStool)

	summary := api.Group("/summary", handler.AuthRequired, handler.FamilyRequired)
	summary.Get("", handler.Summary)
	summary.Get("/calendar", handler.Calendar)

	message := api.Group("/message", handler.AuthRequired, handler.FamilyRequired)
	message.Post("", handler.SendMessage)
	message.Get("/active", handler.ActiveMessages)

	export := api.Group("/export", handler.AuthRequired, handler.FamilyRequired)
	export.Get("/xlsx", handler.ExportXLSX)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// NotFound answers unmatched routes with the JSON error shape.
func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}
