package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/careline/internal/services"
)

// LanguageMiddleware picks the report language from ?lang or Accept-Language.
func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	language := handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	if explicit := c.Query("lang"); explicit != "" {
		language = handler.i18n.NormalizeLanguage(explicit)
	}
	c.Locals(contextLanguageKey, language)
	c.Set(fiber.HeaderContentLanguage, language)
	return c.Next()
}

func (handler *Handler) translator(c *fiber.Ctx) services.Translator {
	language := currentLanguage(c)
	if language == "" {
		language = handler.i18n.DefaultLanguage()
	}
	return handler.i18n.Translator(language)
}
