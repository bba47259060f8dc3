package logging

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerFormats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		logger, err := NewLogger("debug", format, "careline-test")
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestRequestLoggerRecordsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "teapot")
	})

	response, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, response.StatusCode)

	response, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, response.StatusCode)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "/ok", first["path"])
	assert.Equal(t, "GET", first["method"])
	assert.Equal(t, int64(fiber.StatusNoContent), first["status"])
	assert.NotEmpty(t, first["request_id"])

	second := entries[1]
	assert.Equal(t, zapcore.ErrorLevel, second.Level)
	assert.Equal(t, int64(fiber.StatusTeapot), second.ContextMap()["status"])
	assert.Equal(t, "/boom", second.ContextMap()["path"])
	assert.NotEqual(t, first["request_id"], second.ContextMap()["request_id"])
}
