package logging

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. It reads the request id set by
// the fiber requestid middleware, so register that one first.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// fasthttp reuses the request buffers once the handler returns, and
		// zap cores may keep fields longer than that.
		requestID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		fields := []zap.Field{
			zap.String("request_id", utils.CopyString(requestID)),
			zap.String("method", utils.CopyString(c.Method())),
			zap.String("path", utils.CopyString(c.Path())),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("remote_ip", utils.CopyString(c.IP())),
		}

		switch {
		case err != nil:
			logger.Error("request", append(fields, zap.Error(err))...)
		case status >= fiber.StatusInternalServerError:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
		return err
	}
}
