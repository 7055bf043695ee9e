package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cashbox-api/pkg/metrics"
)

// MetricsMiddleware cuenta requests por ruta registrada (no por URL, para no abrir cardinalidad).
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.RecordHTTPRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
