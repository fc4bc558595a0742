package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/metrics"
)

func RequestMetrics(m *metrics.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.CounterRequests.WithLabelValues(c.Method(), strconv.Itoa(status)).Inc()
		m.HistRequestDuration.WithLabelValues(c.Method()).Observe(time.Since(started).Seconds())
		return err
	}
}
