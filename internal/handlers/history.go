package handlers

import (
	"context"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/gradhouse/gradhouse/internal/service"
	"github.com/gradhouse/gradhouse/internal/templates"
)

// HistoryHandler serves the monthly manifest statistics.
func HistoryHandler(metrics *service.MetricsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		rows, err := metrics.MonthlyStatistics(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading statistics")
		}

		page := templates.History(rows)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}
