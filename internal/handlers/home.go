package handlers

import (
	"context"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/gradhouse/gradhouse/internal/service"
	"github.com/gradhouse/gradhouse/internal/templates"
)

// HomeHandler serves the system overview page.
func HomeHandler(metrics *service.MetricsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		systemMetrics, err := metrics.Calculate(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error calculating metrics")
		}

		page := templates.Home(systemMetrics)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}
