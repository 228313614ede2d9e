package handlers

import (
	"context"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/gradhouse/gradhouse/internal/store"
	"github.com/gradhouse/gradhouse/internal/templates"
)

// BundlesHandler serves the registered bulk archive list.
func BundlesHandler(bundleStore *store.BundleStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		records, err := bundleStore.GetAll(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading bulk archives")
		}

		page := templates.Bundles(records)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}

// BundleDetailHandler serves one bulk archive record with its submissions.
func BundleDetailHandler(bundleStore *store.BundleStore, submissionStore *store.SubmissionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		sha256 := c.Params("sha256")
		record, err := bundleStore.GetBySHA256(ctx, sha256)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading bulk archive")
		}
		if record == nil {
			return c.Status(fiber.StatusNotFound).SendString("Bulk archive not found")
		}

		submissions, err := submissionStore.GetByBundle(ctx, sha256)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading submissions")
		}

		page := templates.BundleDetail(record, submissions)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}
