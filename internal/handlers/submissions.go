package handlers

import (
	"context"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/gradhouse/gradhouse/internal/store"
	"github.com/gradhouse/gradhouse/internal/templates"
)

// SubmissionsHandler serves the registered submission list.
func SubmissionsHandler(submissionStore *store.SubmissionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		entries, err := submissionStore.GetAll(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading submissions")
		}

		page := templates.Submissions(entries)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}

// SubmissionDetailHandler serves one submission record.
func SubmissionDetailHandler(submissionStore *store.SubmissionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		sha256 := c.Params("sha256")
		entry, err := submissionStore.GetBySHA256(ctx, sha256)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading submission")
		}
		if entry == nil {
			return c.Status(fiber.StatusNotFound).SendString("Submission not found")
		}

		page := templates.SubmissionDetail(entry)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}
