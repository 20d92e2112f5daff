package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/schoolpaydev/schoolpay/internal/pkg/database"
	"github.com/schoolpaydev/schoolpay/internal/pkg/importer"
)

// HandleImportRun processes all pending staging rows into parent users,
// students and wallets.
func HandleImportRun(c *fiber.Ctx) error {
	im := importer.NewImporter(importer.NewRepository(database.GetDB()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := im.ProcessPending(ctx)
	if err != nil {
		if result != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": result, "aborted": err.Error()})
		}
		log.Errorf("[Import] run failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "import_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": result})
}

// HandleImportResetErrors resets error rows to pending for retry.
func HandleImportResetErrors(c *fiber.Ctx) error {
	im := importer.NewImporter(importer.NewRepository(database.GetDB()))

	reset, err := im.ResetErrors(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reset_failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"reset": reset})
}
