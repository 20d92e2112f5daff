package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/schoolpaydev/schoolpay/internal/pkg/database"
	"github.com/schoolpaydev/schoolpay/internal/pkg/reconcile"
)

// HandleReconciliationReport runs the three drift checks over the event
// log and ledger and returns findings with proposed fixes. Read-only;
// nothing is mutated no matter what the report finds.
func HandleReconciliationReport(c *fiber.Ctx) error {
	reporter := reconcile.NewReporter(reconcile.NewSource(database.GetDB()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := reporter.Run(ctx)
	if err != nil {
		log.Errorf("[Reconcile] report failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconciliation_failed"})
	}

	if report.Critical {
		log.Errorf("[Reconcile] CRITICAL: %d duplicate provider references found", len(report.Duplicates))
	}
	return c.Status(fiber.StatusOK).JSON(report)
}
