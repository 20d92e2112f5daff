package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/schoolpaydev/schoolpay/internal/pkg/database"
	"github.com/schoolpaydev/schoolpay/internal/pkg/payments"
)

type simulatePaymentRequest struct {
	StudentID uint  `json:"student_id"`
	Amount    int64 `json:"amount"` // minor currency units (kobo)
}

// HandleSimulatePayment synthesizes a charge.success event for a student
// and runs it through the live ingestion path. Staging/test aid only, but
// it exercises exactly the code a real webhook takes.
func HandleSimulatePayment(c *fiber.Ctx) error {
	var req simulatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body", "message": err.Error()})
	}
	if req.StudentID == 0 || req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body", "message": "student_id and a positive amount are required"})
	}

	svc := payments.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := svc.SimulatePayment(ctx, req.StudentID, req.Amount)
	if err != nil {
		if payments.IsResolutionError(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "simulation_failed", "message": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
