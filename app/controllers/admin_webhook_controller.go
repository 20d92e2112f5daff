package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/schoolpaydev/schoolpay/app/repository"
	"github.com/schoolpaydev/schoolpay/internal/pkg/database"
	"github.com/schoolpaydev/schoolpay/internal/pkg/payments"
)

// HandleListWebhookEvents is the operator log view over the event log.
// Supports ?processed=true|false and ?limit=N.
func HandleListWebhookEvents(c *fiber.Ctx) error {
	var processed *bool
	if raw := c.Query("processed"); raw != "" {
		v := raw == "true" || raw == "1"
		processed = &v
	}
	limit := c.QueryInt("limit", 100)

	repo := repository.GetGlobalFactory().GetWebhookEventRepository()
	events, err := repo.List(processed, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "list_failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"events": events, "count": len(events)})
}

// HandleReprocessWebhookEvent re-runs a stored event through the apply
// pipeline. Idempotency makes this safe even when the original attempt
// partially succeeded.
func HandleReprocessWebhookEvent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_event_id"})
	}

	svc := payments.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := svc.ReprocessEvent(ctx, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event_not_found"})
		case errors.Is(err, payments.ErrInvalidSignature):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "invalid_signature", "message": "events with invalid signatures cannot be reprocessed"})
		case errors.Is(err, payments.ErrUnsupportedEvent):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unsupported_event_type", "message": err.Error()})
		case payments.IsResolutionError(err):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account_not_resolved", "message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reprocess_failed", "message": err.Error()})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":             true,
		"duplicate":      result.Duplicate,
		"transaction_id": result.TransactionID,
		"reference":      result.Reference,
	})
}
