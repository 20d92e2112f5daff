package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/schoolpaydev/schoolpay/internal/pkg/cache"
	"github.com/schoolpaydev/schoolpay/internal/pkg/database"
	"github.com/schoolpaydev/schoolpay/internal/pkg/env"
	"github.com/schoolpaydev/schoolpay/internal/pkg/payments"
	"github.com/schoolpaydev/schoolpay/internal/pkg/paystack"
)

type webhookEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// HandlePaystackWebhook ingests asynchronous payment notifications. The
// event is durably logged before any processing (write-ahead), so a crash
// in the apply step still leaves a record to reconcile. Paystack retries
// non-2xx responses; idempotency makes every re-delivery free.
func HandlePaystackWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("X-Paystack-Signature"))
	secret := env.GetEnv("PAYSTACK_WEBHOOK_SECRET", env.GetEnv("PAYSTACK_SECRET_KEY", ""))

	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_signature"})
	}

	_, _ = cache.Increment("webhook:received")

	// Parse only the envelope fields needed for logging. Verification runs
	// on the untouched raw bytes, never on re-serialized JSON.
	var envelope webhookEnvelope
	_ = json.Unmarshal(rawBody, &envelope)

	svc := payments.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := svc.IngestDelivery(ctx, payments.WebhookEventInput{
		EventType:         envelope.Event,
		ProviderReference: envelope.Data.Reference,
		RawPayload:        string(rawBody),
		SignatureValid:    paystack.VerifyWebhookSignature(rawBody, signature, secret),
	})
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvalidSignature):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
		case payments.IsResolutionError(err):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account_not_resolved", "message": err.Error()})
		default:
			log.Errorf("[Webhook] delivery failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "delivery_failed"})
		}
	}

	switch {
	case result.Duplicate:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	case result.Ignored:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	_, _ = cache.Increment("webhook:applied")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":             true,
		"duplicate":      result.Apply.Duplicate,
		"transaction_id": result.Apply.TransactionID,
		"reference":      result.Apply.Reference,
	})
}
