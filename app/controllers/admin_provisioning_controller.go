package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/schoolpaydev/schoolpay/internal/pkg/cache"
	"github.com/schoolpaydev/schoolpay/internal/pkg/database"
	"github.com/schoolpaydev/schoolpay/internal/pkg/paystack"
	"github.com/schoolpaydev/schoolpay/internal/pkg/provisioning"
)

const provisioningLockName = "provisioning_run"

// HandleProvisioningRun triggers the bulk virtual-account workflow. A
// Redis lock keeps concurrent runs out; the run itself is sequential and
// re-runnable, so a crashed run just gets triggered again.
func HandleProvisioningRun(c *fiber.Ctx) error {
	acquired, err := cache.AcquireLock(provisioningLockName, 30*time.Minute)
	if err != nil {
		log.Errorf("[Provisioning] lock error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lock_unavailable"})
	}
	if !acquired {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "run_in_progress"})
	}
	defer func() {
		if err := cache.ReleaseLock(provisioningLockName); err != nil {
			log.Warnf("[Provisioning] releasing lock failed: %v", err)
		}
	}()

	orch := provisioning.NewOrchestrator(
		provisioning.NewRepository(database.GetDB()),
		paystack.NewClientFromEnv(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Minute)
	defer cancel()

	result, err := orch.ProvisionAll(ctx)
	if err != nil {
		if errors.Is(err, paystack.ErrFeatureUnavailable) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   "feature_unavailable",
				"message": err.Error(),
				"result":  result,
			})
		}
		if result != nil {
			// Partial run (timeout or cancellation); the summary still tells
			// the operator where it stopped.
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": result, "aborted": err.Error()})
		}
		log.Errorf("[Provisioning] run failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "provisioning_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": result})
}
