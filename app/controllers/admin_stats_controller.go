package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/schoolpaydev/schoolpay/app/repository"
	"github.com/schoolpaydev/schoolpay/internal/pkg/cache"
)

// HandleAdminStats returns portal-wide totals plus the webhook delivery
// counters. Counters live in Redis and reset with it; totals come from
// the database.
func HandleAdminStats(c *fiber.Ctx) error {
	f := repository.GetGlobalFactory()

	users, err := f.GetUserRepository().Count()
	if err != nil {
		log.Errorf("[Stats] user count failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}
	students, err := f.GetStudentRepository().Count()
	if err != nil {
		log.Errorf("[Stats] student count failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}
	events, err := f.GetWebhookEventRepository().Count()
	if err != nil {
		log.Errorf("[Stats] event count failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}

	received, _ := cache.Get("webhook:received")
	applied, _ := cache.Get("webhook:applied")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"users":            users,
		"students":         students,
		"webhook_events":   events,
		"webhook_received": received,
		"webhook_applied":  applied,
	})
}
