package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/schoolpaydev/schoolpay/app/controllers"
	"github.com/schoolpaydev/schoolpay/internal/pkg/cache"
	"github.com/schoolpaydev/schoolpay/internal/pkg/env"
	"github.com/schoolpaydev/schoolpay/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage:    newLimiterStorage(),
	}))

	v1 := api.Group("/v1")
	v1.Get("/ping", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"message": "pong"})
	})

	// Provider callbacks authenticate through the signature header, not an
	// API key.
	v1.Post("/webhooks/paystack", controllers.HandlePaystackWebhook)

	authed := v1.Group("", middleware.APIKeyAuthMiddleware())
	authed.Get("/students", controllers.HandleListMyStudents)
	authed.Get("/wallets/:studentID", controllers.HandleGetWallet)

	admin := authed.Group("/admin", middleware.RequireAdminMiddleware())
	admin.Get("/stats", controllers.HandleAdminStats)
	admin.Post("/provisioning/run", controllers.HandleProvisioningRun)
	admin.Post("/simulate-payment", controllers.HandleSimulatePayment)
	admin.Get("/reconciliation", controllers.HandleReconciliationReport)
	admin.Get("/webhook-events", controllers.HandleListWebhookEvents)
	admin.Post("/webhook-events/:id/reprocess", controllers.HandleReprocessWebhookEvent)
	admin.Post("/imports/run", controllers.HandleImportRun)
	admin.Post("/imports/reset-errors", controllers.HandleImportResetErrors)
}

// newLimiterStorage backs the rate limiter with Redis so the limit holds
// across instances. Falls back to the limiter's in-memory store when the
// cache is not reachable at startup.
func newLimiterStorage() fiber.Storage {
	cacheClient := cache.GetClient()
	if cacheClient == nil {
		return nil
	}
	host := "localhost"
	port := 6379
	if h, p, err := net.SplitHostPort(cacheClient.Options().Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: 1, // separate database for limiter state (cache uses DB 0)
		Reset:    false,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
