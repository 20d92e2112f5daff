package controllers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlePaystackWebhook_MissingSignature(t *testing.T) {
	app := fiber.New()
	app.Post("/api/v1/webhooks/paystack", HandlePaystackWebhook)

	body := []byte(`{"event":"charge.success","data":{"reference":"REF_001"}}`)
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/webhooks/paystack", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandlePaystackWebhook_WhitespaceSignatureRejected(t *testing.T) {
	app := fiber.New()
	app.Post("/api/v1/webhooks/paystack", HandlePaystackWebhook)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/webhooks/paystack", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Paystack-Signature", "   ")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
