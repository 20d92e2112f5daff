package paystack

import (
	"strings"
	"testing"
)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"event":"charge.success","data":{"reference":"REF_001","amount":500000}}`)
	secret := "sk_test_webhook"

	sig := SignPayload(payload, secret)
	if !VerifyWebhookSignature(payload, sig, secret) {
		t.Fatalf("expected signature to validate")
	}

	// Header casing must not matter.
	if !VerifyWebhookSignature(payload, strings.ToUpper(sig), secret) {
		t.Fatalf("expected uppercase hex signature to validate")
	}
	if !VerifyWebhookSignature(payload, "  "+sig+"\n", secret) {
		t.Fatalf("expected surrounding whitespace to be tolerated")
	}
}

func TestVerifyWebhookSignature_TamperedPayload(t *testing.T) {
	payload := []byte(`{"event":"charge.success","data":{"amount":500000}}`)
	secret := "sk_test_webhook"
	sig := SignPayload(payload, secret)

	tampered := []byte(`{"event":"charge.success","data":{"amount":999999}}`)
	if VerifyWebhookSignature(tampered, sig, secret) {
		t.Fatalf("expected tampered payload to fail verification")
	}
}

func TestVerifyWebhookSignature_WrongSecret(t *testing.T) {
	payload := []byte(`{"event":"charge.success"}`)
	sig := SignPayload(payload, "sk_test_one")
	if VerifyWebhookSignature(payload, sig, "sk_test_other") {
		t.Fatalf("expected signature under wrong secret to fail")
	}
}

func TestVerifyWebhookSignature_Invalid(t *testing.T) {
	payload := []byte(`{}`)
	secret := "sk_test_webhook"

	if VerifyWebhookSignature(payload, "", secret) {
		t.Fatalf("expected empty signature to fail")
	}
	if VerifyWebhookSignature(payload, SignPayload(payload, secret), "") {
		t.Fatalf("expected empty secret to fail")
	}
	if VerifyWebhookSignature(payload, "not-hex-at-all", secret) {
		t.Fatalf("expected non-hex signature to fail")
	}
	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected truncated signature to fail")
	}
}
