package paystack

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrFeatureUnavailable signals that dedicated accounts are not enabled on
// the provider account at all. Every subsequent provisioning call would
// fail identically, so callers abort the whole run instead of failing each
// beneficiary one by one.
var ErrFeatureUnavailable = errors.New("dedicated account feature unavailable")

// APIError is a non-2xx response from the Paystack API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack: status=%d message=%s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err is a provider rate-limit response.
// Only this error class is retried with backoff.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

func classifyError(statusCode int, message string) error {
	msg := strings.ToLower(message)
	if strings.Contains(msg, "dedicated nuban") && (strings.Contains(msg, "not available") || strings.Contains(msg, "not enabled")) {
		return fmt.Errorf("%w: %s", ErrFeatureUnavailable, message)
	}
	if strings.Contains(msg, "feature is not enabled") {
		return fmt.Errorf("%w: %s", ErrFeatureUnavailable, message)
	}
	return &APIError{StatusCode: statusCode, Message: message}
}
