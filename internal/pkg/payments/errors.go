package payments

import (
	"errors"
	"fmt"
)

// ErrMissingSignature is returned when the webhook request carries no
// signature header at all.
var ErrMissingSignature = errors.New("missing webhook signature")

// ErrInvalidSignature is returned when the signature does not match the
// raw body.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ErrUnsupportedEvent is returned when an operator tries to reprocess an
// event type the charge pipeline does not handle.
var ErrUnsupportedEvent = errors.New("unsupported event type for reprocessing")

// ErrDuplicateReference is the repository-level signal that a transaction
// insert lost the uniqueness race on provider_reference. Callers treat it
// as a success-equivalent idempotent outcome, never as a failure.
var ErrDuplicateReference = errors.New("duplicate provider reference")

// ResolutionError reports an unresolvable payment destination: an unknown
// or inactive account number, or a student without a wallet. These are not
// retried automatically; they require operator reconciliation.
type ResolutionError struct {
	Resource string
	Key      string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s not found for %q", e.Resource, e.Key)
}

// IsResolutionError reports whether err is a ResolutionError.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}
