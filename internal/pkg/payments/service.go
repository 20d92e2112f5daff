package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolpaydev/schoolpay/app/models"
	"github.com/schoolpaydev/schoolpay/internal/pkg/paystack"
	"gorm.io/gorm"
)

// Service is the webhook ingestion core: write-ahead event logging,
// account resolution and the idempotent balance-changing apply step.
type Service struct {
	repo Repository
}

// NewService creates a payments service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a payments service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RecordWebhookEvent persists an inbound notification before any
// processing is attempted. Re-deliveries of the same reference and event
// type return the stored row with created=false.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	ref := strings.TrimSpace(in.ProviderReference)
	if ref == "" {
		// Referenceless payloads still get a durable audit row, keyed by a
		// digest of the body so replays dedupe the same way.
		sum := sha256.Sum256([]byte(in.RawPayload))
		ref = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		EventType:         strings.TrimSpace(in.EventType),
		ProviderReference: ref,
		RawPayload:        in.RawPayload,
		SignatureValid:    in.SignatureValid,
	}
	return s.repo.CreateEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, eventID uint, processingErr error) error {
	_ = ctx
	if eventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkEventProcessed(eventID, errMsg)
}

// ResolveAccount maps a provider-issued account number to the student and
// wallet behind it. Inactive accounts are not valid payment destinations
// even when the number still matches, so stale or reassigned numbers can
// never credit a retired beneficiary.
func (s *Service) ResolveAccount(ctx context.Context, accountNumber string) (*ResolvedAccount, error) {
	_ = ctx
	number := strings.TrimSpace(accountNumber)
	if number == "" {
		return nil, &ResolutionError{Resource: "virtual account", Key: accountNumber}
	}

	account, err := s.repo.FindActiveAccountByNumber(number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ResolutionError{Resource: "virtual account", Key: number}
		}
		return nil, err
	}

	wallet, err := s.repo.GetWalletByStudentID(account.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ResolutionError{Resource: "wallet", Key: fmt.Sprintf("student %d", account.StudentID)}
		}
		return nil, err
	}

	return &ResolvedAccount{
		VirtualAccountID: account.ID,
		StudentID:        account.StudentID,
		WalletID:         wallet.ID,
		Currency:         wallet.Currency,
	}, nil
}

// Apply creates the ledger row and credits the wallet at most once per
// provider reference. Webhook delivery is treated as settlement proof, so
// new rows are completed immediately. Duplicate deliveries, sequential or
// concurrent, come back with Duplicate=true and no second balance change.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (*ApplyResult, error) {
	_ = ctx
	ref := strings.TrimSpace(in.ProviderReference)
	if ref == "" {
		return nil, errors.New("provider_reference is required")
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", in.Amount)
	}

	if existing, err := s.repo.FindTransactionByProviderReference(ref); err == nil {
		return &ApplyResult{TransactionID: existing.ID, Reference: existing.Reference, Duplicate: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := in.Category
	if category == "" {
		category = models.TransactionCategoryFeePayment
	}

	txn := &models.Transaction{
		StudentID:         in.StudentID,
		WalletID:          in.WalletID,
		Type:              models.TransactionTypeCredit,
		Amount:            in.Amount,
		Category:          category,
		Description:       fmt.Sprintf("Payment received via %s", in.Channel),
		Reference:         "SPY-" + uuid.NewString(),
		ProviderReference: &ref,
		Status:            models.TransactionStatusCompleted,
		Channel:           in.Channel,
		PayloadSnapshot:   in.RawPayload,
	}

	if err := s.repo.ApplyCredit(txn, in.VirtualAccountID); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			// Lost the insert race against a concurrent delivery. The other
			// invocation owns the credit; report its row as the idempotent
			// outcome.
			existing, findErr := s.repo.FindTransactionByProviderReference(ref)
			if findErr != nil {
				return nil, findErr
			}
			return &ApplyResult{TransactionID: existing.ID, Reference: existing.Reference, Duplicate: true}, nil
		}
		return nil, err
	}

	return &ApplyResult{TransactionID: txn.ID, Reference: txn.Reference}, nil
}

// IngestDelivery is the full webhook path: record (write-ahead), then
// decide what the delivery means for the stored row. A redelivery only
// short-circuits when the stored row is signature-valid and processed
// without error; unprocessed or errored rows get another apply attempt,
// which idempotency makes free. A row logged from a forged delivery never
// blocks the genuine one: the authenticated body replaces the forged
// payload and processing runs on it.
func (s *Service) IngestDelivery(ctx context.Context, in WebhookEventInput) (*DeliveryResult, error) {
	created, stored, err := s.RecordWebhookEvent(ctx, in)
	if err != nil {
		return nil, err
	}

	if !in.SignatureValid {
		if created {
			// Forged attempts still leave a durable audit row.
			_ = s.MarkWebhookProcessed(ctx, stored.ID, ErrInvalidSignature)
		}
		return &DeliveryResult{EventID: stored.ID}, ErrInvalidSignature
	}

	if !created {
		if stored.SignatureValid && stored.Processed && stored.ErrorMessage == "" {
			return &DeliveryResult{EventID: stored.ID, Duplicate: true}, nil
		}
		if !stored.SignatureValid {
			if err := s.repo.ReplaceEventPayload(stored.ID, in.RawPayload); err != nil {
				return nil, err
			}
		}
	}

	if in.EventType != paystack.EventChargeSuccess {
		if err := s.MarkWebhookProcessed(ctx, stored.ID, nil); err != nil {
			return nil, err
		}
		return &DeliveryResult{EventID: stored.ID, Ignored: true}, nil
	}

	result, err := s.ProcessChargeEvent(ctx, stored.ID, []byte(in.RawPayload))
	if err != nil {
		return &DeliveryResult{EventID: stored.ID}, err
	}
	return &DeliveryResult{EventID: stored.ID, Applied: true, Apply: result}, nil
}

// ProcessChargeEvent runs the resolve + apply pipeline for a recorded
// charge.success event and marks the event processed with the outcome.
// It is shared by live webhook handling, operator reprocessing and the
// payment simulator; idempotency makes every path safe to repeat.
func (s *Service) ProcessChargeEvent(ctx context.Context, eventID uint, rawPayload []byte) (*ApplyResult, error) {
	var payload paystack.WebhookEvent
	if err := json.Unmarshal(rawPayload, &payload); err != nil {
		wrapped := fmt.Errorf("invalid charge payload: %w", err)
		_ = s.MarkWebhookProcessed(ctx, eventID, wrapped)
		return nil, wrapped
	}

	resolved, err := s.ResolveAccount(ctx, payload.Data.Authorization.AccountNumber)
	if err != nil {
		_ = s.MarkWebhookProcessed(ctx, eventID, err)
		return nil, err
	}

	result, err := s.Apply(ctx, ApplyInput{
		ProviderReference: payload.Data.Reference,
		StudentID:         resolved.StudentID,
		WalletID:          resolved.WalletID,
		VirtualAccountID:  resolved.VirtualAccountID,
		Amount:            payload.Data.Amount,
		Category:          models.TransactionCategoryFeePayment,
		Channel:           payload.Data.Channel,
		RawPayload:        string(rawPayload),
	})
	if err != nil {
		_ = s.MarkWebhookProcessed(ctx, eventID, err)
		return nil, err
	}

	if markErr := s.MarkWebhookProcessed(ctx, eventID, nil); markErr != nil {
		return result, markErr
	}
	return result, nil
}

// ReprocessEvent re-runs a stored event through the apply pipeline. Safe
// for operator use on failed events because the apply step is idempotent.
func (s *Service) ReprocessEvent(ctx context.Context, eventID uint) (*ApplyResult, error) {
	event, err := s.repo.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}
	if !event.SignatureValid {
		return nil, ErrInvalidSignature
	}
	if event.EventType != paystack.EventChargeSuccess {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, event.EventType)
	}
	return s.ProcessChargeEvent(ctx, event.ID, []byte(event.RawPayload))
}
