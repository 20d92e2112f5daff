package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolpaydev/schoolpay/internal/pkg/paystack"
	"gorm.io/gorm"
)

// SimulationResult reports the synthesized event, the resulting ledger row
// and a step-by-step trace for operators verifying the pipeline.
type SimulationResult struct {
	EventID       uint     `json:"event_id"`
	TransactionID uint     `json:"transaction_id"`
	Reference     string   `json:"reference"`
	Duplicate     bool     `json:"duplicate"`
	Steps         []string `json:"steps"`
}

// SimulatePayment synthesizes a charge.success notification for a student
// and pushes it through the same event-log + apply path a live webhook
// takes. Useful as a staging aid and as the reference harness for the
// ingestion pipeline.
func (s *Service) SimulatePayment(ctx context.Context, studentID uint, amount int64) (*SimulationResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amount)
	}

	account, err := s.repo.FindActiveAccountByStudentID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ResolutionError{Resource: "active virtual account", Key: fmt.Sprintf("student %d", studentID)}
		}
		return nil, err
	}

	now := time.Now()
	reference := "SIM_" + uuid.NewString()
	payload := paystack.WebhookEvent{
		Event: paystack.EventChargeSuccess,
		Data: paystack.WebhookData{
			Status:    "success",
			Reference: reference,
			Amount:    amount,
			PaidAt:    &now,
			CreatedAt: now,
			Channel:   "dedicated_nuban",
			Currency:  "NGN",
			Authorization: paystack.Authorization{
				AccountNumber: account.AccountNumber,
				Bank:          account.BankName,
				Channel:       "dedicated_nuban",
			},
		},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	steps := []string{fmt.Sprintf("synthesized charge.success reference=%s account=%s", reference, account.AccountNumber)}

	created, stored, err := s.RecordWebhookEvent(ctx, WebhookEventInput{
		EventType:         paystack.EventChargeSuccess,
		ProviderReference: reference,
		RawPayload:        string(raw),
		SignatureValid:    true,
	})
	if err != nil {
		return nil, err
	}
	steps = append(steps, fmt.Sprintf("event logged id=%d created=%t", stored.ID, created))

	result, err := s.ProcessChargeEvent(ctx, stored.ID, raw)
	if err != nil {
		return nil, err
	}
	steps = append(steps, fmt.Sprintf("applied transaction id=%d duplicate=%t", result.TransactionID, result.Duplicate))
	steps = append(steps, "event marked processed")

	return &SimulationResult{
		EventID:       stored.ID,
		TransactionID: result.TransactionID,
		Reference:     result.Reference,
		Duplicate:     result.Duplicate,
		Steps:         steps,
	}, nil
}
