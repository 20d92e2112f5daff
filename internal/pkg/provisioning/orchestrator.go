package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/schoolpaydev/schoolpay/app/models"
	"github.com/schoolpaydev/schoolpay/internal/pkg/paystack"
)

// ProviderClient is the slice of the Paystack client the orchestrator
// needs; tests substitute a fake.
type ProviderClient interface {
	CreateCustomer(ctx context.Context, req paystack.CustomerRequest) (*paystack.Customer, error)
	CreateDedicatedAccount(ctx context.Context, customerCode, preferredBank string) (*paystack.DedicatedAccount, error)
}

// Repository provides DB operations used by the orchestrator.
type Repository interface {
	ListStudentsWithoutActiveAccount() ([]models.Student, error)
	SaveVirtualAccount(account *models.VirtualAccount) error
}

// StudentError records one failed beneficiary in a run.
type StudentError struct {
	StudentID uint   `json:"student_id"`
	Error     string `json:"error"`
}

// Result summarizes one provisioning run.
type Result struct {
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	Errors     []StudentError `json:"errors"`
}

// Orchestrator provisions a provider customer plus dedicated virtual
// account for every student lacking one. Processing is strictly
// sequential with a fixed inter-student delay as a rate-limit
// accommodation for the provider, not a performance choice.
type Orchestrator struct {
	repo     Repository
	provider ProviderClient

	InterStudentDelay time.Duration
	SettleDelay       time.Duration
	MaxAttempts       int
	BaseBackoff       time.Duration
	PreferredBank     string
}

// NewOrchestrator creates an orchestrator with the default pacing.
func NewOrchestrator(repo Repository, provider ProviderClient) *Orchestrator {
	return &Orchestrator{
		repo:     repo,
		provider: provider,

		InterStudentDelay: 2 * time.Second,
		SettleDelay:       500 * time.Millisecond,
		MaxAttempts:       4,
		BaseBackoff:       time.Second,
		PreferredBank:     "wema-bank",
	}
}

// ProvisionAll runs the bulk workflow. Per-student errors are recorded in
// the result and the loop continues; a feature-unavailable response from
// the provider aborts the whole run since every remaining call would fail
// identically. Re-running is safe: only students without an active
// virtual account are selected, so an interrupted run (including a
// customer created without its account) is picked up where it left off.
func (o *Orchestrator) ProvisionAll(ctx context.Context) (*Result, error) {
	students, err := o.repo.ListStudentsWithoutActiveAccount()
	if err != nil {
		return nil, err
	}

	result := &Result{Total: len(students)}
	for i, student := range students {
		if i > 0 {
			if err := sleepCtx(ctx, o.InterStudentDelay); err != nil {
				return result, err
			}
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := o.provisionOne(ctx, &student); err != nil {
			if errors.Is(err, paystack.ErrFeatureUnavailable) {
				log.Errorf("[Provisioning] aborting run, feature unavailable: %v", err)
				result.Failed = result.Total - result.Successful
				result.Errors = append(result.Errors, StudentError{StudentID: student.ID, Error: err.Error()})
				return result, err
			}
			log.Errorf("[Provisioning] student %d failed: %v", student.ID, err)
			result.Failed++
			result.Errors = append(result.Errors, StudentError{StudentID: student.ID, Error: err.Error()})
			continue
		}
		result.Successful++
	}

	log.Infof("[Provisioning] run finished: total=%d successful=%d failed=%d", result.Total, result.Successful, result.Failed)
	return result, nil
}

func (o *Orchestrator) provisionOne(ctx context.Context, student *models.Student) error {
	if student.Parent == nil || strings.TrimSpace(student.Parent.Email) == "" {
		return fmt.Errorf("student %d has no parent email for customer creation", student.ID)
	}

	first, last := splitName(student.Parent.Name)
	var customer *paystack.Customer
	err := o.withBackoff(ctx, func() error {
		var callErr error
		customer, callErr = o.provider.CreateCustomer(ctx, paystack.CustomerRequest{
			Email:     student.Parent.Email,
			FirstName: first,
			LastName:  last,
			Phone:     student.Parent.Phone,
		})
		return callErr
	})
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	// The provider needs a moment before the customer can take a
	// dedicated account.
	if err := sleepCtx(ctx, o.SettleDelay); err != nil {
		return err
	}

	var account *paystack.DedicatedAccount
	err = o.withBackoff(ctx, func() error {
		var callErr error
		account, callErr = o.provider.CreateDedicatedAccount(ctx, customer.CustomerCode, o.PreferredBank)
		return callErr
	})
	if err != nil {
		return fmt.Errorf("create dedicated account: %w", err)
	}

	va := &models.VirtualAccount{
		StudentID:            student.ID,
		ProviderCustomerCode: customer.CustomerCode,
		AccountNumber:        account.AccountNumber,
		AccountName:          account.AccountName,
		BankName:             account.Bank.Name,
		BankCode:             fmt.Sprintf("%d", account.Bank.ID),
		IsActive:             true,
	}
	if err := o.repo.SaveVirtualAccount(va); err != nil {
		return fmt.Errorf("persist virtual account: %w", err)
	}

	log.Infof("[Provisioning] student %d provisioned account=%s bank=%s", student.ID, va.AccountNumber, va.BankName)
	return nil
}

// withBackoff retries fn with exponential backoff, but only for provider
// rate-limit responses. Other error classes fail immediately.
func (o *Orchestrator) withBackoff(ctx context.Context, fn func() error) error {
	attempts := o.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !paystack.IsRateLimited(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		delay := o.BaseBackoff << (attempt - 1)
		log.Warnf("[Provisioning] rate limited, retrying in %s (attempt %d/%d)", delay, attempt, attempts)
		if sleepErr := sleepCtx(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func splitName(full string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(full))
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
