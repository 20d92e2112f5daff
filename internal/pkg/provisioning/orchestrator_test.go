package provisioning

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/schoolpaydev/schoolpay/app/models"
	"github.com/schoolpaydev/schoolpay/internal/pkg/paystack"
)

type fakeProvider struct {
	customerCalls int
	accountCalls  int

	customerErrs []error // consumed in order, nil entries succeed
	accountErrs  []error

	nextAccount int
}

func (f *fakeProvider) CreateCustomer(ctx context.Context, req paystack.CustomerRequest) (*paystack.Customer, error) {
	f.customerCalls++
	if len(f.customerErrs) > 0 {
		err := f.customerErrs[0]
		f.customerErrs = f.customerErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &paystack.Customer{
		Email:        req.Email,
		CustomerCode: fmt.Sprintf("CUS_%d", f.customerCalls),
	}, nil
}

func (f *fakeProvider) CreateDedicatedAccount(ctx context.Context, customerCode, preferredBank string) (*paystack.DedicatedAccount, error) {
	f.accountCalls++
	if len(f.accountErrs) > 0 {
		err := f.accountErrs[0]
		f.accountErrs = f.accountErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	f.nextAccount++
	acct := &paystack.DedicatedAccount{
		AccountNumber: fmt.Sprintf("993000%04d", f.nextAccount),
		AccountName:   "SCHOOLPAY/TEST",
		Active:        true,
		Assigned:      true,
	}
	acct.Bank.Name = "Wema Bank"
	acct.Bank.Slug = "wema-bank"
	acct.Bank.ID = 20
	return acct, nil
}

type fakeProvRepo struct {
	pending []models.Student
	saved   []*models.VirtualAccount
	saveErr error
}

func (f *fakeProvRepo) ListStudentsWithoutActiveAccount() ([]models.Student, error) {
	return f.pending, nil
}

func (f *fakeProvRepo) SaveVirtualAccount(account *models.VirtualAccount) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, account)
	return nil
}

func studentWithParent(id uint, email string) models.Student {
	return models.Student{
		ID:   id,
		Name: fmt.Sprintf("Student %d", id),
		Parent: &models.User{
			Name:  "Ada Obi",
			Email: email,
		},
	}
}

// fastOrchestrator removes the pacing delays so tests run instantly.
func fastOrchestrator(repo Repository, provider ProviderClient) *Orchestrator {
	o := NewOrchestrator(repo, provider)
	o.InterStudentDelay = 0
	o.SettleDelay = 0
	o.BaseBackoff = time.Millisecond
	return o
}

func TestProvisionAll(t *testing.T) {
	repo := &fakeProvRepo{pending: []models.Student{
		studentWithParent(1, "one@example.com"),
		studentWithParent(2, "two@example.com"),
	}}
	provider := &fakeProvider{}
	o := fastOrchestrator(repo, provider)

	result, err := o.ProvisionAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 || result.Successful != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(repo.saved) != 2 {
		t.Fatalf("expected 2 saved accounts, got %d", len(repo.saved))
	}
	if repo.saved[0].ProviderCustomerCode != "CUS_1" {
		t.Fatalf("customer code not carried over: %q", repo.saved[0].ProviderCustomerCode)
	}
	if !repo.saved[0].IsActive {
		t.Fatalf("saved account must be active")
	}
}

func TestProvisionAll_SecondRunIsIdempotent(t *testing.T) {
	// Everyone already has an active account: the selection query returns
	// nothing and the provider is never called.
	repo := &fakeProvRepo{}
	provider := &fakeProvider{}
	o := fastOrchestrator(repo, provider)

	result, err := o.ProvisionAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("expected empty run, got %+v", result)
	}
	if provider.customerCalls != 0 || provider.accountCalls != 0 {
		t.Fatalf("provider must not be called on an empty run: customers=%d accounts=%d", provider.customerCalls, provider.accountCalls)
	}
}

func TestProvisionAll_PerStudentErrorContinues(t *testing.T) {
	repo := &fakeProvRepo{pending: []models.Student{
		studentWithParent(1, "one@example.com"),
		{ID: 2, Name: "No Parent"}, // unprovisionable
		studentWithParent(3, "three@example.com"),
	}}
	provider := &fakeProvider{}
	o := fastOrchestrator(repo, provider)

	result, err := o.ProvisionAll(context.Background())
	if err != nil {
		t.Fatalf("per-student failures must not abort the run: %v", err)
	}
	if result.Successful != 2 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].StudentID != 2 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
}

func TestProvisionAll_FeatureUnavailableAborts(t *testing.T) {
	repo := &fakeProvRepo{pending: []models.Student{
		studentWithParent(1, "one@example.com"),
		studentWithParent(2, "two@example.com"),
		studentWithParent(3, "three@example.com"),
	}}
	provider := &fakeProvider{
		accountErrs: []error{fmt.Errorf("%w: dedicated nuban not available", paystack.ErrFeatureUnavailable)},
	}
	o := fastOrchestrator(repo, provider)

	result, err := o.ProvisionAll(context.Background())
	if !errors.Is(err, paystack.ErrFeatureUnavailable) {
		t.Fatalf("expected feature-unavailable abort, got %v", err)
	}
	// The first failure ends the run: one customer call, one account call,
	// nobody else is attempted.
	if provider.customerCalls != 1 || provider.accountCalls != 1 {
		t.Fatalf("expected exactly one attempt, got customers=%d accounts=%d", provider.customerCalls, provider.accountCalls)
	}
	if result.Successful != 0 || result.Failed != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestProvisionAll_RateLimitRetries(t *testing.T) {
	rateLimited := &paystack.APIError{StatusCode: http.StatusTooManyRequests, Message: "Too many requests"}
	repo := &fakeProvRepo{pending: []models.Student{studentWithParent(1, "one@example.com")}}
	provider := &fakeProvider{
		customerErrs: []error{rateLimited, rateLimited, nil},
	}
	o := fastOrchestrator(repo, provider)

	result, err := o.ProvisionAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Successful != 1 {
		t.Fatalf("expected retry to recover: %+v", result)
	}
	if provider.customerCalls != 3 {
		t.Fatalf("expected 3 customer attempts, got %d", provider.customerCalls)
	}
}

func TestProvisionAll_RateLimitExhaustsAttempts(t *testing.T) {
	rateLimited := &paystack.APIError{StatusCode: http.StatusTooManyRequests, Message: "Too many requests"}
	repo := &fakeProvRepo{pending: []models.Student{studentWithParent(1, "one@example.com")}}
	provider := &fakeProvider{
		customerErrs: []error{rateLimited, rateLimited, rateLimited, rateLimited},
	}
	o := fastOrchestrator(repo, provider)
	o.MaxAttempts = 4

	result, err := o.ProvisionAll(context.Background())
	if err != nil {
		t.Fatalf("rate-limit exhaustion is a per-student failure, not an abort: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if provider.customerCalls != 4 {
		t.Fatalf("expected MaxAttempts calls, got %d", provider.customerCalls)
	}
}

func TestProvisionAll_NonRetryableErrorFailsImmediately(t *testing.T) {
	badRequest := &paystack.APIError{StatusCode: http.StatusBadRequest, Message: "Invalid email"}
	repo := &fakeProvRepo{pending: []models.Student{studentWithParent(1, "one@example.com")}}
	provider := &fakeProvider{customerErrs: []error{badRequest}}
	o := fastOrchestrator(repo, provider)

	result, err := o.ProvisionAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if provider.customerCalls != 1 {
		t.Fatalf("non-retryable errors must not be retried, got %d calls", provider.customerCalls)
	}
}

func TestProvisionAll_ContextCancellation(t *testing.T) {
	repo := &fakeProvRepo{pending: []models.Student{
		studentWithParent(1, "one@example.com"),
		studentWithParent(2, "two@example.com"),
	}}
	provider := &fakeProvider{}
	o := fastOrchestrator(repo, provider)
	o.InterStudentDelay = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	result, err := o.ProvisionAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	// The partial result survives so callers can report progress.
	if result == nil || result.Successful != 1 {
		t.Fatalf("expected one student done before cancellation: %+v", result)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
	}{
		{in: "Ada Obi", first: "Ada", last: "Obi"},
		{in: "Ada", first: "Ada", last: ""},
		{in: " Ada  Ngozi  Obi ", first: "Ada", last: "Ngozi Obi"},
		{in: "", first: "", last: ""},
	}
	for _, tt := range tests {
		first, last := splitName(tt.in)
		if first != tt.first || last != tt.last {
			t.Fatalf("splitName(%q) = (%q, %q), want (%q, %q)", tt.in, first, last, tt.first, tt.last)
		}
	}
}
