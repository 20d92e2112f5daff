package paystack

import "time"

const EventChargeSuccess = "charge.success"

// WebhookEvent is the inbound notification envelope Paystack posts to the
// webhook endpoint.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

type WebhookData struct {
	ID              int64         `json:"id"`
	Domain          string        `json:"domain"`
	Status          string        `json:"status"`
	Reference       string        `json:"reference"`
	Amount          int64         `json:"amount"` // minor currency units (kobo)
	GatewayResponse string        `json:"gateway_response"`
	PaidAt          *time.Time    `json:"paid_at"`
	CreatedAt       time.Time     `json:"created_at"`
	Channel         string        `json:"channel"`
	Currency        string        `json:"currency"`
	Authorization   Authorization `json:"authorization"`
	Customer        Customer      `json:"customer"`
}

type Authorization struct {
	AuthorizationCode string `json:"authorization_code"`
	AccountNumber     string `json:"account_number"`
	Bank              string `json:"bank"`
	Channel           string `json:"channel"`
	SenderBank        string `json:"sender_bank"`
	SenderName        string `json:"sender_name"`
}

type Customer struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	CustomerCode string `json:"customer_code"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone"`
}

// CustomerRequest creates a provider-side customer record.
type CustomerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

// DedicatedAccount is a provider-issued virtual bank account tied to a
// customer.
type DedicatedAccount struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Bank          struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
		ID   int64  `json:"id"`
	} `json:"bank"`
	Active   bool `json:"active"`
	Assigned bool `json:"assigned"`
}

type apiEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}
