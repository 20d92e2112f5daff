package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/schoolpaydev/schoolpay/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.paystack.co"

type Client struct {
	SecretKey  string
	APIBaseURL string

	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		SecretKey:  strings.TrimSpace(env.GetEnv("PAYSTACK_SECRET_KEY", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("PAYSTACK_API_BASE_URL", defaultAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCustomer creates a provider-side customer record and returns its
// customer code.
func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, errors.New("customer email is required")
	}

	var out struct {
		apiEnvelope
		Data Customer `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/customer", req, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Data.CustomerCode) == "" {
		return nil, errors.New("paystack customer response missing customer_code")
	}
	return &out.Data, nil
}

// CreateDedicatedAccount requests a dedicated virtual account for an
// existing customer.
func (c *Client) CreateDedicatedAccount(ctx context.Context, customerCode, preferredBank string) (*DedicatedAccount, error) {
	if strings.TrimSpace(customerCode) == "" {
		return nil, errors.New("customer code is required")
	}
	if preferredBank == "" {
		preferredBank = "wema-bank"
	}

	body := map[string]string{
		"customer":       customerCode,
		"preferred_bank": preferredBank,
	}

	var out struct {
		apiEnvelope
		Data DedicatedAccount `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/dedicated_account", body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Data.AccountNumber) == "" {
		return nil, errors.New("paystack dedicated account response missing account_number")
	}
	return &out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("PAYSTACK_SECRET_KEY is not configured")
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp apiEnvelope
		if err := json.Unmarshal(body, &errResp); err != nil || strings.TrimSpace(errResp.Message) == "" {
			errResp.Message = fmt.Sprintf("unexpected response body: %s", string(body))
		}
		return classifyError(resp.StatusCode, errResp.Message)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}
	return nil
}
