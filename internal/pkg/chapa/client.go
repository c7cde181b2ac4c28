// Package chapa is a small client for the Chapa payment gateway REST API.
package chapa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.chapa.co"
	DefaultTimeout = 15 * time.Second

	statusSuccess = "success"
	maxBodyBytes  = 1 << 20
)

var ErrNotConfigured = errors.New("chapa: secret key is not configured")

// APIError is returned when Chapa answers with a non-200 status or an
// envelope whose status is not "success".
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chapa: http %d, status %q: %s", e.StatusCode, e.Status, e.Message)
}

type Customization struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type InitializeRequest struct {
	Amount        string         `json:"amount"`
	Currency      string         `json:"currency"`
	Email         string         `json:"email"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name,omitempty"`
	TxRef         string         `json:"tx_ref"`
	CallbackURL   string         `json:"callback_url,omitempty"`
	ReturnURL     string         `json:"return_url,omitempty"`
	Customization *Customization `json:"customization,omitempty"`
}

type InitializeResult struct {
	CheckoutURL string
}

// VerifyResult is the transaction as Chapa reports it.
type VerifyResult struct {
	Status    string
	Reference string
	TxRef     string
	Amount    string
	Currency  string
}

func (r *VerifyResult) Succeeded() bool {
	return strings.EqualFold(r.Status, statusSuccess)
}

type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Message json.RawMessage `json:"message"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

// text flattens "message", which Chapa sends either as a string or as an
// object of field errors.
func (e envelope) text() string {
	var s string
	if err := json.Unmarshal(e.Message, &s); err == nil {
		return s
	}
	return string(e.Message)
}

func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("chapa: encode initialize request: %w", err)
	}

	env, err := c.do(ctx, http.MethodPost, "/v1/transaction/initialize", body)
	if err != nil {
		return nil, err
	}

	var data struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("chapa: decode initialize data: %w", err)
	}
	if data.CheckoutURL == "" {
		return nil, errors.New("chapa: initialize response has no checkout_url")
	}
	return &InitializeResult{CheckoutURL: data.CheckoutURL}, nil
}

func (c *Client) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	env, err := c.do(ctx, http.MethodGet, "/v1/transaction/verify/"+url.PathEscape(txRef), nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		Status    string     `json:"status"`
		Reference flexString `json:"reference"`
		ID        flexString `json:"id"`
		TxRef     string     `json:"tx_ref"`
		Amount    flexString `json:"amount"`
		Currency  string     `json:"currency"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("chapa: decode verify data: %w", err)
	}

	ref := string(data.Reference)
	if ref == "" {
		ref = string(data.ID)
	}
	return &VerifyResult{
		Status:    data.Status,
		Reference: ref,
		TxRef:     data.TxRef,
		Amount:    string(data.Amount),
		Currency:  data.Currency,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*envelope, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("chapa: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chapa: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("chapa: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if resp.StatusCode != http.StatusOK || env.Status != statusSuccess {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: env.Status, Message: env.text()}
	}
	return &env, nil
}

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
